package nav

import "testing"

func TestBuildActive(t *testing.T) {
	items := Build("de", "/kontakt")
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	for _, it := range items {
		if it.Href == "/kontakt/" && !it.Active {
			t.Fatalf("expected kontakt active")
		}
		if it.Href != "/kontakt/" && it.Active {
			t.Fatalf("unexpected active item %s", it.Href)
		}
	}

	items = Build("en", "/")
	if items[0].Href != "/en/" || !items[0].Active {
		t.Fatalf("expected english home active, got %+v", items[0])
	}
	if items[1].Active {
		t.Fatalf("anchor items must not be active")
	}
}

func TestBuildUnknownLanguageFallsBack(t *testing.T) {
	items := Build("fr", "/de/")
	if items[0].Href != "/de/" || !items[0].Active {
		t.Fatalf("expected german menu, got %+v", items)
	}
}

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("de", "/de/", "")
	if len(crumbs) != 1 || !crumbs[0].Active {
		t.Fatalf("unexpected crumbs for home: %+v", crumbs)
	}

	crumbs = Breadcrumbs("de", "/kontakt/", "")
	if len(crumbs) != 2 || crumbs[1].LabelKey != "nav.contact" || !crumbs[1].Active {
		t.Fatalf("unexpected crumbs: %+v", crumbs)
	}

	crumbs = Breadcrumbs("en", "/service/dental-implants/", "Dental implants")
	if len(crumbs) != 3 {
		t.Fatalf("expected 3 crumbs, got %+v", crumbs)
	}
	if crumbs[1].Label != "Service" || crumbs[1].Href != "/service/" {
		t.Fatalf("unexpected middle crumb %+v", crumbs[1])
	}
	if crumbs[2].Label != "Dental implants" || !crumbs[2].Active {
		t.Fatalf("unexpected last crumb %+v", crumbs[2])
	}
}

func TestTitleFromSegment(t *testing.T) {
	if got := titleFromSegment("ästhetik_und-form"); got != "Ästhetik und form" {
		t.Fatalf("unexpected title %q", got)
	}
}

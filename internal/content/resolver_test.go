package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vuducle/le-custom-sub000/internal/settings"
)

func TestPhoneHrefAndUnsetVATID(t *testing.T) {
	r := New(settings.Values{KeyPhoneLink: "030624792"})
	c := r.Contact()
	require.Equal(t, "tel:030624792", c.Phone.Href())
	require.Equal(t, "", c.Legal.VATID)

	require.Equal(t, "tel:030624792", Phone{Link: "030 / 624-792"}.Href())
	require.Equal(t, "", Phone{}.Href())
}

func TestContactDefaultsFillGaps(t *testing.T) {
	c := New(nil).Contact()
	require.NotEmpty(t, c.PracticeName)
	require.Equal(t, "Berlin", c.Address.City)
	require.Equal(t, 15, c.Map.Zoom)
	require.Len(t, c.Hours, 7)

	c = New(settings.Values{KeyCity: "Hamburg", KeyMapZoom: "99"}).Contact()
	require.Equal(t, "Hamburg", c.Address.City)
	require.Equal(t, 15, c.Map.Zoom)
}

func TestColorsRejectInvalidHex(t *testing.T) {
	got := New(settings.Values{KeyColorPrimary: "#123456", KeyColorAccent: "red"}).Colors()
	require.Equal(t, "#123456", got.Primary)
	require.Equal(t, defaultColors.Accent, got.Accent)
}

func TestServicesFallBackOnInvalidJSON(t *testing.T) {
	r := New(settings.Values{
		"services_de": `[{"title":"Bleaching","description":"Hellere Zähne"}]`,
		"services_en": `{not json`,
	})
	de := r.Services("de")
	require.Len(t, de, 1)
	require.Equal(t, "Bleaching", de[0].Title)

	en := r.Services("en")
	require.Equal(t, defaultServices["en"], en)

	en[0].Title = "mutated"
	require.NotEqual(t, "mutated", defaultServices["en"][0].Title)

	require.Equal(t, defaultServices["de"], New(settings.Values{"services_de": "[]"}).Services("de-AT"))
}

func TestEncodeServicesDropsUntitled(t *testing.T) {
	raw, err := EncodeServices([]ServiceEntry{{Title: "  Implantate "}, {Description: "ohne Titel"}})
	require.NoError(t, err)
	require.Equal(t, `[{"title":"Implantate","description":"","button_text":"","button_url":"","icon":""}]`, raw)
}

func TestLayoutParsing(t *testing.T) {
	require.Equal(t, LayoutRight, ParseLayout("Right"))
	require.Equal(t, LayoutImageOnly, ParseLayout("image-only"))
	require.Equal(t, LayoutLeft, ParseLayout("diagonal"))
	require.False(t, LayoutTextOnly.ShowImage())
	require.False(t, LayoutImageOnly.ShowText())

	about := New(settings.Values{KeyAboutLayout: "text-only", "about_title_en": "Team"}).About("en")
	require.Equal(t, LayoutTextOnly, about.Layout)
	require.Equal(t, "Team", about.Title)
}

func TestMapEmbedURLSources(t *testing.T) {
	r := New(settings.Values{KeyMapQuery: "Zahnarzt am Park Berlin", KeyMapZoom: "17"})
	require.Equal(t, "https://www.google.com/maps?q=Zahnarzt+am+Park+Berlin&z=17&output=embed", r.MapEmbedURL())

	r = New(settings.Values{KeyMapLat: "52.52", KeyMapLng: "13.40"})
	require.Equal(t, "https://www.google.com/maps?q=52.52%2C13.40&z=15&output=embed", r.MapEmbedURL())

	r = New(nil)
	require.True(t, strings.HasPrefix(r.MapEmbedURL(), "https://www.google.com/maps?q=Parkstra%C3%9Fe+12%2C+10115+Berlin"))
}

func TestParseHoursCountsPairs(t *testing.T) {
	cases := map[string]int{
		"08:00 - 12:00":                            1,
		"08:00-12:00, 14:00 – 18:00":               2,
		"8:00 - 12:00 und 13:00 - 17:30":           2,
		"geschlossen":                              0,
		"nach Vereinbarung":                        0,
		"07:30–11:00 / 12:00-15:00 / 16:00 -19:00": 3,
	}
	for text, want := range cases {
		require.Len(t, ParseHours(text), want, text)
	}

	got := ParseHours("8:00 - 12:00, 14:00 – 18:00")
	require.Equal(t, []Interval{{Opens: "08:00", Closes: "12:00"}, {Opens: "14:00", Closes: "18:00"}}, got)
}

func TestOpeningHoursRows(t *testing.T) {
	rows := New(settings.Values{"hours_saturday": "09:00 - 12:00"}).OpeningHours("en")
	require.Len(t, rows, 7)
	require.Equal(t, "Monday", rows[0].Label)
	require.Equal(t, "Saturday", rows[5].SchemaDay())
	require.Len(t, rows[5].Intervals, 1)
	require.Empty(t, rows[6].Intervals)
}

func TestIsEditable(t *testing.T) {
	require.True(t, IsEditable(KeyPhoneLink))
	require.True(t, IsEditable("cta_title_en"))
	require.True(t, IsEditable("hours_friday"))
	require.False(t, IsEditable("services_de"))
	require.False(t, IsEditable("admin_token"))
	require.False(t, IsEditable("cta_title_fr"))
}

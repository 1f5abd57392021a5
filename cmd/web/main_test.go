package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vuducle/le-custom-sub000/internal/config"
	"github.com/vuducle/le-custom-sub000/internal/consent"
	"github.com/vuducle/le-custom-sub000/internal/contact"
	"github.com/vuducle/le-custom-sub000/internal/content"
	"github.com/vuducle/le-custom-sub000/internal/i18n"
	"github.com/vuducle/le-custom-sub000/internal/mail"
	"github.com/vuducle/le-custom-sub000/internal/media"
	"github.com/vuducle/le-custom-sub000/internal/nonce"
	"github.com/vuducle/le-custom-sub000/internal/pages"
	"github.com/vuducle/le-custom-sub000/internal/recaptcha"
	"github.com/vuducle/le-custom-sub000/internal/settings"
)

const adminToken = "admin-secret"

type testSite struct {
	handler   http.Handler
	store     *settings.MemoryStore
	transport *mail.RecordingTransport
	nonces    *nonce.Manager
}

// newTestSite builds the site like main(), backed by in-memory stores and the
// repository's templates, locales and content.
func newTestSite(t *testing.T) *testSite {
	t.Helper()
	return newTestSiteWith(t, nil)
}

func newTestSiteWith(t *testing.T, configure func(*config.Config), opts ...contact.Option) *testSite {
	t.Helper()
	cfg := config.Config{
		Server: config.ServerConfig{DevMode: true},
		Site: config.SiteConfig{
			BaseURL:      "https://praxis.example",
			Environment:  "local",
			TemplatesDir: "../../templates",
			PublicDir:    "../../public",
		},
		Media: config.MediaConfig{Dir: "../../public/uploads", URLPrefix: "/uploads"},
		Admin: config.AdminConfig{Token: adminToken},
	}
	if configure != nil {
		configure(&cfg)
	}
	bundle, err := i18n.Load("../../locales", i18n.Default)
	require.NoError(t, err)
	repo, err := pages.Open("../../content")
	require.NoError(t, err)
	nonces, err := nonce.New("test-signing-key", time.Hour)
	require.NoError(t, err)

	store := settings.NewMemoryStore(map[string]string{
		content.KeyPracticeName: "Zahnarztpraxis am Park",
		content.KeyPhone:        "030 / 624 79 2",
		content.KeyPhoneLink:    "030 624 792",
		content.KeyEmail:        "praxis@example.de",
	})
	transport := &mail.RecordingTransport{}
	verifier := recaptcha.New(config.RecaptchaConfig{}, nil)
	logger := zap.NewNop()

	site, err := newApp(appDeps{
		Config:    cfg,
		Logger:    logger,
		Bundle:    bundle,
		Settings:  store,
		Pages:     repo,
		Media:     media.StaticLibrary{{URL: "/uploads/team.jpg", Title: "Team", MimeType: "image/jpeg"}},
		Nonces:    nonces,
		Recaptcha: verifier,
		Contact:   contact.NewService(nonces, verifier, transport, contactSource(store, logger), opts...),
	})
	require.NoError(t, err)
	return &testSite{handler: site.routes(), store: store, transport: transport, nonces: nonces}
}

func (s *testSite) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testSite) post(t *testing.T, path string, form url.Values, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "203.0.113.9:51234"
	if admin {
		req.Header.Set("Authorization", "Bearer "+adminToken)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testSite) nonce(t *testing.T, action string) string {
	t.Helper()
	v, err := s.nonces.Issue(action)
	require.NoError(t, err)
	return v
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) (envelope, map[string]any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	data := map[string]any{}
	if len(env.Data) > 0 && env.Data[0] == '{' {
		require.NoError(t, json.Unmarshal(env.Data, &data))
	}
	return env, data
}

func TestHealthzOK(t *testing.T) {
	rec := newTestSite(t).get(t, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestLandingRoutes(t *testing.T) {
	site := newTestSite(t)
	for path, lang := range map[string]string{"/": "de", "/de": "de", "/de/": "de", "/en": "en", "/en/": "en"} {
		t.Run(path, func(t *testing.T) {
			rec := site.get(t, path)
			require.Equal(t, http.StatusOK, rec.Code)
			doc := document(t, rec)
			got, _ := doc.Find("html").Attr("lang")
			require.Equal(t, lang, got)
			require.Equal(t, 1, doc.Find("body.template-landing").Length())
			require.Contains(t, doc.Find("title").Text(), "Zahnarztpraxis am Park")
			require.LessOrEqual(t, utf8.RuneCountInString(doc.Find("title").Text()), 70)
			require.Equal(t, 1, doc.Find("section.services").Length())
		})
	}
}

func TestLandingMarkupAndJSONLD(t *testing.T) {
	rec := newTestSite(t).get(t, "/de/")
	doc := document(t, rec)

	active := doc.Find(".site-nav a.active")
	require.Equal(t, 1, active.Length())
	href, _ := active.Attr("href")
	require.Equal(t, "/de/", href)

	tel, _ := doc.Find("a.site-phone").Attr("href")
	require.Equal(t, "tel:030624792", tel)

	var foundDentist bool
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(s.Text()), &payload))
		if payload["@type"] == "Dentist" {
			foundDentist = true
			require.NotEmpty(t, payload["openingHoursSpecification"])
		}
	})
	require.True(t, foundDentist)

	alt := doc.Find(`link[rel="alternate"][hreflang="en"]`)
	href, _ = alt.Attr("href")
	require.Equal(t, "https://praxis.example/en/", href)
}

func TestSpecialPagesUseTheirTemplates(t *testing.T) {
	site := newTestSite(t)
	cases := map[string]string{
		"/kontakt/":        "contact",
		"/contact":         "contact",
		"/impressum/":      "imprint",
		"/privacy-policy/": "privacy",
		"/anfahrt/":        "directions",
		"/prophylaxe/":     "page",
	}
	for path, tmpl := range cases {
		rec := site.get(t, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.Equal(t, 1, document(t, rec).Find("body.template-"+tmpl).Length(), path)
	}
}

func TestImprintRendersUnsetVATIDEmpty(t *testing.T) {
	rec := newTestSite(t).get(t, "/impressum/")
	doc := document(t, rec)
	require.Equal(t, 1, doc.Find("dd.imprint-vat").Length())
	require.Equal(t, "", strings.TrimSpace(doc.Find("dd.imprint-vat").Text()))
}

func TestCustomKindPathAndNotFound(t *testing.T) {
	site := newTestSite(t)
	rec := site.get(t, "/service/implantate/")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = site.get(t, "/implantate/")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = site.get(t, "/gibt-es-nicht/")
	require.Equal(t, http.StatusNotFound, rec.Code)
	doc := document(t, rec)
	robots, _ := doc.Find(`meta[name="robots"]`).Attr("content")
	require.Equal(t, "noindex,follow", robots)
	require.Equal(t, 1, doc.Find("body.template-not_found").Length())
}

func TestConsentGatesMap(t *testing.T) {
	site := newTestSite(t)

	rec := site.get(t, "/anfahrt/")
	doc := document(t, rec)
	require.Equal(t, 0, doc.Find("iframe.map__frame").Length())
	require.Equal(t, 1, doc.Find("#cookie-overlay").Length())
	consentNonce, _ := doc.Find(`#cookie-overlay input[name="nonce"]`).Attr("value")
	require.NotEmpty(t, consentNonce)

	rec = site.post(t, "/ajax/cookie_consent_save", url.Values{"nonce": {consentNonce}}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	env, data := decode(t, rec)
	require.True(t, env.Success)
	require.Equal(t, true, data["consent_given"])
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, consent.CookieName, cookies[0].Name)

	rec = site.get(t, "/anfahrt/", cookies[0])
	doc = document(t, rec)
	require.Equal(t, 1, doc.Find("iframe.map__frame").Length())
	require.Equal(t, 0, doc.Find("#cookie-overlay").Length())
}

func TestConsentRequiresNonce(t *testing.T) {
	rec := newTestSite(t).post(t, "/ajax/cookie_consent_save", url.Values{"nonce": {"bogus"}}, false)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, rec.Result().Cookies())
}

func TestContactFormSubmit(t *testing.T) {
	site := newTestSite(t)

	rec := site.get(t, "/kontakt/")
	formNonce, _ := document(t, rec).Find(`form.contact-form input[name="nonce"]`).Attr("value")
	require.NotEmpty(t, formNonce)

	form := url.Values{
		"nonce":      {formNonce},
		"lang":       {"de"},
		"first_name": {"Erika"},
		"email":      {"erika@example.de"},
		"subject":    {"Termin"},
		"message":    {"Hallo"},
		"privacy":    {"1"},
	}
	rec = site.post(t, "/ajax/contact_form_submit", form, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env, data := decode(t, rec)
	require.False(t, env.Success)
	require.Equal(t, contact.CodeMissingField, data["code"])
	require.Equal(t, "last_name", data["field"])
	require.Empty(t, site.transport.Messages())

	form.Set("last_name", "Mustermann")
	form.Set("action", contact.NonceAction)
	rec = site.post(t, "/ajax", form, false)
	require.Equal(t, http.StatusOK, rec.Code)
	env, data = decode(t, rec)
	require.True(t, env.Success)
	require.NotEmpty(t, data["id"])
	require.Len(t, site.transport.Messages(), 2)
	require.Equal(t, []string{"praxis@example.de"}, site.transport.Messages()[0].To)
}

func TestAdminActionsRequireTokenAndNonce(t *testing.T) {
	site := newTestSite(t)
	form := url.Values{"lang": {"en"}, "services": {`[{"title":"Whitening"}]`}}

	rec := site.post(t, "/ajax/le_custom_save_services", form, false)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = site.post(t, "/ajax/le_custom_save_services", form, true)
	require.Equal(t, http.StatusForbidden, rec.Code)

	form.Set("nonce", site.nonce(t, "le_custom_save_services"))
	rec = site.post(t, "/ajax/le_custom_save_services", form, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = site.get(t, "/en/")
	titles := document(t, rec).Find("section.services h3")
	require.Equal(t, 1, titles.Length())
	require.Equal(t, "Whitening", titles.Text())
}

func TestNonceEndpoint(t *testing.T) {
	site := newTestSite(t)
	rec := site.get(t, "/ajax/nonce?for=le_custom_save_settings")
	require.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/ajax/nonce?for=le_custom_save_settings", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	out := httptest.NewRecorder()
	site.handler.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)
	_, data := decode(t, out)
	require.NoError(t, site.nonces.Verify(data["nonce"].(string), "le_custom_save_settings"))
}

func TestPageMetaRoundTrip(t *testing.T) {
	site := newTestSite(t)
	meta := `{"hero":{"title":"Vorsorge","subtitle":"Gesunde Zähne ein Leben lang","layout":"diagonal"},"seo_title":"","meta_description":"<b>Prophylaxe</b> in Berlin"}`
	rec := site.post(t, "/ajax/le_custom_save_page_meta", url.Values{
		"slug":  {"prophylaxe"},
		"meta":  {meta},
		"nonce": {site.nonce(t, "le_custom_save_page_meta")},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	_, data := decode(t, rec)
	hero := data["hero"].(map[string]any)
	require.Equal(t, "left", hero["layout"])
	require.Equal(t, "Prophylaxe in Berlin", data["meta_description"])

	rec = site.post(t, "/ajax/le_custom_get_meta_description", url.Values{
		"slug":  {"prophylaxe"},
		"nonce": {site.nonce(t, "le_custom_get_meta_description")},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	_, data = decode(t, rec)
	require.Equal(t, "Prophylaxe in Berlin", data["description"])
	title := data["title"].(string)
	require.True(t, strings.HasPrefix(title, "Prophylaxe - "))
	require.LessOrEqual(t, utf8.RuneCountInString(title), 70)

	rec = site.post(t, "/ajax/le_custom_get_page_data", url.Values{
		"slug":  {"prophylaxe"},
		"nonce": {site.nonce(t, "le_custom_get_page_data")},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	_, data = decode(t, rec)
	require.Equal(t, true, data["has_meta"])
	require.Equal(t, "https://praxis.example/prophylaxe/", data["url"])

	doc := document(t, site.get(t, "/prophylaxe/"))
	require.Equal(t, "Vorsorge", doc.Find("section.hero h1").Text())
}

func TestSaveSettingsAllowList(t *testing.T) {
	site := newTestSite(t)
	rec := site.post(t, "/ajax/le_custom_save_settings", url.Values{
		"settings": {`{"imprint_vat_id":"DE123456789","page_meta_de":"{}"}`},
		"nonce":    {site.nonce(t, "le_custom_save_settings")},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	_, data := decode(t, rec)
	require.Equal(t, []any{"imprint_vat_id"}, data["saved"])
	require.Equal(t, []any{"page_meta_de"}, data["rejected"])

	doc := document(t, site.get(t, "/impressum/"))
	require.Equal(t, "DE123456789", strings.TrimSpace(doc.Find("dd.imprint-vat").Text()))
}

func contactForm(nonce string) url.Values {
	return url.Values{
		"nonce":      {nonce},
		"lang":       {"de"},
		"first_name": {"Erika"},
		"last_name":  {"Mustermann"},
		"email":      {"erika@example.de"},
		"subject":    {"Termin"},
		"message":    {"Hallo"},
		"privacy":    {"1"},
	}
}

func (s *testSite) submitContact(t *testing.T, forwardedFor string) int {
	t.Helper()
	form := contactForm(s.nonce(t, contact.NonceAction))
	req := httptest.NewRequest(http.MethodPost, "/ajax/contact_form_submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "203.0.113.9:51234"
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec.Code
}

func contactLimit() contact.Option {
	return contact.WithRateLimiter(contact.NewMemoryLimiter(5, 10*time.Minute, nil))
}

func TestContactRateLimitIgnoresForwardedForWithoutTrustedProxies(t *testing.T) {
	site := newTestSiteWith(t, nil, contactLimit())
	var codes []int
	for i := 0; i < 7; i++ {
		codes = append(codes, site.submitContact(t, fmt.Sprintf("198.51.100.%d", i+1)))
	}
	require.Equal(t, []int{200, 200, 200, 200, 200, 429, 429}, codes)
	require.Len(t, site.transport.Messages(), 10)
}

func TestContactRateLimitWithTrustedProxy(t *testing.T) {
	site := newTestSiteWith(t, func(cfg *config.Config) { cfg.Server.TrustedProxyHops = 1 }, contactLimit())

	// The proxy appends the real client last; spoofed entries before it are ignored.
	var codes []int
	for i := 0; i < 6; i++ {
		codes = append(codes, site.submitContact(t, fmt.Sprintf("10.0.0.%d, 198.51.100.20", i+1)))
	}
	require.Equal(t, []int{200, 200, 200, 200, 200, 429}, codes)

	require.Equal(t, http.StatusOK, site.submitContact(t, "198.51.100.21"))
	// Without a forwarded entry the socket peer is used.
	require.Equal(t, http.StatusOK, site.submitContact(t, ""))
}

func TestForwardedClient(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
		hops    int
		want    string
	}{
		{"single proxy", []string{"198.51.100.1"}, 1, "198.51.100.1"},
		{"spoofed prefix", []string{"1.2.3.4, 198.51.100.1"}, 1, "198.51.100.1"},
		{"two proxies", []string{"1.2.3.4, 198.51.100.1, 10.0.0.2"}, 2, "198.51.100.1"},
		{"split headers", []string{"1.2.3.4", "198.51.100.1"}, 1, "198.51.100.1"},
		{"too few entries", []string{"198.51.100.1"}, 2, ""},
		{"not an address", []string{"unknown"}, 1, ""},
		{"no header", nil, 1, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, forwardedClient(tc.headers, tc.hops))
		})
	}
}

func TestHeadRequestsServeGetRoutes(t *testing.T) {
	site := newTestSite(t)
	for _, path := range []string{"/de/", "/kontakt/", "/sitemap.xml", "/healthz"} {
		req := httptest.NewRequest(http.MethodHead, path, nil)
		rec := httptest.NewRecorder()
		site.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
	req := httptest.NewRequest(http.MethodHead, "/gibt-es-nicht/", nil)
	rec := httptest.NewRecorder()
	site.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSitemapsAreStable(t *testing.T) {
	site := newTestSite(t)
	for _, path := range []string{"/sitemap.xml", "/sitemap-pages.xml", "/sitemap-images.xml"} {
		first := site.get(t, path)
		require.Equal(t, http.StatusOK, first.Code, path)
		require.True(t, strings.HasPrefix(first.Header().Get("Content-Type"), "application/xml"), path)
		second := site.get(t, path)
		require.Equal(t, first.Body.String(), second.Body.String(), path)
	}
	images := site.get(t, "/sitemap-images.xml").Body.String()
	require.Contains(t, images, "https://praxis.example/uploads/team.jpg")
	require.Contains(t, images, "https://praxis.example/uploads/prophylaxe.jpg")
}

func TestAssetsETag(t *testing.T) {
	site := newTestSite(t)
	rec := site.get(t, "/assets/css/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
	req.Header.Set("If-None-Match", etag)
	out := httptest.NewRecorder()
	site.handler.ServeHTTP(out, req)
	require.Equal(t, http.StatusNotModified, out.Code)
}

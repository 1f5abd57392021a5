package main

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vuducle/le-custom-sub000/internal/consent"
	"github.com/vuducle/le-custom-sub000/internal/contact"
	"github.com/vuducle/le-custom-sub000/internal/content"
	"github.com/vuducle/le-custom-sub000/internal/httpx"
	"github.com/vuducle/le-custom-sub000/internal/i18n"
	"github.com/vuducle/le-custom-sub000/internal/pages"
)

// AJAX action names.
const (
	actionContactSubmit      = contact.NonceAction
	actionConsentSave        = "cookie_consent_save"
	actionSaveServices       = "le_custom_save_services"
	actionGetPageData        = "le_custom_get_page_data"
	actionGetMetaDescription = "le_custom_get_meta_description"
	actionSavePageMeta       = "le_custom_save_page_meta"
	actionSaveSettings       = "le_custom_save_settings"

	consentNonceAction = "cookie_consent"
	maxFormBytes       = 1 << 20
)

// adminActions require the admin bearer token and a nonce bound to the action name.
var adminActions = map[string]bool{
	actionSaveServices:       true,
	actionGetPageData:        true,
	actionGetMetaDescription: true,
	actionSavePageMeta:       true,
	actionSaveSettings:       true,
}

// handleAjax serves POST /ajax with the action in the form body.
func (a *app) handleAjax(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, httpx.Message{Message: "invalid form", Code: "invalid_request"})
		return
	}
	a.dispatch(w, r, r.PostFormValue("action"))
}

func (a *app) dispatch(w http.ResponseWriter, r *http.Request, action string) {
	if err := parseForm(w, r); err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, httpx.Message{Message: "invalid form", Code: "invalid_request"})
		return
	}
	action = strings.TrimSpace(action)
	if adminActions[action] {
		if !a.authorized(r) {
			httpx.WriteFailure(w, http.StatusForbidden, httpx.Message{Message: "forbidden", Code: "forbidden"})
			return
		}
		if err := a.nonces.Verify(r.PostFormValue("nonce"), action); err != nil {
			httpx.WriteFailure(w, http.StatusForbidden, httpx.Message{Message: "invalid nonce", Code: contact.CodeInvalidNonce})
			return
		}
	}

	switch action {
	case actionContactSubmit:
		a.handleContactSubmit(w, r)
	case actionConsentSave:
		a.handleConsentSave(w, r)
	case actionSaveServices:
		a.handleSaveServices(w, r)
	case actionGetPageData:
		a.handleGetPageData(w, r)
	case actionGetMetaDescription:
		a.handleGetMetaDescription(w, r)
	case actionSavePageMeta:
		a.handleSavePageMeta(w, r)
	case actionSaveSettings:
		a.handleSaveSettings(w, r)
	default:
		httpx.WriteFailure(w, http.StatusBadRequest, httpx.Message{Message: "unknown action", Code: "unknown_action"})
	}
}

func parseForm(w http.ResponseWriter, r *http.Request) error {
	if r.PostForm != nil {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxFormBytes)
	}
	return r.ParseForm()
}

func (a *app) authorized(r *http.Request) bool {
	token := strings.TrimSpace(a.cfg.Admin.Token)
	if token == "" {
		return false
	}
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return false
	}
	given := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return subtle.ConstantTimeCompare([]byte(given), []byte(token)) == 1
}

func (a *app) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.authorized(r) {
			httpx.WriteFailure(w, http.StatusForbidden, httpx.Message{Message: "forbidden", Code: "forbidden"})
			return
		}
		next(w, r)
	}
}

// handleNonce issues a nonce for the action named in ?for=.
func (a *app) handleNonce(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimSpace(r.URL.Query().Get("for"))
	if action == "" {
		httpx.WriteFailure(w, http.StatusBadRequest, httpx.Message{Message: "missing action", Code: "missing_field", Field: "for"})
		return
	}
	value, err := a.nonces.Issue(action)
	if err != nil {
		requestLogger(r.Context(), a.logger).Error("nonce issue failed", zap.Error(err))
		httpx.WriteServerError(r.Context(), w, "nonce_unavailable", "nonce unavailable")
		return
	}
	httpx.WriteSuccess(w, map[string]string{"action": action, "nonce": value})
}

func (a *app) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	lang := r.PostFormValue("lang")
	if lang == "" {
		lang = i18n.Detect(r.Referer())
	}
	req := contact.Request{
		FirstName:      r.PostFormValue("first_name"),
		LastName:       r.PostFormValue("last_name"),
		Email:          r.PostFormValue("email"),
		Phone:          r.PostFormValue("phone"),
		Subject:        r.PostFormValue("subject"),
		Message:        r.PostFormValue("message"),
		Privacy:        checked(r.PostFormValue("privacy")),
		Nonce:          r.PostFormValue("nonce"),
		RecaptchaToken: r.PostFormValue("g-recaptcha-response"),
		Lang:           lang,
		RemoteIP:       clientIP(r),
	}
	res, err := a.contact.Submit(r.Context(), req)
	if err != nil {
		var verr *contact.ValidationError
		var derr *contact.DeliveryError
		switch {
		case errors.As(err, &verr):
			status := http.StatusBadRequest
			if errors.Is(err, contact.ErrRateLimited) {
				status = http.StatusTooManyRequests
			}
			httpx.WriteFailure(w, status, httpx.Message{Message: verr.Message, Code: verr.Code, Field: verr.Field})
		case errors.As(err, &derr):
			httpx.WriteFailure(w, http.StatusInternalServerError, httpx.Message{Message: derr.Message, Code: contact.CodeSendFailed})
		default:
			requestLogger(r.Context(), a.logger).Error("contact submit failed", zap.Error(err))
			httpx.WriteServerError(r.Context(), w, "internal", "internal error")
		}
		return
	}
	httpx.WriteSuccess(w, res)
}

func (a *app) handleConsentSave(w http.ResponseWriter, r *http.Request) {
	if err := a.nonces.Verify(r.PostFormValue("nonce"), consentNonceAction); err != nil {
		httpx.WriteFailure(w, http.StatusForbidden, httpx.Message{Message: "invalid nonce", Code: contact.CodeInvalidNonce})
		return
	}
	rec := consent.Accept(w, a.now(), a.cfg.IsProduction())
	httpx.WriteSuccess(w, rec)
}

func (a *app) handleSaveServices(w http.ResponseWriter, r *http.Request) {
	lang := i18n.Normalize(r.PostFormValue("lang"))
	var entries []content.ServiceEntry
	if err := json.Unmarshal([]byte(r.PostFormValue("services")), &entries); err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, httpx.Message{Message: "services must be a JSON array", Code: "invalid_json", Field: "services"})
		return
	}
	raw, err := content.EncodeServices(entries)
	if err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, httpx.Message{Message: err.Error(), Code: "invalid_json", Field: "services"})
		return
	}
	key := content.LangKey(content.BaseServices, lang)
	if err := a.settings.Set(r.Context(), map[string]string{key: raw}); err != nil {
		a.storageFailure(w, r, err)
		return
	}
	httpx.WriteSuccess(w, map[string]any{
		"lang":     lang,
		"services": content.New(a.values(r.Context())).Services(lang),
	})
}

// pageData is the admin view of a page and its meta record.
type pageData struct {
	Slug      string     `json:"slug"`
	Kind      string     `json:"kind"`
	Lang      string     `json:"lang"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Template  string     `json:"template,omitempty"`
	Meta      pages.Meta `json:"meta"`
	HasMeta   bool       `json:"has_meta"`
	SEOTitle  string     `json:"seo_title"`
	SEODesc   string     `json:"meta_description"`
	UpdatedAt string     `json:"updated_at,omitempty"`
}

func (a *app) requestedPage(w http.ResponseWriter, r *http.Request) (pages.Page, bool) {
	slug := strings.TrimSpace(r.PostFormValue("slug"))
	if slug == "" {
		httpx.WriteFailure(w, http.StatusBadRequest, httpx.Message{Message: "missing slug", Code: contact.CodeMissingField, Field: "slug"})
		return pages.Page{}, false
	}
	p, err := a.pages.Get(slug)
	if err != nil {
		httpx.WriteFailure(w, http.StatusNotFound, httpx.Message{Message: "page not found", Code: "not_found", Field: "slug"})
		return pages.Page{}, false
	}
	return p, true
}

func (a *app) describePage(r *http.Request, p pages.Page) (pageData, error) {
	ctx := r.Context()
	meta, hasMeta, err := a.meta.Get(ctx, p.Slug)
	if err != nil {
		return pageData{}, err
	}
	body, err := pages.RenderBody(p)
	if err != nil {
		return pageData{}, err
	}
	lang := i18n.Normalize(p.Lang)
	in := seoInput{
		PageTitle:       p.Title,
		SEOTitle:        meta.SEOTitle,
		MetaDescription: meta.MetaDescription,
		HeroSubtitle:    meta.Hero.Subtitle,
		Summary:         p.Summary,
		Body:            string(body),
		Fallback:        a.bundle.T(lang, "site.description"),
		SiteName:        a.contactData(ctx).PracticeName,
	}
	title, desc := in.resolve()
	out := pageData{
		Slug:     p.Slug,
		Kind:     p.Kind,
		Lang:     lang,
		Title:    p.Title,
		URL:      a.cfg.Site.BaseURL + p.URLPath(),
		Template: p.Template,
		Meta:     meta,
		HasMeta:  hasMeta,
		SEOTitle: title,
		SEODesc:  desc,
	}
	if !p.UpdatedAt.IsZero() {
		out.UpdatedAt = p.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return out, nil
}

func (a *app) handleGetPageData(w http.ResponseWriter, r *http.Request) {
	p, ok := a.requestedPage(w, r)
	if !ok {
		return
	}
	data, err := a.describePage(r, p)
	if err != nil {
		a.storageFailure(w, r, err)
		return
	}
	httpx.WriteSuccess(w, data)
}

func (a *app) handleGetMetaDescription(w http.ResponseWriter, r *http.Request) {
	p, ok := a.requestedPage(w, r)
	if !ok {
		return
	}
	data, err := a.describePage(r, p)
	if err != nil {
		a.storageFailure(w, r, err)
		return
	}
	httpx.WriteSuccess(w, map[string]string{
		"title":       data.SEOTitle,
		"description": data.SEODesc,
	})
}

func (a *app) handleSavePageMeta(w http.ResponseWriter, r *http.Request) {
	p, ok := a.requestedPage(w, r)
	if !ok {
		return
	}
	var meta pages.Meta
	if err := json.Unmarshal([]byte(r.PostFormValue("meta")), &meta); err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, httpx.Message{Message: "meta must be a JSON object", Code: "invalid_json", Field: "meta"})
		return
	}
	saved, err := a.meta.Save(r.Context(), p.Slug, meta)
	if err != nil {
		a.storageFailure(w, r, err)
		return
	}
	httpx.WriteSuccess(w, saved)
}

func (a *app) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var incoming map[string]string
	if err := json.Unmarshal([]byte(r.PostFormValue("settings")), &incoming); err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, httpx.Message{Message: "settings must be a JSON object of strings", Code: "invalid_json", Field: "settings"})
		return
	}
	accepted := map[string]string{}
	rejected := []string{}
	for k, v := range incoming {
		if !content.IsEditable(k) {
			rejected = append(rejected, k)
			continue
		}
		accepted[k] = strings.TrimSpace(v)
	}
	if len(accepted) > 0 {
		if err := a.settings.Set(r.Context(), accepted); err != nil {
			a.storageFailure(w, r, err)
			return
		}
	}
	keys := make([]string, 0, len(accepted))
	for k := range accepted {
		keys = append(keys, k)
	}
	httpx.WriteSuccess(w, map[string]any{"saved": sortedStrings(keys), "rejected": sortedStrings(rejected)})
}

func (a *app) storageFailure(w http.ResponseWriter, r *http.Request, err error) {
	requestLogger(r.Context(), a.logger).Error("settings storage failed", zap.Error(err))
	httpx.WriteServerError(r.Context(), w, "storage_unavailable", "storage unavailable")
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

func sortedStrings(in []string) []string {
	sort.Strings(in)
	return in
}

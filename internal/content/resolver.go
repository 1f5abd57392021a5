// Package content merges customizer settings with built-in defaults into the
// structures templates render: contact data, colours, services, CTA, hero and
// about blocks. Missing or malformed values never produce errors.
package content

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/vuducle/le-custom-sub000/internal/i18n"
	"github.com/vuducle/le-custom-sub000/internal/settings"
)

// Address is the postal address of the practice.
type Address struct {
	Street  string `json:"street"`
	Zip     string `json:"zip"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// String formats the address on one line, e.g. "Parkstraße 12, 10115 Berlin".
func (a Address) String() string {
	locality := strings.TrimSpace(a.Zip + " " + a.City)
	parts := make([]string, 0, 2)
	for _, p := range []string{strings.TrimSpace(a.Street), locality} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Phone holds the displayed number and the dialable link value.
type Phone struct {
	Display string `json:"display"`
	Link    string `json:"link"`
}

var phoneNoise = strings.NewReplacer(" ", "", "/", "", "-", "", "(", "", ")", "")

// Href returns "tel:<link>" with separators removed, or "" without a link.
func (p Phone) Href() string {
	link := phoneNoise.Replace(strings.TrimSpace(p.Link))
	if link == "" {
		return ""
	}
	return "tel:" + link
}

// MapSettings configure the embedded map.
type MapSettings struct {
	Query string `json:"query"`
	Lat   string `json:"lat"`
	Lng   string `json:"lng"`
	Zoom  int    `json:"zoom"`
}

// Legal holds the imprint details.
type Legal struct {
	VATID                string `json:"vat_id"`
	Chamber              string `json:"chamber"`
	ProfessionalTitle    string `json:"professional_title"`
	SupervisoryAuthority string `json:"supervisory_authority"`
}

// ContactData is the practice contact block.
type ContactData struct {
	PracticeName string            `json:"practice_name"`
	Doctor       string            `json:"doctor"`
	Address      Address           `json:"address"`
	Phone        Phone             `json:"phone"`
	Fax          string            `json:"fax"`
	Email        string            `json:"email"`
	Hours        map[string]string `json:"hours"`
	Languages    string            `json:"languages"`
	Map          MapSettings       `json:"map"`
	Legal        Legal             `json:"legal"`
}

// ColorScheme is the site palette as hex colours.
type ColorScheme struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Text       string `json:"text"`
	Background string `json:"background"`
}

// ServiceEntry is one card of the services section.
type ServiceEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ButtonText  string `json:"button_text"`
	ButtonURL   string `json:"button_url"`
	Icon        string `json:"icon"`
}

// CTAData is the call-to-action band.
type CTAData struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	ButtonText string `json:"button_text"`
	ButtonURL  string `json:"button_url"`
}

// HeroData is a hero section, either for a landing page or a single page.
type HeroData struct {
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	ImageURL     string `json:"image_url"`
	VideoURL     string `json:"video_url"`
	TextColor    string `json:"text_color"`
	OverlayColor string `json:"overlay_color"`
	Layout       Layout `json:"layout"`
}

// AboutBlock is an image/text section.
type AboutBlock struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	ImageURL        string `json:"image_url"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	Layout          Layout `json:"layout"`
}

// Layout positions an image relative to its text.
type Layout string

const (
	LayoutLeft      Layout = "left"
	LayoutRight     Layout = "right"
	LayoutTextOnly  Layout = "text-only"
	LayoutImageOnly Layout = "image-only"
)

// ParseLayout maps unknown values onto LayoutLeft.
func ParseLayout(s string) Layout {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case LayoutLeft, LayoutRight, LayoutTextOnly, LayoutImageOnly:
		return l
	}
	return LayoutLeft
}

// ShowImage reports whether the layout renders the image.
func (l Layout) ShowImage() bool { return l != LayoutTextOnly }

// ShowText reports whether the layout renders the text.
func (l Layout) ShowText() bool { return l != LayoutImageOnly }

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Resolver reads a settings snapshot. Create one per request.
type Resolver struct {
	values settings.Values
}

func New(values settings.Values) *Resolver {
	if values == nil {
		values = settings.Values{}
	}
	return &Resolver{values: values}
}

func (r *Resolver) str(key string) string {
	return r.values.String(key, defaultContact[key])
}

// Contact returns contact data with defaults for unset fields. Imprint fields
// have no defaults and stay empty when unset.
func (r *Resolver) Contact() ContactData {
	hours := make(map[string]string, len(Weekdays))
	for _, day := range Weekdays {
		hours[day] = r.values.String(HoursKey(day), defaultHours[day])
	}
	zoom := r.values.Int(KeyMapZoom, 15)
	if zoom < 1 || zoom > 21 {
		zoom = 15
	}
	return ContactData{
		PracticeName: r.str(KeyPracticeName),
		Doctor:       r.str(KeyDoctor),
		Address: Address{
			Street:  r.str(KeyStreet),
			Zip:     r.str(KeyZip),
			City:    r.str(KeyCity),
			Country: r.str(KeyCountry),
		},
		Phone:     Phone{Display: r.str(KeyPhone), Link: r.str(KeyPhoneLink)},
		Fax:       r.str(KeyFax),
		Email:     r.str(KeyEmail),
		Hours:     hours,
		Languages: r.str(KeyLanguages),
		Map: MapSettings{
			Query: r.str(KeyMapQuery),
			Lat:   r.str(KeyMapLat),
			Lng:   r.str(KeyMapLng),
			Zoom:  zoom,
		},
		Legal: Legal{
			VATID:                r.values.String(KeyVATID, ""),
			Chamber:              r.values.String(KeyChamber, ""),
			ProfessionalTitle:    r.values.String(KeyProfessionalTitle, ""),
			SupervisoryAuthority: r.values.String(KeySupervisoryAuthority, ""),
		},
	}
}

// Colors returns the palette; invalid hex values fall back per colour.
func (r *Resolver) Colors() ColorScheme {
	pick := func(key, fallback string) string {
		if v := r.values.String(key, ""); hexColor.MatchString(v) {
			return v
		}
		return fallback
	}
	return ColorScheme{
		Primary:    pick(KeyColorPrimary, defaultColors.Primary),
		Secondary:  pick(KeyColorSecondary, defaultColors.Secondary),
		Accent:     pick(KeyColorAccent, defaultColors.Accent),
		Text:       pick(KeyColorText, defaultColors.Text),
		Background: pick(KeyColorBackground, defaultColors.Background),
	}
}

// Services decodes the JSON list for lang. Invalid JSON or an empty list
// yields the built-in services.
func (r *Resolver) Services(lang string) []ServiceEntry {
	lang = i18n.Normalize(lang)
	raw := r.values.String(LangKey(BaseServices, lang), "")
	if raw != "" {
		var entries []ServiceEntry
		if err := json.Unmarshal([]byte(raw), &entries); err == nil && len(entries) > 0 {
			return entries
		}
	}
	defaults := defaultServices[lang]
	out := make([]ServiceEntry, len(defaults))
	copy(out, defaults)
	return out
}

// EncodeServices validates entries for storage: fields are trimmed and
// entries without a title are dropped.
func EncodeServices(entries []ServiceEntry) (string, error) {
	clean := make([]ServiceEntry, 0, len(entries))
	for _, e := range entries {
		e.Title = strings.TrimSpace(e.Title)
		if e.Title == "" {
			continue
		}
		e.Description = strings.TrimSpace(e.Description)
		e.ButtonText = strings.TrimSpace(e.ButtonText)
		e.ButtonURL = strings.TrimSpace(e.ButtonURL)
		e.Icon = strings.TrimSpace(e.Icon)
		clean = append(clean, e)
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return "", fmt.Errorf("content: encode services: %w", err)
	}
	return string(raw), nil
}

// CTA returns the call-to-action band for lang.
func (r *Resolver) CTA(lang string) CTAData {
	lang = i18n.Normalize(lang)
	def := defaultCTA[lang]
	return CTAData{
		Title:      r.values.String(LangKey(BaseCTATitle, lang), def.Title),
		Text:       r.values.String(LangKey(BaseCTAText, lang), def.Text),
		ButtonText: r.values.String(LangKey(BaseCTAButtonText, lang), def.ButtonText),
		ButtonURL:  r.values.String(LangKey(BaseCTAButtonURL, lang), def.ButtonURL),
	}
}

// Hero returns the landing hero for lang.
func (r *Resolver) Hero(lang string) HeroData {
	lang = i18n.Normalize(lang)
	def := defaultHero[lang]
	return HeroData{
		Title:        r.values.String(LangKey(BaseHeroTitle, lang), def.Title),
		Subtitle:     r.values.String(LangKey(BaseHeroSubtitle, lang), def.Subtitle),
		ImageURL:     r.values.String(KeyHeroImage, ""),
		VideoURL:     r.values.String(KeyHeroVideo, ""),
		TextColor:    r.color(KeyHeroTextColor),
		OverlayColor: r.color(KeyHeroOverlayColor),
		Layout:       ParseLayout(r.values.String(KeyHeroLayout, "")),
	}
}

// About returns the landing about block for lang.
func (r *Resolver) About(lang string) AboutBlock {
	lang = i18n.Normalize(lang)
	def := defaultAbout[lang]
	return AboutBlock{
		Title:           r.values.String(LangKey(BaseAboutTitle, lang), def.Title),
		Content:         r.values.String(LangKey(BaseAboutContent, lang), def.Content),
		ImageURL:        r.values.String(KeyAboutImage, ""),
		BackgroundColor: r.color(KeyAboutBgColor),
		TextColor:       r.color(KeyAboutTextColor),
		Layout:          ParseLayout(r.values.String(KeyAboutLayout, "")),
	}
}

func (r *Resolver) color(key string) string {
	if v := r.values.String(key, ""); hexColor.MatchString(v) {
		return v
	}
	return ""
}

// MapQuery is the location passed to map services: the configured query,
// else "lat,lng", else the address.
func (r *Resolver) MapQuery() string {
	c := r.Contact()
	if c.Map.Query != "" {
		return c.Map.Query
	}
	if c.Map.Lat != "" && c.Map.Lng != "" {
		return c.Map.Lat + "," + c.Map.Lng
	}
	addr := c.Address.String()
	if c.Address.Country != "" && addr != "" {
		addr += ", " + c.Address.Country
	}
	return addr
}

// MapEmbedURL returns the Google Maps iframe source.
func (r *Resolver) MapEmbedURL() string {
	zoom := r.Contact().Map.Zoom
	return "https://www.google.com/maps?q=" + url.QueryEscape(r.MapQuery()) + "&z=" + strconv.Itoa(zoom) + "&output=embed"
}

// DirectionsURL links to Google Maps route planning to the practice.
func (r *Resolver) DirectionsURL() string {
	return "https://www.google.com/maps/dir/?api=1&destination=" + url.QueryEscape(r.MapQuery())
}

// OpeningHours returns one row per weekday with localized labels.
func (r *Resolver) OpeningHours(lang string) []DayHours {
	c := r.Contact()
	rows := make([]DayHours, 0, len(Weekdays))
	for _, day := range Weekdays {
		text := c.Hours[day]
		rows = append(rows, DayHours{
			Day:       day,
			Label:     WeekdayLabel(day, i18n.Normalize(lang)),
			Text:      text,
			Intervals: ParseHours(text),
		})
	}
	return rows
}

// AnalyticsID returns the configured analytics measurement id, if any.
func (r *Resolver) AnalyticsID() string {
	return r.values.String(KeyAnalyticsID, "")
}

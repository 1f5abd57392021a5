package content

// Settings keys read by the resolver and written by the customizer actions.
const (
	KeyPracticeName = "practice_name"
	KeyDoctor       = "contact_doctor"
	KeyStreet       = "contact_street"
	KeyZip          = "contact_zip"
	KeyCity         = "contact_city"
	KeyCountry      = "contact_country"
	KeyPhone        = "contact_phone"
	KeyPhoneLink    = "contact_phone_link"
	KeyFax          = "contact_fax"
	KeyEmail        = "contact_email"
	KeyLanguages    = "contact_languages"

	KeyMapQuery = "map_query"
	KeyMapLat   = "map_lat"
	KeyMapLng   = "map_lng"
	KeyMapZoom  = "map_zoom"

	KeyVATID                = "imprint_vat_id"
	KeyChamber              = "imprint_chamber"
	KeyProfessionalTitle    = "imprint_professional_title"
	KeySupervisoryAuthority = "imprint_supervisory_authority"

	KeyColorPrimary    = "color_primary"
	KeyColorSecondary  = "color_secondary"
	KeyColorAccent     = "color_accent"
	KeyColorText       = "color_text"
	KeyColorBackground = "color_background"

	KeyHeroImage        = "hero_image"
	KeyHeroVideo        = "hero_video"
	KeyHeroTextColor    = "hero_text_color"
	KeyHeroOverlayColor = "hero_overlay_color"
	KeyHeroLayout       = "hero_layout"

	KeyAboutImage     = "about_image"
	KeyAboutBgColor   = "about_bg_color"
	KeyAboutTextColor = "about_text_color"
	KeyAboutLayout    = "about_layout"

	KeyAnalyticsID = "analytics_id"
)

// Weekdays in display order; hours are stored as "hours_<weekday>".
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// HoursKey returns the settings key for a weekday.
func HoursKey(day string) string { return "hours_" + day }

// LangKey suffixes a per-language key, e.g. LangKey("cta_title", "en") = "cta_title_en".
func LangKey(base, lang string) string { return base + "_" + lang }

// Per-language key bases.
const (
	BaseServices      = "services"
	BaseCTATitle      = "cta_title"
	BaseCTAText       = "cta_text"
	BaseCTAButtonText = "cta_button_text"
	BaseCTAButtonURL  = "cta_button_url"
	BaseHeroTitle     = "hero_title"
	BaseHeroSubtitle  = "hero_subtitle"
	BaseAboutTitle    = "about_title"
	BaseAboutContent  = "about_content"
)

// EditableKeys lists the keys the settings action may write. Per-language keys
// are matched on their base.
var EditableKeys = map[string]bool{
	KeyPracticeName: true, KeyDoctor: true, KeyStreet: true, KeyZip: true, KeyCity: true,
	KeyCountry: true, KeyPhone: true, KeyPhoneLink: true, KeyFax: true, KeyEmail: true,
	KeyLanguages: true, KeyMapQuery: true, KeyMapLat: true, KeyMapLng: true, KeyMapZoom: true,
	KeyVATID: true, KeyChamber: true, KeyProfessionalTitle: true, KeySupervisoryAuthority: true,
	KeyColorPrimary: true, KeyColorSecondary: true, KeyColorAccent: true, KeyColorText: true,
	KeyColorBackground: true, KeyHeroImage: true, KeyHeroVideo: true, KeyHeroTextColor: true,
	KeyHeroOverlayColor: true, KeyHeroLayout: true, KeyAboutImage: true, KeyAboutBgColor: true,
	KeyAboutTextColor: true, KeyAboutLayout: true, KeyAnalyticsID: true,
	"hours_monday": true, "hours_tuesday": true, "hours_wednesday": true, "hours_thursday": true,
	"hours_friday": true, "hours_saturday": true, "hours_sunday": true,
}

// IsEditable reports whether the customizer may write key. Services use their own action.
func IsEditable(key string) bool {
	if EditableKeys[key] {
		return true
	}
	for _, lang := range []string{"de", "en"} {
		suffix := "_" + lang
		if len(key) > len(suffix) && key[len(key)-len(suffix):] == suffix {
			base := key[:len(key)-len(suffix)]
			return base != BaseServices && isLangBase(base)
		}
	}
	return false
}

func isLangBase(base string) bool {
	switch base {
	case BaseCTATitle, BaseCTAText, BaseCTAButtonText, BaseCTAButtonURL,
		BaseHeroTitle, BaseHeroSubtitle, BaseAboutTitle, BaseAboutContent:
		return true
	}
	return false
}

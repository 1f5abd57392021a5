package content

var defaultContact = map[string]string{
	KeyPracticeName: "Zahnarztpraxis am Park",
	KeyDoctor:       "Dr. med. dent. Anna Beispiel",
	KeyStreet:       "Parkstraße 12",
	KeyZip:          "10115",
	KeyCity:         "Berlin",
	KeyCountry:      "Deutschland",
	KeyPhone:        "030 624 792",
	KeyPhoneLink:    "030624792",
	KeyEmail:        "info@zahnarztpraxis-am-park.de",
	KeyLanguages:    "Deutsch, English",
	KeyMapZoom:      "15",
}

var defaultHours = map[string]string{
	"monday":    "08:00 - 12:00, 14:00 - 18:00",
	"tuesday":   "08:00 - 12:00, 14:00 - 18:00",
	"wednesday": "08:00 - 13:00",
	"thursday":  "08:00 - 12:00, 14:00 - 19:00",
	"friday":    "08:00 - 13:00",
	"saturday":  "",
	"sunday":    "",
}

var defaultColors = ColorScheme{
	Primary:    "#0f766e",
	Secondary:  "#134e4a",
	Accent:     "#f59e0b",
	Text:       "#1f2937",
	Background: "#ffffff",
}

var defaultServices = map[string][]ServiceEntry{
	"de": {
		{Title: "Prophylaxe", Description: "Professionelle Zahnreinigung und individuelle Vorsorge für gesunde Zähne.", ButtonText: "Mehr erfahren", ButtonURL: "/kontakt/", Icon: "tooth"},
		{Title: "Implantologie", Description: "Festsitzender Zahnersatz auf Implantaten, sorgfältig geplant.", ButtonText: "Mehr erfahren", ButtonURL: "/kontakt/", Icon: "implant"},
		{Title: "Ästhetische Zahnheilkunde", Description: "Bleaching, Veneers und zahnfarbene Füllungen.", ButtonText: "Mehr erfahren", ButtonURL: "/kontakt/", Icon: "sparkle"},
		{Title: "Kinderzahnheilkunde", Description: "Behutsame Behandlung für unsere jüngsten Patienten.", ButtonText: "Mehr erfahren", ButtonURL: "/kontakt/", Icon: "child"},
	},
	"en": {
		{Title: "Prophylaxis", Description: "Professional teeth cleaning and individual prevention for healthy teeth.", ButtonText: "Learn more", ButtonURL: "/en/contact/", Icon: "tooth"},
		{Title: "Implantology", Description: "Fixed dentures on implants, carefully planned.", ButtonText: "Learn more", ButtonURL: "/en/contact/", Icon: "implant"},
		{Title: "Aesthetic dentistry", Description: "Bleaching, veneers and tooth-coloured fillings.", ButtonText: "Learn more", ButtonURL: "/en/contact/", Icon: "sparkle"},
		{Title: "Paediatric dentistry", Description: "Gentle treatment for our youngest patients.", ButtonText: "Learn more", ButtonURL: "/en/contact/", Icon: "child"},
	},
}

var defaultCTA = map[string]CTAData{
	"de": {Title: "Vereinbaren Sie Ihren Termin", Text: "Wir freuen uns auf Ihren Besuch in unserer Praxis.", ButtonText: "Termin anfragen", ButtonURL: "/kontakt/"},
	"en": {Title: "Book your appointment", Text: "We look forward to welcoming you to our practice.", ButtonText: "Request appointment", ButtonURL: "/en/contact/"},
}

var defaultHero = map[string]HeroData{
	"de": {Title: "Ihr Lächeln in besten Händen", Subtitle: "Moderne Zahnmedizin mit Herz im Zentrum von Berlin."},
	"en": {Title: "Your smile in the best hands", Subtitle: "Modern dentistry with heart in the centre of Berlin."},
}

var defaultAbout = map[string]AboutBlock{
	"de": {Title: "Über unsere Praxis", Content: "Seit über 20 Jahren begleiten wir Familien aus der Nachbarschaft mit einer ruhigen, persönlichen Behandlung."},
	"en": {Title: "About our practice", Content: "For more than 20 years we have cared for families from the neighbourhood with calm, personal treatment."},
}

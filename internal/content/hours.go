package content

import (
	"regexp"
	"strings"
)

// Interval is one opening period in 24h "HH:MM" notation.
type Interval struct {
	Opens  string `json:"opens"`
	Closes string `json:"closes"`
}

var hoursPattern = regexp.MustCompile(`(\d{1,2}:\d{2})\s*[-–]\s*(\d{1,2}:\d{2})`)

// ParseHours extracts every "HH:MM - HH:MM" pair from free text, in order.
// Hyphen and en dash are accepted, with or without surrounding spaces.
// Text without pairs ("geschlossen", "nach Vereinbarung") yields nil.
func ParseHours(text string) []Interval {
	matches := hoursPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Interval, 0, len(matches))
	for _, m := range matches {
		out = append(out, Interval{Opens: padClock(m[1]), Closes: padClock(m[2])})
	}
	return out
}

func padClock(s string) string {
	if i := strings.IndexByte(s, ':'); i == 1 {
		return "0" + s
	}
	return s
}

// DayHours is one row of the opening hours table.
type DayHours struct {
	Day       string
	Label     string
	Text      string
	Intervals []Interval
}

// SchemaDay returns the schema.org day name, e.g. "Monday".
func (d DayHours) SchemaDay() string {
	if d.Day == "" {
		return ""
	}
	return strings.ToUpper(d.Day[:1]) + d.Day[1:]
}

var weekdayLabels = map[string]map[string]string{
	"de": {
		"monday": "Montag", "tuesday": "Dienstag", "wednesday": "Mittwoch", "thursday": "Donnerstag",
		"friday": "Freitag", "saturday": "Samstag", "sunday": "Sonntag",
	},
	"en": {
		"monday": "Monday", "tuesday": "Tuesday", "wednesday": "Wednesday", "thursday": "Thursday",
		"friday": "Friday", "saturday": "Saturday", "sunday": "Sunday",
	},
}

// WeekdayLabel returns the localized weekday name.
func WeekdayLabel(day, lang string) string {
	if labels, ok := weekdayLabels[lang]; ok {
		return labels[day]
	}
	return weekdayLabels["de"][day]
}

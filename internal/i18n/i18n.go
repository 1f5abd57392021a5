package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Default is the site language used when no marker is present.
const Default = "de"

// Supported lists the site languages in display order.
var Supported = []string{"de", "en"}

var matcher = language.NewMatcher([]language.Tag{language.German, language.English})

type Bundle struct {
	dict     map[string]map[string]string
	fallback string
}

// Load reads <dir>/<lang>.json for every supported language. Only the fallback file is required.
func Load(dir string, fallback string) (*Bundle, error) {
	if fallback == "" {
		fallback = Default
	}
	b := &Bundle{dict: map[string]map[string]string{}, fallback: fallback}
	for _, l := range Supported {
		raw, err := os.ReadFile(filepath.Join(dir, l+".json"))
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	return b, nil
}

// FromMap builds a bundle from in-memory dictionaries.
func FromMap(fallback string, dict map[string]map[string]string) *Bundle {
	if fallback == "" {
		fallback = Default
	}
	return &Bundle{dict: dict, fallback: fallback}
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// Languages returns the loaded languages, sorted.
func (b *Bundle) Languages() []string {
	out := make([]string, 0, len(b.dict))
	for k := range b.dict {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// T returns translation for key in lang, falling back to default and finally key.
// Extra args are applied with fmt.Sprintf when present.
func (b *Bundle) T(lang, key string, args ...any) string {
	msg := b.lookup(lang, key)
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

func (b *Bundle) lookup(lang, key string) string {
	if b == nil {
		return key
	}
	if m, ok := b.dict[Normalize(lang)]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Normalize maps any BCP 47 tag ("en-GB", "de_AT", "EN") onto a site language.
// Unparseable or unsupported values yield Default.
func Normalize(tag string) string {
	tag = strings.TrimSpace(strings.ReplaceAll(tag, "_", "-"))
	if tag == "" {
		return Default
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return Default
	}
	_, idx, conf := matcher.Match(parsed)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}

// Locale returns the HTML/OpenGraph locale for a site language.
func Locale(lang string) string {
	if Normalize(lang) == "en" {
		return "en_US"
	}
	return "de_DE"
}

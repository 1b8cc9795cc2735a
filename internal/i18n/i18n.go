// Package i18n resolves the console language and its message catalogue.
package i18n

import (
	"context"
	"net/http"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Supported console languages.
var (
	English = language.English
	Arabic  = language.Arabic
)

var matcher = language.NewMatcher([]language.Tag{English, Arabic})

var messages = map[language.Tag]map[string]string{
	English: {
		"nav.jobs":         "Jobs",
		"nav.talentPool":   "Talent Pool",
		"nav.intelligence": "Intelligence",
		"nav.portal":       "Portal",
		"nav.login":        "Login",
	},
	Arabic: {
		"nav.jobs":         "الوظائف",
		"nav.talentPool":   "مجمع المواهب",
		"nav.intelligence": "الذكاء",
		"nav.portal":       "البوابة",
		"nav.login":        "تسجيل الدخول",
	},
}

// Match picks the closest supported language for the given preferences.
// Unknown or empty input resolves to English.
func Match(prefs ...string) language.Tag {
	tags := make([]language.Tag, 0, len(prefs))
	for _, p := range prefs {
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return English
	}
	if idx == 1 {
		return Arabic
	}
	return English
}

// FromRequest resolves the language from the lang query parameter, then the
// Accept-Language header.
func FromRequest(r *http.Request) language.Tag {
	return Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

// T looks up key in the catalogue for tag, falling back to English and then
// the key itself.
func T(tag language.Tag, key string) string {
	if msg, ok := messages[tag][key]; ok {
		return msg
	}
	if msg, ok := messages[English][key]; ok {
		return msg
	}
	return key
}

// SortBy orders n items by the label returned from key, using the collation
// rules of tag. The sort is stable.
func SortBy(tag language.Tag, n int, key func(i int) string, swap func(i, j int)) {
	c := collate.New(tag)
	sort.Stable(&keyed{n: n, key: key, swap: swap, c: c})
}

type keyed struct {
	n    int
	key  func(int) string
	swap func(i, j int)
	c    *collate.Collator
}

func (k *keyed) Len() int           { return k.n }
func (k *keyed) Less(i, j int) bool { return k.c.CompareString(k.key(i), k.key(j)) < 0 }
func (k *keyed) Swap(i, j int)      { k.swap(i, j) }

type langContextKey struct{}

// WithLanguage stores the resolved language in ctx.
func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, langContextKey{}, tag)
}

// FromContext returns the language stored in ctx, or English.
func FromContext(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(langContextKey{}).(language.Tag); ok {
		return tag
	}
	return English
}

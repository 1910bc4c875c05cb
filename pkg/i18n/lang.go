package i18n

import (
	"golang.org/x/text/language"
)

// maxAcceptLanguageLength bounds the parsed header size.
const maxAcceptLanguageLength = 4096

// Matcher negotiates the best supported language for an Accept-Language
// header.
type Matcher struct {
	supported []string
	matcher   language.Matcher
	fallback  string
}

// NewMatcher builds a matcher over the supported languages. fallback is
// returned when nothing matches; an empty fallback defaults to the first
// supported language, or DefaultLanguage when the list is empty.
func NewMatcher(supported []string, fallback string) *Matcher {
	tags := make([]language.Tag, 0, len(supported))
	names := make([]string, 0, len(supported))
	for _, s := range supported {
		tag, err := language.Parse(s)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		names = append(names, s)
	}

	if fallback == "" {
		fallback = DefaultLanguage
		if len(names) > 0 {
			fallback = names[0]
		}
	}

	return &Matcher{
		supported: names,
		matcher:   language.NewMatcher(tags),
		fallback:  fallback,
	}
}

// Match returns the supported language closest to header.
func (m *Matcher) Match(header string) string {
	if header == "" || len(m.supported) == 0 {
		return m.fallback
	}
	if len(header) > maxAcceptLanguageLength {
		header = header[:maxAcceptLanguageLength]
	}

	prefs, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(prefs) == 0 {
		return m.fallback
	}

	_, idx, conf := m.matcher.Match(prefs...)
	if conf == language.No || idx < 0 || idx >= len(m.supported) {
		return m.fallback
	}
	return m.supported[idx]
}

// Supports reports whether lang is one of the supported languages.
func (m *Matcher) Supports(lang string) bool {
	for _, s := range m.supported {
		if s == lang {
			return true
		}
	}
	return false
}

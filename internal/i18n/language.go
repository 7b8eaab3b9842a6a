// Package i18n holds the supported site languages and the translated UI
// strings rendered by the views.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language is a two-letter site language code.
type Language string

const (
	English Language = "en"
	German  Language = "de"
)

// String returns the language code.
func (l Language) String() string { return string(l) }

// Set is the closed set of languages a site is served in.
type Set struct {
	Supported []Language
	Default   Language
}

// DefaultSet is the English/German set with English as default.
func DefaultSet() Set {
	return Set{Supported: []Language{English, German}, Default: English}
}

// NewSet builds a Set from configuration strings. Each code is
// canonicalised to its primary subtag, so "de-DE" and "DE" both yield "de".
func NewSet(codes []string, def string) (Set, error) {
	if len(codes) == 0 {
		return Set{}, fmt.Errorf("at least one language is required")
	}

	set := Set{Supported: make([]Language, 0, len(codes))}
	for _, code := range codes {
		lang, err := canonical(code)
		if err != nil {
			return Set{}, err
		}
		if set.Contains(lang) {
			return Set{}, fmt.Errorf("language %q listed twice", code)
		}
		set.Supported = append(set.Supported, lang)
	}

	d, err := canonical(def)
	if err != nil {
		return Set{}, fmt.Errorf("default language: %w", err)
	}
	if !set.Contains(d) {
		return Set{}, fmt.Errorf("default language %q is not in the supported set", def)
	}
	set.Default = d

	return set, nil
}

func canonical(code string) (Language, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", code, err)
	}
	base, _ := tag.Base()
	return Language(base.String()), nil
}

// Contains reports whether lang is supported.
func (s Set) Contains(lang Language) bool {
	for _, l := range s.Supported {
		if l == lang {
			return true
		}
	}
	return false
}

// Parse returns the supported language named by s. Only exact two-letter
// codes are accepted; the comparison is case-insensitive.
func (s Set) Parse(code string) (Language, bool) {
	lang := Language(strings.ToLower(strings.TrimSpace(code)))
	if s.Contains(lang) {
		return lang, true
	}
	return "", false
}

// OrDefault returns lang if supported, otherwise the default language.
func (s Set) OrDefault(lang Language) Language {
	if s.Contains(lang) {
		return lang
	}
	return s.Default
}

// Others returns the supported languages other than lang, in order. Pages
// link to these as alternates.
func (s Set) Others(lang Language) []Language {
	out := make([]Language, 0, len(s.Supported))
	for _, l := range s.Supported {
		if l != lang {
			out = append(out, l)
		}
	}
	return out
}

// Strings returns the supported codes in order.
func (s Set) Strings() []string {
	out := make([]string, len(s.Supported))
	for i, l := range s.Supported {
		out[i] = string(l)
	}
	return out
}

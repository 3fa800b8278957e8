// Package convention holds the pure naming and modifier helpers rules share.
// Every conversion is idempotent: converting an already converted name is a no-op.
package convention

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)

	wordBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
	nonWord      = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	underscores  = regexp.MustCompile(`_{2,}`)
)

func splitName(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '$' })
}

// allUpper reports whether s has letters and none of them is lower case.
func allUpper(s string) bool {
	letters := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// ToLowerCamel converts MAX_RETRY, max_retry or MaxRetry to maxRetry.
func ToLowerCamel(name string) string {
	parts := splitName(name)
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range parts {
		if allUpper(p) {
			p = lower.String(p)
		}
		if i == 0 {
			b.WriteString(lowerFirst(p))
		} else {
			b.WriteString(upperFirst(p))
		}
	}
	return b.String()
}

// ToUpperCamel converts user_info or userInfo to UserInfo.
func ToUpperCamel(name string) string {
	var b strings.Builder
	for _, p := range splitName(name) {
		b.WriteString(upperFirst(p))
	}
	return b.String()
}

// ToConstantCase converts maxRetryCount to MAX_RETRY_COUNT.
func ToConstantCase(name string) string {
	s := wordBoundary.ReplaceAllString(name, "${1}_${2}")
	s = nonWord.ReplaceAllString(s, "_")
	s = underscores.ReplaceAllString(s, "_")
	return upper.String(s)
}

// StripEdgeMarkers removes leading and trailing '_' and '$'.
func StripEdgeMarkers(name string) string {
	return strings.Trim(name, "_$")
}

// HasEdgeMarker reports whether name starts or ends with '_' or '$'.
func HasEdgeMarker(name string) bool {
	if name == "" {
		return false
	}
	first, last := name[0], name[len(name)-1]
	return first == '_' || first == '$' || last == '_' || last == '$'
}

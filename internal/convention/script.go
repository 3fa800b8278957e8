package convention

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var latinHanBoundary = regexp.MustCompile(`[a-zA-Z]\p{Han}|\p{Han}[a-zA-Z]`)

// ContainsHan reports whether name has at least one Han character.
func ContainsHan(name string) bool {
	for _, r := range norm.NFC.String(name) {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// MixesLatinHan reports whether Latin letters touch Han characters in name.
func MixesLatinHan(name string) bool {
	return latinHanBoundary.MatchString(norm.NFC.String(name))
}

// DropHan removes Han characters from name.
func DropHan(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Han, r) {
			return -1
		}
		return r
	}, norm.NFC.String(name))
}

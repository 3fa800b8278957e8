package convention

import (
	"fmt"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

const regexCacheSize = 256

// Default shapes.
const (
	LowerCamelPattern = `^[a-z][a-zA-Z0-9]*$`
	UpperCamelPattern = `^[A-Z][a-zA-Z0-9]*$`
	ConstantPattern   = `^[A-Z_][A-Z0-9_]*$`
)

var regexCache = mustCache()

func mustCache() *lru.Cache[string, *regexp.Regexp] {
	c, err := lru.New[string, *regexp.Regexp](regexCacheSize)
	if err != nil {
		panic(fmt.Errorf("regex cache: %w", err))
	}
	return c
}

// Compile returns a compiled pattern, reusing earlier compilations.
func Compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Add(pattern, re)
	return re, nil
}

// MustCompile is Compile for patterns known to be valid.
func MustCompile(pattern string) *regexp.Regexp {
	re, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

func IsLowerCamel(name string) bool   { return MustCompile(LowerCamelPattern).MatchString(name) }
func IsUpperCamel(name string) bool   { return MustCompile(UpperCamelPattern).MatchString(name) }
func IsConstantCase(name string) bool { return MustCompile(ConstantPattern).MatchString(name) }

// Package naming derives the per-file class names used in generated samples.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	prefixes = [...]string{"Base", "Core", "Main", "Primary", "Default", "Custom", "Extended", "Abstract"}
	suffixes = [...]string{"Entity", "Model", "Item", "Record", "Data", "Info", "Spec", "Entry"}
)

// ClassName returns the class name for the file at index in module.
// The prefix cycles with the index; the suffix is offset by the module name length
// so that modules of different lengths do not share a name sequence.
func ClassName(module string, index int) string {
	prefix := prefixes[mod(index, len(prefixes))]
	suffix := suffixes[mod(index+len(module), len(suffixes))]
	return prefix + Capitalize(module) + suffix
}

// Capitalize upper-cases the first character and lower-cases the rest
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

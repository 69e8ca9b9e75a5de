package util

import (
	"regexp"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// ApostropheVariants returns the input with straight and curly apostrophes
// swapped in both directions. The input itself is not included.
func ApostropheVariants(name string) []string {
	out := make([]string, 0, 2)
	if v := strings.ReplaceAll(name, "'", "’"); v != name {
		out = append(out, v)
	}
	if v := strings.ReplaceAll(name, "’", "'"); v != name {
		out = append(out, v)
	}
	return out
}

// Titlecase uppercases the first letter of each space-separated word.
func Titlecase(input string) string {
	words := strings.Fields(input)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func StringPtr(v string) *string { return &v }

func IntPtr(v int) *int { return &v }

// StringPtrOrNil trims the value and returns nil for the empty string.
func StringPtrOrNil(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

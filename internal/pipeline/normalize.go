package pipeline

import (
	"regexp"
	"strings"
)

// QualifierWords are trailing tokens that vary between sources for the same
// venue ("Tower Bridge" vs "Tower Bridge Tour") and are stripped for
// comparison purposes.
var QualifierWords = []string{"tour", "tours", "visit", "ticket", "tickets", "experience"}

var (
	rePossessive = regexp.MustCompile("['’`]s?\\b")
	reNonAlnum   = regexp.MustCompile(`[^a-z0-9\s]`)
	reRuns       = regexp.MustCompile(`\s+`)
	reQualifier  = regexp.MustCompile(`\s+(` + strings.Join(QualifierWords, "|") + `)$`)
)

// NormalizeName canonicalizes a venue name into the comparison key used for
// dedup and fuzzy matching. Deterministic and idempotent; key equality is the
// only notion of "same venue".
func NormalizeName(name string) string {
	n := strings.ToLower(name)
	n = rePossessive.ReplaceAllString(n, "")
	n = reNonAlnum.ReplaceAllString(n, "")
	n = strings.TrimSpace(reRuns.ReplaceAllString(n, " "))
	n = reQualifier.ReplaceAllString(n, "")
	n = strings.ReplaceAll(n, "cemetary", "cemetery")
	return n
}

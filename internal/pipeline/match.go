package pipeline

import (
	"strings"

	"venuedb/internal/util"
)

// Matcher resolves free-text venue names against the stored venue list.
type Matcher struct {
	threshold float64
}

// NewMatcher builds a matcher with the given containment-score threshold.
// Scores at or below the threshold are treated as no match.
func NewMatcher(threshold float64) *Matcher {
	return &Matcher{threshold: threshold}
}

// Match returns the stored name the input resolves to, or nil.
//
// Exact and apostrophe-variant hits win outright. Otherwise names are
// compared by normalized key: key equality returns immediately, and failing
// that every stored name whose key contains (or is contained by) the input's
// key is scored min(len)/max(len), best score above the threshold wins.
// Linear scan per call; venue counts are small.
func (m *Matcher) Match(name string, stored []string) *string {
	for _, s := range stored {
		if s == name {
			return util.StringPtr(s)
		}
	}
	for _, variant := range util.ApostropheVariants(name) {
		for _, s := range stored {
			if s == variant {
				return util.StringPtr(s)
			}
		}
	}

	target := NormalizeName(name)
	var bestMatch *string
	bestScore := 0.0

	for _, s := range stored {
		normalized := NormalizeName(s)
		if normalized == target {
			return util.StringPtr(s)
		}
		if strings.Contains(normalized, target) || strings.Contains(target, normalized) {
			score := containmentScore(target, normalized)
			if score > bestScore {
				bestScore = score
				bestMatch = util.StringPtr(s)
			}
		}
	}

	if bestScore > m.threshold {
		return bestMatch
	}
	return nil
}

func containmentScore(a, b string) float64 {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	shorter, longer := la, lb
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	return float64(shorter) / float64(longer)
}

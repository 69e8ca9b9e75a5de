package pipeline

import "venuedb/internal"

// DeduplicateCandidates merges candidates that normalize to the same key.
// When a markdown and a google_maps record collide, the markdown record's
// name and section are kept (they are the curated ones) and its source is
// relabelled "both". Output order is not significant.
func DeduplicateCandidates(candidates []internal.VenueCandidate) []internal.VenueCandidate {
	seen := map[string]internal.VenueCandidate{}
	order := make([]string, 0, len(candidates))

	for _, c := range candidates {
		key := NormalizeName(c.Name)
		existing, ok := seen[key]
		if !ok {
			seen[key] = c
			order = append(order, key)
			continue
		}
		if existing.Source == internal.SourceGoogleMaps && c.Source == internal.SourceMarkdown {
			c.Source = internal.SourceBoth
			seen[key] = c
		} else if existing.Source == internal.SourceMarkdown && c.Source == internal.SourceGoogleMaps {
			existing.Source = internal.SourceBoth
			seen[key] = existing
		}
	}

	out := make([]internal.VenueCandidate, 0, len(seen))
	for _, key := range order {
		out = append(out, seen[key])
	}
	return out
}

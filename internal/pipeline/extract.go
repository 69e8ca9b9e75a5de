package pipeline

import (
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"venuedb/internal"
	"venuedb/internal/util"
)

// VenueSections are the itinerary headings whose bullets name venues.
var VenueSections = map[string]struct{}{
	"Food/Pubs":             {},
	"Museums":               {},
	"Destinations":          {},
	"Random / Low priority": {},
}

// SkipSections never contribute venues.
var SkipSections = map[string]struct{}{
	"Prep":           {},
	"Stuff going on": {},
}

// PlaceQualifiers are parenthetical phrases after a link that belong to the
// venue name rather than describing it.
var PlaceQualifiers = map[string]struct{}{
	"sky garden":    {},
	"soho":          {},
	"shoreditch":    {},
	"covent garden": {},
	"camden":        {},
	"brixton":       {},
	"mayfair":       {},
	"kensington":    {},
}

var (
	reHeading      = regexp.MustCompile(`^(#{1,3})\s+(.*?)$`)
	reBullet       = regexp.MustCompile(`^\*\s+(.+)$`)
	rePlainPrefix  = regexp.MustCompile(`^([A-Za-z][A-Za-z &'\x{2019}]+?)[.\s]*[([]`)
	reLeadingLink  = regexp.MustCompile(`^\[([^\]]+)\]\([^)]+\)(.*)`)
	reLinkAnywhere = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reParenPhrase  = regexp.MustCompile(`^\(([a-zA-Z\s]+)\)`)
)

// ExtractVenueName pulls a venue name out of a bullet's text, or returns ""
// when the bullet is an annotation rather than a venue. Rules run in priority
// order and the first hit wins: a plain name immediately preceding a link or
// parenthetical beats the link's own label, which beats raw text.
func ExtractVenueName(content string) string {
	// Indented continuation of the previous item, not a venue.
	if strings.HasPrefix(content, "  ") || strings.HasPrefix(content, "\t") {
		return ""
	}

	if m := rePlainPrefix.FindStringSubmatch(content); m != nil {
		name := strings.TrimRight(strings.TrimSpace(m[1]), ".")
		if len([]rune(name)) > 3 {
			return name
		}
	}

	if m := reLeadingLink.FindStringSubmatch(content); m != nil {
		label := strings.TrimSpace(m[1])
		remainder := strings.TrimSpace(m[2])
		if pm := reParenPhrase.FindStringSubmatch(remainder); pm != nil {
			subtitle := strings.TrimSpace(pm[1])
			if _, ok := PlaceQualifiers[strings.ToLower(subtitle)]; ok {
				return label + " " + util.Titlecase(subtitle)
			}
		}
		return label
	}

	if m := reLinkAnywhere.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}

	if clean := strings.TrimSpace(content); len([]rune(clean)) > 2 {
		return clean
	}

	return ""
}

// ParseItinerary reads a markdown (or PDF, by extension) itinerary and
// returns venue candidates in document order.
func ParseItinerary(path string) ([]internal.VenueCandidate, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return parseItineraryPDF(path)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseItineraryLines(splitLines(string(blob))), nil
}

// parseItineraryLines walks lines keeping track of the current section and
// whether that section is venue-eligible. Only bullets inside an eligible
// section reach the extractor.
func parseItineraryLines(lines []string) []internal.VenueCandidate {
	var out []internal.VenueCandidate
	currentSection := ""
	inVenueSection := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			section := strings.TrimSpace(m[2])
			if _, ok := VenueSections[section]; ok {
				currentSection = section
				inVenueSection = true
			} else if _, skip := SkipSections[section]; skip || section == "" {
				inVenueSection = false
			} else if m[1] == "##" || m[1] == "###" {
				inVenueSection = false
			}
			continue
		}

		if !inVenueSection {
			continue
		}

		m := reBullet.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		name := ExtractVenueName(strings.TrimSpace(m[1]))
		if name == "" {
			continue
		}
		out = append(out, internal.VenueCandidate{
			Name:    name,
			Section: currentSection,
			Source:  internal.SourceMarkdown,
		})
	}

	return out
}

func parseItineraryPDF(path string) ([]internal.VenueCandidate, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		lines = append(lines, splitLines(text)...)
	}
	return parseItineraryLines(lines), nil
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"venuedb/internal"
)

// DefaultTakeoutSection labels rows whose tags match no mapping rule.
const DefaultTakeoutSection = "Google Maps List"

// ParseTakeoutDir parses every Takeout saved-list export (.csv or .xlsx) in
// the directory. Takeout files may carry a preamble title line before the real
// header row, so parsing starts at the first row whose first cell is "title".
// A file that cannot be parsed is logged and skipped.
func ParseTakeoutDir(dir string, log zerolog.Logger) []internal.VenueCandidate {
	var out []internal.VenueCandidate

	for _, pattern := range []string{"*.csv", "*.xlsx"} {
		paths, _ := filepath.Glob(filepath.Join(dir, pattern))
		for _, path := range paths {
			var (
				rows [][]string
				err  error
			)
			if strings.HasSuffix(path, ".xlsx") {
				rows, err = readXLSXRows(path)
			} else {
				rows, err = readCSVRows(path)
			}
			if err != nil {
				log.Warn().Err(err).Str("file", filepath.Base(path)).Msg("could not parse takeout file, skipping")
				continue
			}

			venues, ok := candidatesFromRows(rows)
			if !ok {
				log.Warn().Str("file", filepath.Base(path)).Msg("no Title header found, skipping")
				continue
			}
			out = append(out, venues...)
		}
	}

	return out
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

// candidatesFromRows locates the real header row and maps each body row to a
// candidate. Returns ok=false when no header row is present.
func candidatesFromRows(rows [][]string) ([]internal.VenueCandidate, bool) {
	headerIdx := -1
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		first := strings.ToLower(strings.TrimSpace(row[0]))
		if first == "title" || strings.HasPrefix(first, "title,") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, false
	}

	header := rows[headerIdx]
	colIdx := map[string]int{}
	for i, cell := range header {
		colIdx[strings.TrimSpace(cell)] = i
	}

	nameIdx := firstPresent(colIdx, "Title", "Name", "title", "name")
	tagsIdx, hasTags := colIdx["Tags"]

	var out []internal.VenueCandidate
	for _, row := range rows[headerIdx+1:] {
		name := cellAt(row, nameIdx)
		if name == "" {
			continue
		}
		section := DefaultTakeoutSection
		if hasTags {
			if tags := cellAt(row, tagsIdx); tags != "" {
				section = TagsToSection(tags)
			}
		}
		out = append(out, internal.VenueCandidate{
			Name:    name,
			Section: section,
			Source:  internal.SourceGoogleMaps,
		})
	}
	return out, true
}

// TagsToSection maps a Takeout tag string onto a section label. Rules are
// checked in order; the first substring hit wins.
func TagsToSection(tags string) string {
	t := strings.ToLower(tags)
	switch {
	case strings.Contains(t, "shopping"):
		return "Shopping"
	case strings.Contains(t, "art"):
		return "Museums"
	case strings.Contains(t, "site"):
		return "Destinations"
	case strings.Contains(t, "food"), strings.Contains(t, "restaurant"), strings.Contains(t, "pub"):
		return "Food/Pubs"
	default:
		return DefaultTakeoutSection
	}
}

func firstPresent(colIdx map[string]int, names ...string) int {
	for _, n := range names {
		if i, ok := colIdx[n]; ok {
			return i
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

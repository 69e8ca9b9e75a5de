package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"venuedb/internal"
	"venuedb/internal/util"
)

// ImportReservationsCSV reads a reservations CSV (venue, date, time, end_time,
// confirmation, party_size, notes header) and upserts every row with a venue
// and a date. Rows missing either are skipped.
func (s *Service) ImportReservationsCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open reservations csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	colIdx := map[string]int{}
	for i, name := range header {
		colIdx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("read csv row: %w", err)
		}

		cell := func(name string) string {
			idx, ok := colIdx[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		venue := cell("venue")
		date := cell("date")
		if venue == "" || date == "" {
			continue
		}

		r := internal.Reservation{
			VenueName:    venue,
			Date:         date,
			Time:         util.StringPtrOrNil(cell("time")),
			EndTime:      util.StringPtrOrNil(cell("end_time")),
			Confirmation: util.StringPtrOrNil(cell("confirmation")),
			Notes:        util.StringPtrOrNil(cell("notes")),
		}
		if raw := cell("party_size"); raw != "" {
			size, err := strconv.Atoi(raw)
			if err != nil {
				return count, fmt.Errorf("bad party_size %q: %w", raw, err)
			}
			r.PartySize = &size
		}

		matched, err := s.AddReservation(r)
		if err != nil {
			return count, err
		}
		if matched != nil {
			s.log.Info().Str("venue", venue).Str("matched", *matched).Msg("reservation matched")
		} else {
			s.log.Warn().Str("venue", venue).Msg("reservation venue not in store, saved anyway")
		}
		count++
	}

	return count, nil
}

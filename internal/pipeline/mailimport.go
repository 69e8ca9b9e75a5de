package pipeline

import (
	"venuedb/internal"
	"venuedb/internal/connectors"
)

type ImportResult struct {
	Fetched  int
	Imported int
	Skipped  int
}

// ImportReservationMail pulls messages from the connector and turns every
// parseable booking confirmation into a stored reservation. Messages that
// don't parse are logged and skipped, never fatal.
func (s *Service) ImportReservationMail(conn connectors.MailConnector, label string, max int) (ImportResult, error) {
	messages, err := conn.FetchInbox(label, max)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Fetched: len(messages)}
	for _, msg := range messages {
		draft, err := ParseConfirmation(msg.Raw)
		if err != nil {
			s.log.Debug().Err(err).Str("subject", msg.Subject).Msg("not a confirmation, skipping")
			result.Skipped++
			continue
		}

		matched, err := s.AddReservation(internal.Reservation{
			VenueName:    draft.VenueName,
			Date:         draft.Date,
			Time:         draft.Time,
			EndTime:      draft.EndTime,
			Confirmation: draft.Confirmation,
			PartySize:    draft.PartySize,
		})
		if err != nil {
			return result, err
		}
		evt := s.log.Info().Str("venue", draft.VenueName).Str("date", draft.Date)
		if matched != nil {
			evt = evt.Str("matched", *matched)
		}
		evt.Msg("imported reservation")
		result.Imported++
	}

	return result, nil
}

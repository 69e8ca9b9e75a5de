package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"

	"venuedb/internal/util"
)

// ReservationDraft is what a confirmation email parses down to before it is
// matched and stored.
type ReservationDraft struct {
	VenueName    string
	Date         string
	Time         *string
	EndTime      *string
	Confirmation *string
	PartySize    *int
}

var (
	reConfVenue   = regexp.MustCompile(`(?i)(?:reservation|booking|table)\s+(?:at|for)\s+([^.,\n]+?)(?:\s+(?:on|for)\s+\d|\s+is\s|[.,\n]|$)`)
	reConfISODate = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	reConfWordy   = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})\b`)
	reConfTime    = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	reConfCode    = regexp.MustCompile(`(?i)confirmation\s*(?:number|code|#)?\s*[:#]?\s*([A-Z0-9][A-Z0-9-]{3,})`)
	reConfParty   = regexp.MustCompile(`(?i)(?:party of|table for|for a party of)\s+(\d{1,2})\b`)
)

// ParseConfirmation extracts a reservation draft from a raw confirmation
// email. The subject is tried before the body for the venue name since
// booking services lead with "Your reservation at X". Returns an error when
// no venue or no date can be found.
func ParseConfirmation(raw []byte) (*ReservationDraft, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	subject := env.GetHeader("Subject")
	body := env.Text
	combined := subject + "\n" + body

	draft := &ReservationDraft{}
	for _, text := range []string{subject, body} {
		if m := reConfVenue.FindStringSubmatch(text); m != nil {
			draft.VenueName = strings.TrimSpace(m[1])
			break
		}
	}
	if draft.VenueName == "" {
		return nil, errors.New("no venue name found")
	}

	if m := reConfISODate.FindStringSubmatch(combined); m != nil {
		draft.Date = m[1]
	} else if m := reConfWordy.FindStringSubmatch(combined); m != nil {
		if parsed, err := time.Parse("January 2 2006", m[1]+" "+m[2]+" "+m[3]); err == nil {
			draft.Date = parsed.Format("2006-01-02")
		}
	}
	if draft.Date == "" {
		return nil, errors.New("no date found")
	}

	times := reConfTime.FindAllStringSubmatch(combined, 2)
	if len(times) > 0 {
		draft.Time = util.StringPtr(normalizeClock(times[0]))
	}
	if len(times) > 1 {
		draft.EndTime = util.StringPtr(normalizeClock(times[1]))
	}

	if m := reConfCode.FindStringSubmatch(combined); m != nil {
		draft.Confirmation = util.StringPtr(m[1])
	}
	if m := reConfParty.FindStringSubmatch(combined); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			draft.PartySize = util.IntPtr(n)
		}
	}

	return draft, nil
}

// normalizeClock renders a matched clock time as 24h HH:MM.
func normalizeClock(m []string) string {
	hour, _ := strconv.Atoi(m[1])
	meridiem := strings.ToLower(m[3])
	if meridiem == "pm" && hour < 12 {
		hour += 12
	}
	if meridiem == "am" && hour == 12 {
		hour = 0
	}
	return fmt.Sprintf("%02d:%s", hour, m[2])
}

package pipeline

import "testing"

const confirmationFixture = `Subject: Your reservation at Duck & Waffle is confirmed
From: bookings@example.com
To: me@example.com
Content-Type: text/plain; charset=utf-8

Hi,

Your table for 4 is confirmed for 2026-02-15 at 7:30 pm until 9:30 pm.
Confirmation number: ABC-1234

See you soon.
`

func TestParseConfirmation(t *testing.T) {
	draft, err := ParseConfirmation([]byte(confirmationFixture))
	if err != nil {
		t.Fatal(err)
	}

	if draft.VenueName != "Duck & Waffle" {
		t.Fatalf("venue %q", draft.VenueName)
	}
	if draft.Date != "2026-02-15" {
		t.Fatalf("date %q", draft.Date)
	}
	if draft.Time == nil || *draft.Time != "19:30" {
		t.Fatalf("time %v", draft.Time)
	}
	if draft.EndTime == nil || *draft.EndTime != "21:30" {
		t.Fatalf("end time %v", draft.EndTime)
	}
	if draft.Confirmation == nil || *draft.Confirmation != "ABC-1234" {
		t.Fatalf("confirmation %v", draft.Confirmation)
	}
	if draft.PartySize == nil || *draft.PartySize != 4 {
		t.Fatalf("party size %v", draft.PartySize)
	}
}

func TestParseConfirmationWordyDate(t *testing.T) {
	raw := `Subject: Booking at The Ledbury
Content-Type: text/plain; charset=utf-8

Your booking at The Ledbury is confirmed for March 3, 2026 at 12:15 am.
`
	draft, err := ParseConfirmation([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if draft.Date != "2026-03-03" {
		t.Fatalf("date %q", draft.Date)
	}
	if draft.Time == nil || *draft.Time != "00:15" {
		t.Fatalf("time %v", draft.Time)
	}
}

func TestParseConfirmationRejectsNonConfirmations(t *testing.T) {
	noVenue := `Subject: Weekly newsletter
Content-Type: text/plain; charset=utf-8

Nothing to book here.
`
	if _, err := ParseConfirmation([]byte(noVenue)); err == nil {
		t.Fatal("want error for missing venue")
	}

	noDate := `Subject: Your reservation at Hawksmoor
Content-Type: text/plain; charset=utf-8

We look forward to seeing you.
`
	if _, err := ParseConfirmation([]byte(noDate)); err == nil {
		t.Fatal("want error for missing date")
	}
}

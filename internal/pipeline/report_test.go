package pipeline

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"venuedb/internal"
	"venuedb/internal/storage"
	"venuedb/internal/util"
)

func reportFixtureDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.UpsertVenue(internal.Venue{
		Name:      "Tower of London",
		Source:    util.StringPtr("markdown"),
		Section:   util.StringPtr("Destinations"),
		Address:   util.StringPtr("London EC3N 4AB"),
		HoursText: util.StringPtr("Monday: 9-5 | Tuesday: 9-5"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.SetBooking("Tower of London", internal.BookingUpdate{TicketPrice: util.StringPtr("£34.80")}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertEvent(internal.Event{
		Title:     "Key Ceremony",
		VenueName: util.StringPtr("Tower of London"),
		Date:      util.StringPtr("2026-02-14"),
		Time:      util.StringPtr("21:30"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertEvent(internal.Event{Title: "Winter Lights", Date: util.StringPtr("2026-02-10")}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertReservation(internal.Reservation{
		VenueName: "Hawksmoor",
		Date:      "2026-02-16",
		Time:      util.StringPtr("19:00"),
		PartySize: util.IntPtr(2),
	}); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestPrintSummary(t *testing.T) {
	db := reportFixtureDB(t)
	var buf bytes.Buffer
	if err := PrintSummary(db, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Destinations", "Tower of London", "London EC3N 4AB", "Monday: 9-5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReport(t *testing.T) {
	db := reportFixtureDB(t)
	var buf bytes.Buffer
	if err := PrintReport(db, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"--- Booking ---", "£34.80", "--- Events ---", "Key Ceremony", "General Events", "Winter Lights"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestPrintEventsAndReservations(t *testing.T) {
	db := reportFixtureDB(t)

	var buf bytes.Buffer
	if err := PrintEvents(db, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "--- 2026-02-10 ---") || !strings.Contains(out, "--- 2026-02-14 ---") {
		t.Fatalf("events not grouped by date:\n%s", out)
	}

	buf.Reset()
	if err := PrintReservations(db, &buf); err != nil {
		t.Fatal(err)
	}
	out = buf.String()
	if !strings.Contains(out, "Mon Feb 16, 2026") {
		t.Fatalf("reservation date not formatted:\n%s", out)
	}
	if !strings.Contains(out, "Party size: 2") {
		t.Fatalf("party size missing:\n%s", out)
	}
}

func TestPrintEmptyDatabase(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var buf bytes.Buffer
	if err := PrintSummary(db, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No venues in database.") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestDumpJSON(t *testing.T) {
	db := reportFixtureDB(t)
	var buf bytes.Buffer
	if err := DumpJSON(db, &buf); err != nil {
		t.Fatal(err)
	}

	var payload struct {
		Venues       []internal.Venue       `json:"venues"`
		Events       []internal.Event       `json:"events"`
		Reservations []internal.Reservation `json:"reservations"`
	}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Venues) != 1 || len(payload.Events) != 2 || len(payload.Reservations) != 1 {
		t.Fatalf("counts %d/%d/%d", len(payload.Venues), len(payload.Events), len(payload.Reservations))
	}
}

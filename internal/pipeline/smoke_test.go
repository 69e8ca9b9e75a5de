package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"venuedb/internal"
	"venuedb/internal/config"
	"venuedb/internal/places"
	"venuedb/internal/storage"
	"venuedb/internal/util"
)

type fakeLookup struct {
	calls   int
	noMatch map[string]bool
}

func (f *fakeLookup) SearchText(ctx context.Context, name string) (*places.Place, error) {
	f.calls++
	if f.noMatch[name] {
		return nil, nil
	}
	return &places.Place{
		ID:        "place-" + name,
		Name:      name,
		Address:   "1 Test Street, London",
		HoursText: "Monday: 9:00 AM – 5:00 PM",
		MapsURI:   "https://maps.example/" + name,
		Raw:       "{}",
	}, nil
}

func (f *fakeLookup) Query(name string) string { return name + " London" }

func testConfig(t *testing.T) (config.Config, string) {
	t.Helper()
	tmp := t.TempDir()
	cfg, _ := config.Load()
	cfg.DBPath = filepath.Join(tmp, "app.db")
	cfg.ItineraryPath = filepath.Join(tmp, "trip.md")
	cfg.TakeoutDir = filepath.Join(tmp, "takeout")
	cfg.PlacesAPIKey = "test-key"
	cfg.SearchCity = "London"
	cfg.MatchThreshold = 0.6
	if err := os.MkdirAll(cfg.TakeoutDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return cfg, tmp
}

func TestSmokeParseFetchStore(t *testing.T) {
	cfg, _ := testConfig(t)

	itinerary := `# Trip

## Food/Pubs
* Duck & Waffle ([view](http://x))
* [Lost Souls Pizza](http://y) (vampire-themed pizza bar)

## Museums
* Natural History Museum. [Dinosaurs](http://z)
`
	if err := os.WriteFile(cfg.ItineraryPath, []byte(itinerary), 0o644); err != nil {
		t.Fatal(err)
	}
	csvBlob := "Title,Note,Tags\nduck & waffle,,restaurant\nTate Modern,,art\n"
	if err := os.WriteFile(filepath.Join(cfg.TakeoutDir, "want.csv"), []byte(csvBlob), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	lookup := &fakeLookup{noMatch: map[string]bool{"Tate Modern": true}}
	svc := NewService(db, lookup, cfg, zerolog.Nop())

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// duck & waffle dedups across sources, so 4 unique candidates.
	if result.Parsed != 4 {
		t.Fatalf("parsed %d, want 4", result.Parsed)
	}
	if result.Fetched != 4 || lookup.calls != 4 {
		t.Fatalf("fetched=%d calls=%d, want 4/4", result.Fetched, lookup.calls)
	}

	duck, err := db.GetVenueByName("Duck & Waffle")
	if err != nil {
		t.Fatal(err)
	}
	if duck == nil {
		t.Fatal("markdown name should be the stored one")
	}
	if duck.Source == nil || *duck.Source != string(internal.SourceBoth) {
		t.Fatalf("source %v, want both", duck.Source)
	}
	if duck.Address == nil || *duck.Address == "" {
		t.Fatal("enrichment fields should be populated")
	}

	tate, err := db.GetVenueByName("Tate Modern")
	if err != nil {
		t.Fatal(err)
	}
	if tate == nil || tate.HoursText == nil || *tate.HoursText != "Could not fetch" {
		t.Fatalf("no-result venue should carry the placeholder: %+v", tate)
	}

	// Second run finds everything cached and makes no lookups.
	result, err = svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Fetched != 0 || lookup.calls != 4 {
		t.Fatalf("second run should be a no-op, fetched=%d calls=%d", result.Fetched, lookup.calls)
	}
}

func TestRunFailsFastWithoutAPIKey(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.PlacesAPIKey = ""
	itinerary := "## Food/Pubs\n* Borough Market\n"
	if err := os.WriteFile(cfg.ItineraryPath, []byte(itinerary), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	lookup := &fakeLookup{}
	svc := NewService(db, lookup, cfg, zerolog.Nop())
	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("want error naming the missing key")
	}
	if lookup.calls != 0 {
		t.Fatalf("no lookups should have run, got %d", lookup.calls)
	}
}

func TestAddReservationMatches(t *testing.T) {
	cfg, _ := testConfig(t)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := db.UpsertVenue(internal.Venue{Name: "Ronnie Scott's"}); err != nil {
		t.Fatal(err)
	}

	svc := NewService(db, &fakeLookup{}, cfg, zerolog.Nop())
	matched, err := svc.AddReservation(internal.Reservation{
		VenueName: "Ronnie Scott’s",
		Date:      "2026-02-15",
		Time:      util.StringPtr("19:30"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if matched == nil || *matched != "Ronnie Scott's" {
		t.Fatalf("matched %v", matched)
	}

	stored, err := db.ListReservations()
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Fatalf("got %d reservations", len(stored))
	}
	r := stored[0]
	if r.MatchedVenue == nil || *r.MatchedVenue != "Ronnie Scott's" {
		t.Fatalf("matched_venue %v", r.MatchedVenue)
	}
	if r.CreatedAt == nil || *r.CreatedAt == "" {
		t.Fatal("created_at should default")
	}
}

func TestImportReservationsCSV(t *testing.T) {
	cfg, tmp := testConfig(t)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	svc := NewService(db, &fakeLookup{}, cfg, zerolog.Nop())

	csvBlob := `venue,date,time,end_time,confirmation,party_size,notes
Hawksmoor,2026-02-16,19:00,,RES-77,2,window seat
Sky Garden,2026-02-17,,,,,
,2026-02-18,,,,,
`
	path := filepath.Join(tmp, "reservations.csv")
	if err := os.WriteFile(path, []byte(csvBlob), 0o644); err != nil {
		t.Fatal(err)
	}

	count, err := svc.ImportReservationsCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("imported %d, want 2", count)
	}

	stored, err := db.ListReservations()
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("got %d reservations", len(stored))
	}
	first := stored[0]
	if first.VenueName != "Hawksmoor" || first.PartySize == nil || *first.PartySize != 2 {
		t.Fatalf("unexpected first reservation: %+v", first)
	}
}

func TestImportReservationsCSVMissingFile(t *testing.T) {
	cfg, tmp := testConfig(t)
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	svc := NewService(db, &fakeLookup{}, cfg, zerolog.Nop())
	if _, err := svc.ImportReservationsCSV(filepath.Join(tmp, "missing.csv")); err == nil {
		t.Fatal("want error for a missing file")
	}
}

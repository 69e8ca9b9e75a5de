package viewer

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"venuedb/internal"
	"venuedb/internal/config"
	"venuedb/internal/storage"
	"venuedb/internal/util"
)

func testServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	cfg, _ := config.Load()
	cfg.DBPath = filepath.Join(t.TempDir(), "app.db")

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewServer(cfg, zerolog.Nop()), db
}

func get(t *testing.T, srv *Server, path string) (*http.Response, *goquery.Document) {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", path, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, doc
}

func TestRootRedirectsToVenues(t *testing.T) {
	srv, _ := testServer(t)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusFound {
		t.Fatalf("status %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/venues" {
		t.Fatalf("location %q", loc)
	}
}

func TestVenueListGroupsBySection(t *testing.T) {
	srv, db := testServer(t)

	venues := []internal.Venue{
		{Name: "Borough Market", Section: util.StringPtr("Food/Pubs"), Address: util.StringPtr("8 Southwark St")},
		{Name: "Duck & Waffle", Section: util.StringPtr("Food/Pubs")},
		{Name: "Tate Modern", Section: util.StringPtr("Museums")},
	}
	for _, v := range venues {
		if err := db.UpsertVenue(v); err != nil {
			t.Fatal(err)
		}
	}

	_, doc := get(t, srv, "/venues")

	sections := doc.Find("h2").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	if len(sections) != 2 || sections[0] != "Food/Pubs" || sections[1] != "Museums" {
		t.Fatalf("sections %v", sections)
	}
	if links := doc.Find("td a").Length(); links != 3 {
		t.Fatalf("venue links %d, want 3", links)
	}
}

func TestVenueDetailShowsEventsAndReservations(t *testing.T) {
	srv, db := testServer(t)

	if err := db.UpsertVenue(internal.Venue{
		Name:        "Ronnie Scott's",
		Section:     util.StringPtr("Food/Pubs"),
		DisplayName: util.StringPtr("Ronnie Scott's Jazz Club"),
		Address:     util.StringPtr("47 Frith Street"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertEvent(internal.Event{
		Title:     "Jazz Night",
		VenueName: util.StringPtr("Ronnie Scott's"),
		Date:      util.StringPtr("2026-02-15"),
		Time:      util.StringPtr("20:00"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertReservation(internal.Reservation{
		VenueName:    "ronnie scotts",
		MatchedVenue: util.StringPtr("Ronnie Scott's"),
		Date:         "2026-02-15",
		Time:         util.StringPtr("19:30"),
		PartySize:    util.IntPtr(2),
	}); err != nil {
		t.Fatal(err)
	}

	stored, err := db.GetVenueByName("Ronnie Scott's")
	if err != nil {
		t.Fatal(err)
	}

	_, doc := get(t, srv, fmt.Sprintf("/venue/%d", stored.ID))

	if h1 := doc.Find("h1").Text(); h1 != "Ronnie Scott's Jazz Club" {
		t.Fatalf("h1 %q", h1)
	}
	headings := doc.Find("h2").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	if len(headings) != 2 || headings[0] != "Events" || headings[1] != "Reservations" {
		t.Fatalf("headings %v", headings)
	}
	if !strings.Contains(doc.Text(), "Jazz Night") {
		t.Fatal("event missing from page")
	}
	if !strings.Contains(doc.Text(), "19:30") {
		t.Fatal("reservation missing from page")
	}
}

func TestVenueDetailNotFound(t *testing.T) {
	srv, _ := testServer(t)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/venue/999", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d", w.Code)
	}
}

func TestEventAndReservationPages(t *testing.T) {
	srv, db := testServer(t)

	if err := db.UpsertEvent(internal.Event{
		Title: "Winter Lights",
		Date:  util.StringPtr("2026-02-10"),
		URL:   util.StringPtr("https://example.com/lights"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertReservation(internal.Reservation{
		VenueName: "Hawksmoor",
		Date:      "2026-02-16",
		Time:      util.StringPtr("19:00"),
	}); err != nil {
		t.Fatal(err)
	}

	_, doc := get(t, srv, "/events")
	if links := doc.Find("td a").Length(); links != 1 {
		t.Fatalf("event links %d", links)
	}

	event, err := db.GetEventByID(1)
	if err != nil || event == nil {
		t.Fatalf("event fixture: %v %v", event, err)
	}
	_, doc = get(t, srv, fmt.Sprintf("/event/%d", event.ID))
	if h1 := doc.Find("h1").Text(); h1 != "Winter Lights" {
		t.Fatalf("h1 %q", h1)
	}

	_, doc = get(t, srv, "/reservations")
	if !strings.Contains(doc.Text(), "Hawksmoor") {
		t.Fatal("reservation missing from list")
	}
}

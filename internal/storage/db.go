package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"venuedb/internal"
	"venuedb/internal/util"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := db.migrateBookingColumns(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS venues (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  source TEXT,
  section TEXT,
  search_query TEXT,
  place_id TEXT,
  display_name TEXT,
  address TEXT,
  hours_json TEXT,
  hours_text TEXT,
  maps_uri TEXT,
  raw_response TEXT,
  fetched_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_venues_section ON venues(section);

CREATE TABLE IF NOT EXISTS events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  venue_name TEXT,
  date TEXT,
  time TEXT,
  price TEXT,
  url TEXT,
  category TEXT,
  notes TEXT,
  source TEXT,
  fetched_at TEXT,
  UNIQUE(title, venue_name, date)
);
CREATE INDEX IF NOT EXISTS idx_events_venue ON events(venue_name);

CREATE TABLE IF NOT EXISTS reservations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  venue_name TEXT NOT NULL,
  matched_venue TEXT,
  date TEXT NOT NULL,
  time TEXT,
  end_time TEXT,
  confirmation TEXT,
  party_size INTEGER,
  notes TEXT,
  created_at TEXT,
  UNIQUE(venue_name, date, time)
);
`
	_, err := d.conn.Exec(schema)
	return err
}

// migrateBookingColumns adds booking columns to venues when missing. The
// schema evolves additively; existing rows get NULLs.
func (d *DB) migrateBookingColumns() error {
	rows, err := d.conn.Query(`PRAGMA table_info(venues)`)
	if err != nil {
		return err
	}
	existing := map[string]struct{}{}
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			_ = rows.Close()
			return err
		}
		existing[name] = struct{}{}
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, col := range []string{"ticket_price", "booking_required", "booking_url", "booking_notes", "member_required"} {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := d.conn.Exec(fmt.Sprintf(`ALTER TABLE venues ADD COLUMN %s TEXT`, col)); err != nil {
			return err
		}
	}
	return nil
}

// CachedNames returns the set of venue names already in the store.
func (d *DB) CachedNames() (map[string]struct{}, error) {
	rows, err := d.conn.Query(`SELECT name FROM venues`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]struct{}{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = struct{}{}
	}
	return out, rows.Err()
}

func (d *DB) ListVenueNames() ([]string, error) {
	rows, err := d.conn.Query(`SELECT name FROM venues ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// UpsertVenue inserts or refreshes a venue's parse/enrichment fields. Booking
// columns are deliberately left alone so a refetch never clobbers them.
func (d *DB) UpsertVenue(v internal.Venue) error {
	_, err := d.conn.Exec(`
INSERT INTO venues (name, source, section, search_query, place_id, display_name,
                    address, hours_json, hours_text, maps_uri, raw_response, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
  source=excluded.source,
  section=excluded.section,
  search_query=excluded.search_query,
  place_id=excluded.place_id,
  display_name=excluded.display_name,
  address=excluded.address,
  hours_json=excluded.hours_json,
  hours_text=excluded.hours_text,
  maps_uri=excluded.maps_uri,
  raw_response=excluded.raw_response,
  fetched_at=excluded.fetched_at
`, v.Name, v.Source, v.Section, v.SearchQuery, v.PlaceID, v.DisplayName,
		v.Address, v.HoursJSON, v.HoursText, v.MapsURI, v.RawResponse, v.FetchedAt)
	return err
}

const venueColumns = `id, name, source, section, search_query, place_id, display_name,
       address, hours_json, hours_text, maps_uri, raw_response, fetched_at,
       ticket_price, booking_required, booking_url, booking_notes, member_required`

func scanVenue(row interface{ Scan(...any) error }) (internal.Venue, error) {
	var v internal.Venue
	err := row.Scan(
		&v.ID, &v.Name, &v.Source, &v.Section, &v.SearchQuery, &v.PlaceID, &v.DisplayName,
		&v.Address, &v.HoursJSON, &v.HoursText, &v.MapsURI, &v.RawResponse, &v.FetchedAt,
		&v.TicketPrice, &v.BookingRequired, &v.BookingURL, &v.BookingNotes, &v.MemberRequired,
	)
	return v, err
}

func (d *DB) GetVenueByName(name string) (*internal.Venue, error) {
	v, err := scanVenue(d.conn.QueryRow(`SELECT `+venueColumns+` FROM venues WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (d *DB) GetVenueByID(id int) (*internal.Venue, error) {
	v, err := scanVenue(d.conn.QueryRow(`SELECT `+venueColumns+` FROM venues WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FindVenueName resolves a name to the stored spelling, trying the straight
// and curly apostrophe variants before giving up.
func (d *DB) FindVenueName(name string) (*string, error) {
	candidates := append([]string{name}, util.ApostropheVariants(name)...)
	for _, candidate := range candidates {
		var found string
		err := d.conn.QueryRow(`SELECT name FROM venues WHERE name = ?`, candidate).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &found, nil
	}
	return nil, nil
}

func (d *DB) ListVenues() ([]internal.Venue, error) {
	rows, err := d.conn.Query(`SELECT ` + venueColumns + ` FROM venues ORDER BY section, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SetBooking applies the non-nil booking fields to an existing venue.
func (d *DB) SetBooking(name string, upd internal.BookingUpdate) error {
	sets := []string{}
	params := []any{}
	add := func(col string, val *string) {
		if val != nil {
			sets = append(sets, col+" = ?")
			params = append(params, *val)
		}
	}
	add("ticket_price", upd.TicketPrice)
	add("booking_required", upd.BookingRequired)
	add("booking_url", upd.BookingURL)
	add("booking_notes", upd.BookingNotes)
	add("member_required", upd.MemberRequired)

	if len(sets) == 0 {
		return errors.New("no booking fields provided")
	}

	params = append(params, name)
	result, err := d.conn.Exec(`UPDATE venues SET `+strings.Join(sets, ", ")+` WHERE name = ?`, params...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("venue not found: %s", name)
	}
	return nil
}

func (d *DB) DeleteVenue(name string) error {
	_, err := d.conn.Exec(`DELETE FROM venues WHERE name = ?`, name)
	return err
}

// UpsertEvent inserts an event or, when (title, venue_name, date) already
// exists, updates the remaining fields in place.
func (d *DB) UpsertEvent(e internal.Event) error {
	_, err := d.conn.Exec(`
INSERT INTO events (title, venue_name, date, time, price, url, category, notes, source, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(title, venue_name, date) DO UPDATE SET
  time=excluded.time,
  price=excluded.price,
  url=excluded.url,
  category=excluded.category,
  notes=excluded.notes,
  source=excluded.source,
  fetched_at=excluded.fetched_at
`, e.Title, e.VenueName, e.Date, e.Time, e.Price, e.URL, e.Category, e.Notes, e.Source, e.FetchedAt)
	return err
}

const eventColumns = `id, title, venue_name, date, time, price, url, category, notes, source, fetched_at`

func scanEvent(row interface{ Scan(...any) error }) (internal.Event, error) {
	var e internal.Event
	err := row.Scan(&e.ID, &e.Title, &e.VenueName, &e.Date, &e.Time, &e.Price, &e.URL, &e.Category, &e.Notes, &e.Source, &e.FetchedAt)
	return e, err
}

func (d *DB) ListEvents() ([]internal.Event, error) {
	return d.queryEvents(`SELECT ` + eventColumns + ` FROM events ORDER BY date, time, venue_name`)
}

func (d *DB) EventsForVenue(name string) ([]internal.Event, error) {
	return d.queryEvents(`SELECT `+eventColumns+` FROM events WHERE venue_name = ? ORDER BY date, time`, name)
}

// GeneralEvents are events not tied to a specific venue.
func (d *DB) GeneralEvents() ([]internal.Event, error) {
	return d.queryEvents(`SELECT ` + eventColumns + ` FROM events WHERE venue_name IS NULL OR venue_name = '' ORDER BY date, time`)
}

func (d *DB) queryEvents(query string, args ...any) ([]internal.Event, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *DB) GetEventByID(id int) (*internal.Event, error) {
	e, err := scanEvent(d.conn.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpsertReservation inserts a reservation or updates the one already stored
// under the same (venue_name, date, time).
func (d *DB) UpsertReservation(r internal.Reservation) error {
	_, err := d.conn.Exec(`
INSERT INTO reservations (venue_name, matched_venue, date, time, end_time, confirmation, party_size, notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(venue_name, date, time) DO UPDATE SET
  matched_venue=excluded.matched_venue,
  end_time=excluded.end_time,
  confirmation=excluded.confirmation,
  party_size=excluded.party_size,
  notes=excluded.notes,
  created_at=excluded.created_at
`, r.VenueName, r.MatchedVenue, r.Date, r.Time, r.EndTime, r.Confirmation, r.PartySize, r.Notes, r.CreatedAt)
	return err
}

const reservationColumns = `id, venue_name, matched_venue, date, time, end_time, confirmation, party_size, notes, created_at`

func scanReservation(row interface{ Scan(...any) error }) (internal.Reservation, error) {
	var r internal.Reservation
	err := row.Scan(&r.ID, &r.VenueName, &r.MatchedVenue, &r.Date, &r.Time, &r.EndTime, &r.Confirmation, &r.PartySize, &r.Notes, &r.CreatedAt)
	return r, err
}

func (d *DB) ListReservations() ([]internal.Reservation, error) {
	return d.queryReservations(`SELECT ` + reservationColumns + ` FROM reservations ORDER BY date, time`)
}

func (d *DB) ReservationsForVenue(name string) ([]internal.Reservation, error) {
	return d.queryReservations(`SELECT `+reservationColumns+` FROM reservations WHERE matched_venue = ? OR venue_name = ? ORDER BY date, time`, name, name)
}

func (d *DB) queryReservations(query string, args ...any) ([]internal.Reservation, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

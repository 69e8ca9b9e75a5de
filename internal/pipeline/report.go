package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"venuedb/internal"
	"venuedb/internal/storage"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PrintSummary writes all cached venues grouped by section.
func PrintSummary(db *storage.DB, w io.Writer) error {
	venues, err := db.ListVenues()
	if err != nil {
		return err
	}
	if len(venues) == 0 {
		fmt.Fprintln(w, "No venues in database.")
		return nil
	}

	currentSection := ""
	for _, v := range venues {
		if deref(v.Section) != currentSection {
			currentSection = deref(v.Section)
			fmt.Fprintf(w, "\n%s\n  %s\n%s\n", strings.Repeat("=", 60), currentSection, strings.Repeat("=", 60))
		}
		printVenueBasics(w, v)
		fmt.Fprintf(w, "    Source: %s\n", deref(v.Source))
	}
	return nil
}

func printVenueBasics(w io.Writer, v internal.Venue) {
	fmt.Fprintf(w, "\n  %s\n", v.Name)
	if name := deref(v.DisplayName); name != "" && name != v.Name {
		fmt.Fprintf(w, "    Listed as: %s\n", name)
	}
	if addr := deref(v.Address); addr != "" {
		fmt.Fprintf(w, "    Address: %s\n", addr)
	}
	printHours(w, deref(v.HoursText))
	if uri := deref(v.MapsURI); uri != "" {
		fmt.Fprintf(w, "    Maps: %s\n", uri)
	}
}

func printHours(w io.Writer, hours string) {
	if hours == "" {
		return
	}
	if strings.Contains(hours, " | ") {
		fmt.Fprintln(w, "    Hours:")
		for _, day := range strings.Split(hours, " | ") {
			fmt.Fprintf(w, "      %s\n", day)
		}
		return
	}
	fmt.Fprintf(w, "    Hours: %s\n", hours)
}

// PrintReport writes the full research report: hours, booking info, and the
// events attached to each venue, then events with no venue.
func PrintReport(db *storage.DB, w io.Writer) error {
	venues, err := db.ListVenues()
	if err != nil {
		return err
	}
	if len(venues) == 0 {
		fmt.Fprintln(w, "No venues in database.")
		return nil
	}

	currentSection := ""
	for _, v := range venues {
		if deref(v.Section) != currentSection {
			currentSection = deref(v.Section)
			fmt.Fprintf(w, "\n%s\n  %s\n%s\n", strings.Repeat("=", 60), currentSection, strings.Repeat("=", 60))
		}
		printVenueBasics(w, v)

		if v.TicketPrice != nil || v.BookingRequired != nil || v.BookingURL != nil || v.BookingNotes != nil || v.MemberRequired != nil {
			fmt.Fprintln(w, "    --- Booking ---")
			if v.TicketPrice != nil {
				fmt.Fprintf(w, "    Price: %s\n", *v.TicketPrice)
			}
			if v.BookingRequired != nil {
				fmt.Fprintf(w, "    Booking required: %s\n", *v.BookingRequired)
			}
			if v.BookingURL != nil {
				fmt.Fprintf(w, "    Book here: %s\n", *v.BookingURL)
			}
			if v.MemberRequired != nil {
				fmt.Fprintf(w, "    Membership: %s\n", *v.MemberRequired)
			}
			if v.BookingNotes != nil {
				fmt.Fprintf(w, "    Notes: %s\n", *v.BookingNotes)
			}
		}

		events, err := db.EventsForVenue(v.Name)
		if err != nil {
			return err
		}
		if len(events) > 0 {
			fmt.Fprintln(w, "    --- Events ---")
			for _, e := range events {
				line := "    * " + e.Title
				if e.Date != nil {
					line += fmt.Sprintf(" (%s)", *e.Date)
				}
				if e.Time != nil {
					line += " at " + *e.Time
				}
				if e.Price != nil {
					line += " - " + *e.Price
				}
				fmt.Fprintln(w, line)
				if e.Notes != nil {
					fmt.Fprintf(w, "      %s\n", *e.Notes)
				}
				if e.URL != nil {
					fmt.Fprintf(w, "      %s\n", *e.URL)
				}
			}
		}
	}

	general, err := db.GeneralEvents()
	if err != nil {
		return err
	}
	if len(general) > 0 {
		fmt.Fprintf(w, "\n%s\n  General Events (not venue-specific)\n%s\n", strings.Repeat("=", 60), strings.Repeat("=", 60))
		for _, e := range general {
			line := "\n  * " + e.Title
			if e.Date != nil {
				line += fmt.Sprintf(" (%s)", *e.Date)
			}
			if e.Time != nil {
				line += " at " + *e.Time
			}
			if e.Price != nil {
				line += " - " + *e.Price
			}
			fmt.Fprintln(w, line)
			if e.Notes != nil {
				fmt.Fprintf(w, "    %s\n", *e.Notes)
			}
			if e.URL != nil {
				fmt.Fprintf(w, "    %s\n", *e.URL)
			}
		}
	}
	return nil
}

// PrintEvents writes all events grouped by date.
func PrintEvents(db *storage.DB, w io.Writer) error {
	events, err := db.ListEvents()
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(w, "No events in database.")
		return nil
	}

	currentDate := "\x00"
	for _, e := range events {
		date := deref(e.Date)
		if date != currentDate {
			currentDate = date
			if date == "" {
				date = "No date"
			}
			fmt.Fprintf(w, "\n--- %s ---\n", date)
		}
		line := "  " + e.Title
		if e.VenueName != nil {
			line += " @ " + *e.VenueName
		}
		if e.Time != nil {
			line += " at " + *e.Time
		}
		if e.Price != nil {
			line += fmt.Sprintf(" (%s)", *e.Price)
		}
		fmt.Fprintln(w, line)
		if e.Category != nil {
			fmt.Fprintf(w, "    Category: %s\n", *e.Category)
		}
		if e.Notes != nil {
			fmt.Fprintf(w, "    %s\n", *e.Notes)
		}
		if e.URL != nil {
			fmt.Fprintf(w, "    %s\n", *e.URL)
		}
	}
	return nil
}

// PrintReservations writes all reservations grouped by date.
func PrintReservations(db *storage.DB, w io.Writer) error {
	reservations, err := db.ListReservations()
	if err != nil {
		return err
	}
	if len(reservations) == 0 {
		fmt.Fprintln(w, "No reservations in database.")
		return nil
	}

	fmt.Fprintln(w, "\n=== RESERVATIONS ===")
	currentDate := ""
	for _, r := range reservations {
		if r.Date != currentDate {
			currentDate = r.Date
			fmt.Fprintf(w, "\n--- %s ---\n", formatDate(currentDate))
		}
		line := "  " + r.VenueName
		if r.Time != nil {
			timeStr := *r.Time
			if r.EndTime != nil {
				timeStr += " - " + *r.EndTime
			}
			line += " at " + timeStr
		}
		fmt.Fprintln(w, line)
		if r.MatchedVenue != nil && *r.MatchedVenue != r.VenueName {
			fmt.Fprintf(w, "    (matched to: %s)\n", *r.MatchedVenue)
		}
		if r.PartySize != nil {
			fmt.Fprintf(w, "    Party size: %d\n", *r.PartySize)
		}
		if r.Confirmation != nil {
			fmt.Fprintf(w, "    Confirmation: %s\n", *r.Confirmation)
		}
		if r.Notes != nil {
			fmt.Fprintf(w, "    Notes: %s\n", *r.Notes)
		}
	}
	return nil
}

func formatDate(date string) string {
	if parsed, err := time.Parse("2006-01-02", date); err == nil {
		return parsed.Format("Mon Jan 02, 2006")
	}
	return date
}

type dumpPayload struct {
	Venues       []internal.Venue       `json:"venues"`
	Events       []internal.Event       `json:"events"`
	Reservations []internal.Reservation `json:"reservations"`
}

// DumpJSON writes the whole store as indented JSON.
func DumpJSON(db *storage.DB, w io.Writer) error {
	venues, err := db.ListVenues()
	if err != nil {
		return err
	}
	events, err := db.ListEvents()
	if err != nil {
		return err
	}
	reservations, err := db.ListReservations()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dumpPayload{Venues: venues, Events: events, Reservations: reservations})
}

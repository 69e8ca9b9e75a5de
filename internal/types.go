package internal

type VenueSource string

const (
	SourceMarkdown   VenueSource = "markdown"
	SourceGoogleMaps VenueSource = "google_maps"
	SourceBoth       VenueSource = "both"
	SourceManual     VenueSource = "manual"
)

// VenueCandidate is a parsed-but-not-yet-stored venue reference.
type VenueCandidate struct {
	Name    string
	Section string
	Source  VenueSource
}

// Venue is the persisted record. Name is the identity key; everything else
// is nullable and filled in by enrichment or booking edits.
type Venue struct {
	ID          int
	Name        string
	Source      *string
	Section     *string
	SearchQuery *string
	PlaceID     *string
	DisplayName *string
	Address     *string
	HoursJSON   *string
	HoursText   *string
	MapsURI     *string
	RawResponse *string
	FetchedAt   *string

	TicketPrice     *string
	BookingRequired *string
	BookingURL      *string
	BookingNotes    *string
	MemberRequired  *string
}

// BookingUpdate carries booking fields for a venue; nil fields are left untouched.
type BookingUpdate struct {
	TicketPrice     *string
	BookingRequired *string
	BookingURL      *string
	BookingNotes    *string
	MemberRequired  *string
}

// Event is unique on (title, venue name, date). A nil VenueName marks a
// general event not tied to a venue.
type Event struct {
	ID        int
	Title     string
	VenueName *string
	Date      *string
	Time      *string
	Price     *string
	URL       *string
	Category  *string
	Notes     *string
	Source    *string
	FetchedAt *string
}

// Reservation is unique on (venue name, date, time). MatchedVenue is an
// advisory link to a stored venue, not a foreign key.
type Reservation struct {
	ID           int
	VenueName    string
	MatchedVenue *string
	Date         string
	Time         *string
	EndTime      *string
	Confirmation *string
	PartySize    *int
	Notes        *string
	CreatedAt    *string
}

// FetchedMailMessage is a raw message pulled by a mail connector.
type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

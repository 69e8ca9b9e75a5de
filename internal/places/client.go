package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"venuedb/internal/config"
)

const fieldMask = "places.id,places.displayName,places.formattedAddress,places.regularOpeningHours,places.googleMapsUri"

// Lookup is the venue-enrichment contract the pipeline depends on.
type Lookup interface {
	SearchText(ctx context.Context, name string) (*Place, error)
	Query(name string) string
}

// Place is the first search result for a venue, plus its raw payload.
type Place struct {
	ID        string
	Name      string
	Address   string
	HoursJSON *string
	HoursText string
	MapsURI   string
	Raw       string
}

type Client struct {
	cfg        config.Config
	httpClient *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.PlacesTimeoutMs) * time.Millisecond},
	}
}

// Query is the text sent to the search endpoint for a venue name.
func (c *Client) Query(name string) string {
	return name + " " + c.cfg.SearchCity
}

type searchRequest struct {
	TextQuery      string `json:"textQuery"`
	MaxResultCount int    `json:"maxResultCount"`
}

type searchResponse struct {
	Places []json.RawMessage `json:"places"`
}

type placePayload struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress    string          `json:"formattedAddress"`
	RegularOpeningHours json.RawMessage `json:"regularOpeningHours"`
	GoogleMapsURI       string          `json:"googleMapsUri"`
}

// SearchText looks the venue up with one POST and returns the first result,
// or nil when the API has no results. There are no retries.
func (c *Client) SearchText(ctx context.Context, name string) (*Place, error) {
	if err := c.cfg.Require("PLACES_API_KEY", c.cfg.PlacesAPIKey); err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(searchRequest{TextQuery: c.Query(name), MaxResultCount: 1})
	url := strings.TrimRight(c.cfg.PlacesAPIBaseURL, "/") + "/places:searchText"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.cfg.PlacesAPIKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("places api error: status=%d body=%s", resp.StatusCode, truncate(string(body), 200))
	}

	var search searchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, err
	}
	if len(search.Places) == 0 {
		return nil, nil
	}

	raw := search.Places[0]
	var parsed placePayload
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	place := &Place{
		ID:        parsed.ID,
		Name:      parsed.DisplayName.Text,
		Address:   parsed.FormattedAddress,
		HoursText: FormatHours(parsed.RegularOpeningHours),
		MapsURI:   parsed.GoogleMapsURI,
		Raw:       string(raw),
	}
	if len(parsed.RegularOpeningHours) > 0 {
		hours := string(parsed.RegularOpeningHours)
		place.HoursJSON = &hours
	}
	return place, nil
}

// FormatHours renders an opening-hours payload as one readable line using the
// per-weekday descriptions.
func FormatHours(hoursJSON json.RawMessage) string {
	if len(hoursJSON) == 0 {
		return "Hours not available"
	}
	var hours struct {
		WeekdayDescriptions []string `json:"weekdayDescriptions"`
	}
	if err := json.Unmarshal(hoursJSON, &hours); err != nil || len(hours.WeekdayDescriptions) == 0 {
		return "Hours not available"
	}
	return strings.Join(hours.WeekdayDescriptions, " | ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

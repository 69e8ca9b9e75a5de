package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"venuedb/internal"
	"venuedb/internal/config"
	"venuedb/internal/places"
	"venuedb/internal/storage"
	"venuedb/internal/util"
)

// Service runs the parse → dedup → enrich → store pipeline. One venue at a
// time, no parallelism; a failed lookup marks that venue and moves on.
type Service struct {
	db     *storage.DB
	lookup places.Lookup
	cfg    config.Config
	log    zerolog.Logger
}

func NewService(db *storage.DB, lookup places.Lookup, cfg config.Config, log zerolog.Logger) *Service {
	return &Service{db: db, lookup: lookup, cfg: cfg, log: log}
}

// ParseAll gathers candidates from the itinerary and the Takeout directory
// and deduplicates them. A missing itinerary file is a warning, not an error.
func (s *Service) ParseAll() ([]internal.VenueCandidate, error) {
	var all []internal.VenueCandidate

	mdVenues, err := ParseItinerary(s.cfg.ItineraryPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("parse itinerary: %w", err)
		}
		s.log.Warn().Str("path", s.cfg.ItineraryPath).Msg("itinerary not found, skipping")
	}
	all = append(all, mdVenues...)
	s.log.Info().Int("count", len(mdVenues)).Msg("parsed itinerary venues")

	csvVenues := ParseTakeoutDir(s.cfg.TakeoutDir, s.log)
	s.log.Info().Int("count", len(csvVenues)).Msg("parsed takeout venues")
	all = append(all, csvVenues...)

	return DeduplicateCandidates(all), nil
}

type RunResult struct {
	Parsed  int
	Fetched int
	Failed  int
}

// Run fetches every parsed venue not yet in the store and caches the result.
// Each venue is committed as soon as it is fetched; a lookup failure records
// a "Could not fetch" placeholder and the run continues.
func (s *Service) Run(ctx context.Context) (RunResult, error) {
	candidates, err := s.ParseAll()
	if err != nil {
		return RunResult{}, err
	}
	result := RunResult{Parsed: len(candidates)}

	cached, err := s.db.CachedNames()
	if err != nil {
		return result, err
	}

	var toFetch []internal.VenueCandidate
	for _, c := range candidates {
		if _, ok := cached[c.Name]; !ok {
			toFetch = append(toFetch, c)
		}
	}
	if len(toFetch) == 0 {
		s.log.Info().Msg("all venues already cached, no lookups needed")
		return result, nil
	}

	// Fail up front rather than midway through the batch.
	if err := s.cfg.Require("PLACES_API_KEY", s.cfg.PlacesAPIKey); err != nil {
		return result, fmt.Errorf("%d venue(s) need fetching: %w", len(toFetch), err)
	}

	for _, c := range toFetch {
		s.log.Info().Str("venue", c.Name).Msg("fetching")
		place, err := s.lookup.SearchText(ctx, c.Name)
		if err != nil {
			s.log.Warn().Err(err).Str("venue", c.Name).Msg("lookup failed")
			result.Failed++
		} else if place == nil {
			s.log.Warn().Str("venue", c.Name).Msg("no results")
		}
		if err := s.db.UpsertVenue(s.buildVenue(c.Name, string(c.Source), c.Section, place)); err != nil {
			return result, fmt.Errorf("store venue %q: %w", c.Name, err)
		}
		result.Fetched++
	}

	return result, nil
}

// Refetch re-runs the lookup for one venue, keeping its stored source and
// section when it already exists.
func (s *Service) Refetch(ctx context.Context, name string) error {
	if err := s.cfg.Require("PLACES_API_KEY", s.cfg.PlacesAPIKey); err != nil {
		return err
	}

	source := string(internal.SourceManual)
	section := "Unknown"
	if existing, err := s.db.GetVenueByName(name); err != nil {
		return err
	} else if existing != nil {
		if existing.Source != nil {
			source = *existing.Source
		}
		if existing.Section != nil {
			section = *existing.Section
		}
	}

	place, err := s.lookup.SearchText(ctx, name)
	if err != nil {
		s.log.Warn().Err(err).Str("venue", name).Msg("lookup failed")
	}
	return s.db.UpsertVenue(s.buildVenue(name, source, section, place))
}

// buildVenue maps a lookup result (possibly nil) onto a storable record.
func (s *Service) buildVenue(name, source, section string, place *places.Place) internal.Venue {
	now := time.Now().UTC().Format(time.RFC3339)
	v := internal.Venue{
		Name:        name,
		Source:      util.StringPtr(source),
		Section:     util.StringPtr(section),
		SearchQuery: util.StringPtr(s.lookup.Query(name)),
		FetchedAt:   util.StringPtr(now),
	}
	if place == nil {
		v.HoursText = util.StringPtr("Could not fetch")
		return v
	}
	v.PlaceID = util.StringPtrOrNil(place.ID)
	v.DisplayName = util.StringPtrOrNil(place.Name)
	v.Address = util.StringPtrOrNil(place.Address)
	v.HoursJSON = place.HoursJSON
	v.HoursText = util.StringPtr(place.HoursText)
	v.MapsURI = util.StringPtrOrNil(place.MapsURI)
	v.RawResponse = util.StringPtrOrNil(place.Raw)
	return v
}

// AddReservation fuzzy-matches the venue name against the store and upserts
// the reservation with the advisory matched_venue link.
func (s *Service) AddReservation(r internal.Reservation) (matched *string, err error) {
	names, err := s.db.ListVenueNames()
	if err != nil {
		return nil, err
	}
	matched = NewMatcher(s.cfg.MatchThreshold).Match(r.VenueName, names)
	r.MatchedVenue = matched
	if r.CreatedAt == nil {
		r.CreatedAt = util.StringPtr(time.Now().UTC().Format(time.RFC3339))
	}
	if err := s.db.UpsertReservation(r); err != nil {
		return nil, err
	}
	return matched, nil
}

package viewer

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"venuedb/internal"
	"venuedb/internal/config"
	"venuedb/internal/storage"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Server renders the stored venues, events and reservations as HTML.
type Server struct {
	cfg config.Config
	log zerolog.Logger
}

func NewServer(cfg config.Config, log zerolog.Logger) *Server {
	return &Server{cfg: cfg, log: log}
}

var templateFuncs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"orDash": func(s *string) string {
		if s == nil || *s == "" {
			return "-"
		}
		return *s
	},
	"orDashInt": func(n *int) string {
		if n == nil {
			return "-"
		}
		return strconv.Itoa(*n)
	},
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	tmpl := template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl"))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/venues")
	})
	r.GET("/venues", s.handleVenues)
	r.GET("/venue/:id", s.handleVenueDetail)
	r.GET("/events", s.handleEvents)
	r.GET("/event/:id", s.handleEventDetail)
	r.GET("/reservations", s.handleReservations)

	return r
}

func (s *Server) Run() error {
	s.log.Info().Str("addr", s.cfg.ViewerAddr).Msg("viewer listening")
	return s.Router().Run(s.cfg.ViewerAddr)
}

func (s *Server) openDB(c *gin.Context) *storage.DB {
	db, err := storage.Open(s.cfg.DBPath)
	if err != nil {
		s.log.Error().Err(err).Msg("open database")
		c.String(http.StatusInternalServerError, "database unavailable")
		return nil
	}
	return db
}

// sectionGroup keeps venues in their stored section order for the list page.
type sectionGroup struct {
	Section string
	Venues  []internal.Venue
}

func groupBySection(venues []internal.Venue) []sectionGroup {
	var groups []sectionGroup
	for _, v := range venues {
		section := "Unknown"
		if v.Section != nil && *v.Section != "" {
			section = *v.Section
		}
		if len(groups) == 0 || groups[len(groups)-1].Section != section {
			groups = append(groups, sectionGroup{Section: section})
		}
		groups[len(groups)-1].Venues = append(groups[len(groups)-1].Venues, v)
	}
	return groups
}

func (s *Server) handleVenues(c *gin.Context) {
	db := s.openDB(c)
	if db == nil {
		return
	}
	defer db.Close()

	venues, err := db.ListVenues()
	if err != nil {
		s.log.Error().Err(err).Msg("list venues")
		c.String(http.StatusInternalServerError, "query failed")
		return
	}

	c.HTML(http.StatusOK, "venues", gin.H{
		"Groups": groupBySection(venues),
		"Total":  len(venues),
	})
}

func (s *Server) handleVenueDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid venue id")
		return
	}

	db := s.openDB(c)
	if db == nil {
		return
	}
	defer db.Close()

	venue, err := db.GetVenueByID(id)
	if err != nil {
		s.log.Error().Err(err).Msg("get venue")
		c.String(http.StatusInternalServerError, "query failed")
		return
	}
	if venue == nil {
		c.String(http.StatusNotFound, "venue not found")
		return
	}

	events, err := db.EventsForVenue(venue.Name)
	if err != nil {
		s.log.Error().Err(err).Msg("venue events")
		c.String(http.StatusInternalServerError, "query failed")
		return
	}
	reservations, err := db.ReservationsForVenue(venue.Name)
	if err != nil {
		s.log.Error().Err(err).Msg("venue reservations")
		c.String(http.StatusInternalServerError, "query failed")
		return
	}

	c.HTML(http.StatusOK, "venue", gin.H{
		"Venue":        venue,
		"Events":       events,
		"Reservations": reservations,
	})
}

func (s *Server) handleEvents(c *gin.Context) {
	db := s.openDB(c)
	if db == nil {
		return
	}
	defer db.Close()

	events, err := db.ListEvents()
	if err != nil {
		s.log.Error().Err(err).Msg("list events")
		c.String(http.StatusInternalServerError, "query failed")
		return
	}

	c.HTML(http.StatusOK, "events", gin.H{"Events": events})
}

func (s *Server) handleEventDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid event id")
		return
	}

	db := s.openDB(c)
	if db == nil {
		return
	}
	defer db.Close()

	event, err := db.GetEventByID(id)
	if err != nil {
		s.log.Error().Err(err).Msg("get event")
		c.String(http.StatusInternalServerError, "query failed")
		return
	}
	if event == nil {
		c.String(http.StatusNotFound, "event not found")
		return
	}

	var venue *internal.Venue
	if event.VenueName != nil {
		venue, err = db.GetVenueByName(*event.VenueName)
		if err != nil {
			s.log.Error().Err(err).Msg("event venue")
			c.String(http.StatusInternalServerError, "query failed")
			return
		}
	}

	c.HTML(http.StatusOK, "event", gin.H{
		"Event": event,
		"Venue": venue,
	})
}

func (s *Server) handleReservations(c *gin.Context) {
	db := s.openDB(c)
	if db == nil {
		return
	}
	defer db.Close()

	reservations, err := db.ListReservations()
	if err != nil {
		s.log.Error().Err(err).Msg("list reservations")
		c.String(http.StatusInternalServerError, "query failed")
		return
	}

	c.HTML(http.StatusOK, "reservations", gin.H{"Reservations": reservations})
}

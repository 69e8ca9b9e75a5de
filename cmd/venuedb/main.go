package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"venuedb/internal"
	"venuedb/internal/config"
	"venuedb/internal/connectors"
	gmailconnector "venuedb/internal/connectors/gmail"
	imapconnector "venuedb/internal/connectors/imap"
	"venuedb/internal/logging"
	"venuedb/internal/pipeline"
	"venuedb/internal/places"
	"venuedb/internal/storage"
	"venuedb/internal/util"
)

func main() {
	cfg, err := config.Load()
	must(err)
	log := logging.Setup(cfg.LogFormat)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	svc := pipeline.NewService(db, places.NewClient(cfg), cfg, log)

	cmd := os.Args[1]
	switch cmd {
	case "run":
		result, err := svc.Run(context.Background())
		must(err)
		fmt.Printf("run done parsed=%d fetched=%d failed=%d\n", result.Parsed, result.Fetched, result.Failed)
		must(pipeline.PrintSummary(db, os.Stdout))
	case "parse":
		candidates, err := svc.ParseAll()
		must(err)
		for _, c := range candidates {
			fmt.Printf("  %-45s %-25s %s\n", c.Name, c.Section, c.Source)
		}
		fmt.Printf("parsed %d unique venue(s)\n", len(candidates))
	case "dump":
		must(pipeline.DumpJSON(db, os.Stdout))
	case "refetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		venue := fs.String("venue", "", "venue name")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*venue) == "" {
			must(fmt.Errorf("--venue is required"))
		}
		must(svc.Refetch(context.Background(), *venue))
		fmt.Printf("refetched %s\n", *venue)
	case "venues:delete":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		venue := fs.String("venue", "", "venue name")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*venue) == "" {
			must(fmt.Errorf("--venue is required"))
		}
		name, err := db.FindVenueName(*venue)
		must(err)
		if name == nil {
			must(fmt.Errorf("venue not found: %s", *venue))
		}
		must(db.DeleteVenue(*name))
		fmt.Printf("deleted %s\n", *name)
	case "booking:set":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		venue := fs.String("venue", "", "venue name")
		price := fs.String("price", "", "ticket price")
		required := fs.String("required", "", "booking required (yes/no/recommended)")
		bookURL := fs.String("url", "", "booking url")
		notes := fs.String("notes", "", "booking notes")
		member := fs.String("member", "", "membership required")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*venue) == "" {
			must(fmt.Errorf("--venue is required"))
		}
		name, err := db.FindVenueName(*venue)
		must(err)
		if name == nil {
			must(fmt.Errorf("venue not found: %s", *venue))
		}
		must(db.SetBooking(*name, internal.BookingUpdate{
			TicketPrice:     util.StringPtrOrNil(*price),
			BookingRequired: util.StringPtrOrNil(*required),
			BookingURL:      util.StringPtrOrNil(*bookURL),
			BookingNotes:    util.StringPtrOrNil(*notes),
			MemberRequired:  util.StringPtrOrNil(*member),
		}))
		fmt.Printf("updated booking info for %s\n", *name)
	case "events:add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		title := fs.String("title", "", "event title")
		venue := fs.String("venue", "", "venue name (omit for a general event)")
		date := fs.String("date", "", "date YYYY-MM-DD")
		timeStr := fs.String("time", "", "time HH:MM")
		price := fs.String("price", "", "price")
		eventURL := fs.String("url", "", "event url")
		category := fs.String("category", "", "category")
		notes := fs.String("notes", "", "notes")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*title) == "" {
			must(fmt.Errorf("--title is required"))
		}
		var venueName *string
		if strings.TrimSpace(*venue) != "" {
			venueName, err = db.FindVenueName(*venue)
			must(err)
			if venueName == nil {
				fmt.Printf("warning: %q not in venues, saving event against the name as given\n", *venue)
				venueName = util.StringPtr(*venue)
			}
		}
		must(db.UpsertEvent(internal.Event{
			Title:     *title,
			VenueName: venueName,
			Date:      util.StringPtrOrNil(*date),
			Time:      util.StringPtrOrNil(*timeStr),
			Price:     util.StringPtrOrNil(*price),
			URL:       util.StringPtrOrNil(*eventURL),
			Category:  util.StringPtrOrNil(*category),
			Notes:     util.StringPtrOrNil(*notes),
			Source:    util.StringPtr("manual"),
		}))
		fmt.Printf("added event: %s\n", *title)
	case "events:list":
		must(pipeline.PrintEvents(db, os.Stdout))
	case "reservations:add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		venue := fs.String("venue", "", "venue name")
		date := fs.String("date", "", "date YYYY-MM-DD")
		timeStr := fs.String("time", "", "time HH:MM")
		endTime := fs.String("end", "", "end time HH:MM")
		confirmation := fs.String("confirmation", "", "confirmation code")
		party := fs.Int("party", 0, "party size")
		notes := fs.String("notes", "", "notes")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*venue) == "" || strings.TrimSpace(*date) == "" {
			must(fmt.Errorf("--venue and --date are required"))
		}
		r := internal.Reservation{
			VenueName:    *venue,
			Date:         *date,
			Time:         util.StringPtrOrNil(*timeStr),
			EndTime:      util.StringPtrOrNil(*endTime),
			Confirmation: util.StringPtrOrNil(*confirmation),
			Notes:        util.StringPtrOrNil(*notes),
		}
		if *party > 0 {
			r.PartySize = util.IntPtr(*party)
		}
		matched, err := svc.AddReservation(r)
		must(err)
		if matched != nil {
			fmt.Printf("matched %q to %q\n", *venue, *matched)
		} else {
			fmt.Printf("warning: %q not found in venues, saving anyway\n", *venue)
		}
		fmt.Printf("added reservation: %s on %s\n", *venue, *date)
	case "reservations:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		path := fs.String("file", "", "reservations csv path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*path) == "" {
			must(fmt.Errorf("--file is required"))
		}
		count, err := svc.ImportReservationsCSV(*path)
		must(err)
		fmt.Printf("imported %d reservation(s) from %s\n", count, *path)
	case "reservations:list":
		must(pipeline.PrintReservations(db, os.Stdout))
	case "report":
		must(pipeline.PrintReport(db, os.Stdout))
	case "mail:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.MailProvider, "gmail|imap")
		label := fs.String("label", cfg.MailLabel, "mailbox/label")
		max := fs.Int("max", cfg.MailFetchMax, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		result, err := svc.ImportReservationMail(conn, *label, *max)
		must(err)
		fmt.Printf("mail import done provider=%s fetched=%d imported=%d skipped=%d\n",
			*provider, result.Fetched, result.Imported, result.Skipped)
	default:
		usage()
		os.Exit(1)
	}
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: venuedb <command>")
	fmt.Println("commands:")
	fmt.Println("  run                      parse sources, fetch new venues, print summary")
	fmt.Println("  parse                    parse sources and list candidates without fetching")
	fmt.Println("  dump                     emit the full database as JSON")
	fmt.Println("  refetch --venue=...")
	fmt.Println("  venues:delete --venue=...")
	fmt.Println("  booking:set --venue=... [--price=...] [--required=...] [--url=...] [--notes=...] [--member=...]")
	fmt.Println("  events:add --title=... [--venue=...] [--date=...] [--time=...] [--price=...] [--url=...] [--category=...] [--notes=...]")
	fmt.Println("  events:list")
	fmt.Println("  reservations:add --venue=... --date=... [--time=...] [--end=...] [--confirmation=...] [--party=N] [--notes=...]")
	fmt.Println("  reservations:import --file=reservations.csv")
	fmt.Println("  reservations:list")
	fmt.Println("  report                   full trip report with booking and event details")
	fmt.Println("  mail:import [--provider=gmail|imap] [--label=INBOX] [--max=20]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

package main

import (
	"fmt"
	"os"

	"venuedb/internal/config"
	"venuedb/internal/logging"
	"venuedb/internal/viewer"
)

func main() {
	cfg, err := config.Load()
	must(err)
	log := logging.Setup(cfg.LogFormat)

	srv := viewer.NewServer(cfg, log)
	must(srv.Run())
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

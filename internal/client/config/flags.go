package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the venue service
//	-i int      online check interval in seconds
//	-db string  path of the local SQLite database
//	-memory     keep offline data in memory only
//	-cap int    search history length
//	-log string log level
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-db", "-memory", "-cap", "-log"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "local database path")
	fs.BoolVar(&cfg.InMemory, "memory", cfg.InMemory, "do not persist offline data")
	fs.IntVar(&cfg.HistoryCap, "cap", cfg.HistoryCap, "search history length")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}

package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/library/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-t int      shutdown timeout, seconds
//	-l string   log level
//	-m int      borrowing limit (active loans per user)
//	-p int      borrowing period, days
//	-f float    late fee per day
//
// Only the flags above are read from os.Args; anything else is left to other
// parsers (see flagx.FilterArgs).
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-l", "-m", "-p", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	shutdownTimeout := fs.Int("t", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.IntVar(&config.BorrowingLimit, "m", config.BorrowingLimit, "max active loans per user")
	fs.IntVar(&config.BorrowingPeriodDays, "p", config.BorrowingPeriodDays, "borrowing period (in days)")
	fs.Float64Var(&config.LateFeePerDay, "f", config.LateFeePerDay, "late fee per day")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
}

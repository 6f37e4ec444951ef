package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifekeeper/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-z string   timezone for calendar-day filters ("Local", "UTC", "Europe/Riga")
//	-o string   comma-separated CORS origins
//	-l string   log level
//	-f string   log file (rotated)
//	-demo       seed the demo account on startup
//
// Only these flags are considered; os.Args is filtered with flagx.FilterArgs
// first so unrelated arguments do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-z", "-o", "-l", "-f", "-demo"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.Timezone, "z", config.Timezone, "timezone used for day boundaries")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed CORS origins, comma separated")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFile, "f", config.LogFile, "log file")
	fs.BoolVar(&config.SeedDemo, "demo", config.SeedDemo, "seed demo account")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.AllowedOrigins = splitList(*origins)
}

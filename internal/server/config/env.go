package config

import (
	"errors"
	"strconv"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// EnvConfig lists the environment variables the server understands. Unset
// variables leave the corresponding Config field alone.
type EnvConfig struct {
	EndpointAddrHTTP             string        `env:"LIFEKEEPER_HTTP_ADDR"`
	DatabaseDSN                  string        `env:"LIFEKEEPER_DATABASE_DSN"`
	SecretKey                    string        `env:"LIFEKEEPER_SECRET_KEY"`
	AccessTokenValidityDuration  time.Duration `env:"LIFEKEEPER_ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration time.Duration `env:"LIFEKEEPER_REFRESH_TOKEN_TTL"`
	Timezone                     string        `env:"LIFEKEEPER_TIMEZONE"`
	AllowedOrigins               string        `env:"LIFEKEEPER_ALLOWED_ORIGINS"`
	LoginRateLimit               float64       `env:"LIFEKEEPER_LOGIN_RATE_LIMIT"`
	LoginRateBurst               int           `env:"LIFEKEEPER_LOGIN_RATE_BURST"`
	LogLevel                     string        `env:"LIFEKEEPER_LOG_LEVEL"`
	LogFile                      string        `env:"LIFEKEEPER_LOG_FILE"`
	SeedDemo                     string        `env:"LIFEKEEPER_SEED_DEMO"`
}

// envFile is the dotenv file read before decoding; a missing file is fine.
var envFile = ".env"

// parseEnv overlays values from the process environment (and .env, when
// present) onto config. Malformed values panic, matching the other sources.
func parseEnv(config *Config) {
	_ = godotenv.Load(envFile)

	e := &EnvConfig{}
	if err := envdecode.Decode(e); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return
		}
		panic(err)
	}

	if e.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = e.EndpointAddrHTTP
	}
	if e.DatabaseDSN != "" {
		config.DatabaseDSN = e.DatabaseDSN
	}
	if e.SecretKey != "" {
		config.SecretKey = e.SecretKey
	}
	if e.AccessTokenValidityDuration > 0 {
		config.AccessTokenValidityDuration = e.AccessTokenValidityDuration
	}
	if e.RefreshTokenValidityDuration > 0 {
		config.RefreshTokenValidityDuration = e.RefreshTokenValidityDuration
	}
	if e.Timezone != "" {
		config.Timezone = e.Timezone
	}
	if e.AllowedOrigins != "" {
		config.AllowedOrigins = splitList(e.AllowedOrigins)
	}
	if e.LoginRateLimit > 0 {
		config.LoginRateLimit = e.LoginRateLimit
	}
	if e.LoginRateBurst > 0 {
		config.LoginRateBurst = e.LoginRateBurst
	}
	if e.LogLevel != "" {
		config.LogLevel = e.LogLevel
	}
	if e.LogFile != "" {
		config.LogFile = e.LogFile
	}
	if e.SeedDemo != "" {
		v, err := strconv.ParseBool(e.SeedDemo)
		if err != nil {
			panic(err)
		}
		config.SeedDemo = v
	}
}

package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/lifekeeper/internal/flagx"
	"github.com/dmitrijs2005/lifekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the -c/-config file. Durations accept
// "15m" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	Timezone                     string         `json:"timezone"`
	AllowedOrigins               []string       `json:"allowed_origins"`
	LoginRateLimit               float64        `json:"login_rate_limit"`
	LoginRateBurst               int            `json:"login_rate_burst"`
	ReadTimeout                  timex.Duration `json:"read_timeout"`
	WriteTimeout                 timex.Duration `json:"write_timeout"`
	LogLevel                     string         `json:"log_level"`
	LogFile                      string         `json:"log_file"`
	SeedDemo                     *bool          `json:"seed_demo"`
}

// parseJson overlays the file named by -c/-config onto config. Keys missing
// from the file keep their current value. An unreadable file or invalid JSON
// panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.Timezone != "" {
		config.Timezone = c.Timezone
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.LoginRateLimit > 0 {
		config.LoginRateLimit = c.LoginRateLimit
	}
	if c.LoginRateBurst > 0 {
		config.LoginRateBurst = c.LoginRateBurst
	}
	if c.ReadTimeout.Duration > 0 {
		config.ReadTimeout = c.ReadTimeout.Duration
	}
	if c.WriteTimeout.Duration > 0 {
		config.WriteTimeout = c.WriteTimeout.Duration
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	if c.LogFile != "" {
		config.LogFile = c.LogFile
	}
	if c.SeedDemo != nil {
		config.SeedDemo = *c.SeedDemo
	}
}

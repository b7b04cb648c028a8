package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/secrets/internal/flagx"
	"github.com/dmitrijs2005/secrets/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations are
// timex.Duration so both "10m" and integer nanoseconds are accepted. Pointer
// fields distinguish "absent" from a zero value.
type JsonConfig struct {
	HTTPAddr             string          `json:"http_addr"`
	DatabaseDSN          *string         `json:"database_dsn"`
	LogLevel             string          `json:"log_level"`
	SessionSecret        string          `json:"session_secret"`
	SessionTTL           *timex.Duration `json:"session_ttl"`
	SessionStore         string          `json:"session_store"`
	SessionSweepInterval *timex.Duration `json:"session_sweep_interval"`
	RedisAddr            string          `json:"redis_addr"`
	RedisPassword        string          `json:"redis_password"`
	RedisDB              *int            `json:"redis_db"`
	Codec                string          `json:"codec"`
	BcryptCost           *int            `json:"bcrypt_cost"`
	EncryptionKey        string          `json:"encryption_key"`
	GoogleClientID       string          `json:"google_client_id"`
	GoogleClientSecret   string          `json:"google_client_secret"`
	GoogleCallbackURL    string          `json:"google_callback_url"`
	GenericLoginErrors   *bool           `json:"generic_login_errors"`
}

// parseJson overlays the JSON file named by -c / -config onto config. Keys
// missing from the file keep their current values. No flag, no file.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return err
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.SessionSecret, c.SessionSecret)
	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	setString(&config.SessionStore, c.SessionStore)
	if c.SessionSweepInterval != nil {
		config.SessionSweepInterval = c.SessionSweepInterval.Duration
	}
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	setString(&config.Codec, c.Codec)
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	setString(&config.EncryptionKey, c.EncryptionKey)
	setString(&config.GoogleClientID, c.GoogleClientID)
	setString(&config.GoogleClientSecret, c.GoogleClientSecret)
	setString(&config.GoogleCallbackURL, c.GoogleCallbackURL)
	if c.GenericLoginErrors != nil {
		config.GenericLoginErrors = *c.GenericLoginErrors
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

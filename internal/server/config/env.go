package config

import (
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "SECRETS"

// parseEnv overlays SECRETS_* environment variables, e.g. SECRETS_HTTP_ADDR
// or SECRETS_SESSION_TTL=1h. Unset variables leave the field untouched.
func parseEnv(config *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	strs := map[string]*string{
		"http_addr":            &config.HTTPAddr,
		"database_dsn":         &config.DatabaseDSN,
		"log_level":            &config.LogLevel,
		"session_secret":       &config.SessionSecret,
		"session_store":        &config.SessionStore,
		"redis_addr":           &config.RedisAddr,
		"redis_password":       &config.RedisPassword,
		"codec":                &config.Codec,
		"encryption_key":       &config.EncryptionKey,
		"google_client_id":     &config.GoogleClientID,
		"google_client_secret": &config.GoogleClientSecret,
		"google_callback_url":  &config.GoogleCallbackURL,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	if v.IsSet("session_ttl") {
		config.SessionTTL = v.GetDuration("session_ttl")
	}
	if v.IsSet("session_sweep_interval") {
		config.SessionSweepInterval = v.GetDuration("session_sweep_interval")
	}
	if v.IsSet("redis_db") {
		config.RedisDB = v.GetInt("redis_db")
	}
	if v.IsSet("bcrypt_cost") {
		config.BcryptCost = v.GetInt("bcrypt_cost")
	}
	if v.IsSet("generic_login_errors") {
		config.GenericLoginErrors = v.GetBool("generic_login_errors")
	}
}

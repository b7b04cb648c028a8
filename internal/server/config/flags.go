package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/secrets/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     HTTP bind address (e.g. ":3000")
//	-d string     PostgreSQL DSN; empty keeps accounts in memory
//	-s string     session signing secret
//	-t duration   session lifetime (e.g. "24h")
//	-m string     session store: postgres, redis or memory
//	-r string     Redis address
//	-k string     password codec: plaintext, bcrypt or pgp
//	-b int        bcrypt cost
//	-e string     pgp encryption key
//	-l string     log level
//	-g            generic login error messages
//
// Only these flags are picked out of args via flagx.FilterArgs, so the
// -c/-config flag and unknown flags are ignored here.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-m", "-r", "-k", "-b", "-e", "-l", "-g"})

	fs := flag.NewFlagSet("secrets", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session secret")
	fs.DurationVar(&config.SessionTTL, "t", config.SessionTTL, "session lifetime")
	fs.StringVar(&config.SessionStore, "m", config.SessionStore, "session store")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.Codec, "k", config.Codec, "password codec")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.EncryptionKey, "e", config.EncryptionKey, "pgp encryption key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.GenericLoginErrors, "g", config.GenericLoginErrors, "generic login error messages")

	return fs.Parse(args)
}

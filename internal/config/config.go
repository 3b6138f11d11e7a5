// Package config provides functionality for managing configuration options
// for the server using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/atinyakov/pwdvault/internal/vault"
)

// Duration is a time.Duration that reads from JSON strings such as "15m".
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDSN is the connection string of the user directory database.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the config file.
	Config string `json:"-"`

	// MaxUsers is the number of user records in the vault.
	MaxUsers int `json:"max_users"`

	// HintCapacity is the number of distinct hints per user.
	HintCapacity int `json:"hint_capacity"`

	// EntryLimit caps the entries per user; 0 means unlimited.
	EntryLimit int `json:"entry_limit"`

	// CertDir holds ca.crt, ca.key, server.crt and server.key.
	CertDir string `json:"cert_dir"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// SessionTTL is how long an idle session survives.
	SessionTTL Duration `json:"session_ttl"`

	// ReapInterval is how often idle sessions are collected.
	ReapInterval Duration `json:"reap_interval"`

	// Diagnostics exposes the whole-vault dump endpoint.
	Diagnostics bool `json:"diagnostics"`
}

// ParseArgs parses args, then the JSON config file, then the environment
// looked up through getenv. Later sources override earlier ones.
func ParseArgs(args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}
	fs := flag.NewFlagSet("pwdvault", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.IntVar(&options.MaxUsers, "u", vault.DefaultUsers, "number of users the vault holds")
	fs.IntVar(&options.HintCapacity, "hints", vault.DefaultHintCapacity, "distinct hints per user")
	fs.IntVar(&options.EntryLimit, "e", 0, "entries per user, 0 for unlimited")
	fs.StringVar(&options.CertDir, "certs", "certs", "directory with CA and server certificates")
	fs.StringVar(&options.LogLevel, "l", "info", "log level")
	fs.BoolVar(&options.Diagnostics, "diag", false, "expose the vault dump endpoint")
	ttl := fs.Duration("ttl", 15*time.Minute, "idle session lifetime")
	reap := fs.Duration("reap", time.Minute, "idle session collection interval")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	options.SessionTTL = Duration(*ttl)
	options.ReapInterval = Duration(*reap)

	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		data, err := os.ReadFile(options.Config)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error while reading config file: %w", err)
		default:
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if serverAddress := getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if users := getenv("MAX_USERS"); users != "" {
		n, err := strconv.Atoi(users)
		if err != nil {
			return nil, fmt.Errorf("MAX_USERS: %w", err)
		}
		options.MaxUsers = n
	}
	if level := getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}

	if options.SessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", time.Duration(options.SessionTTL))
	}
	if options.ReapInterval <= 0 {
		return nil, fmt.Errorf("reap interval must be positive, got %s", time.Duration(options.ReapInterval))
	}

	return options, nil
}

// Parse parses the process arguments and environment. It exits the
// process on invalid configuration.
func Parse() *Options {
	options, err := ParseArgs(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return options
}

// Package config reads the service settings from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultAddr       = ":5000"
	DefaultSQLitePath = "arcade.db"
)

var ErrMissingEnv = errors.New("missing environment variable")

type Config struct {
	AllowedOrigins []string
	JWTKey         string
	StorageDriver  string
	PostgresURL    string
	SQLitePath     string
	Addr           string
	Debug          bool
}

// Load reads envFiles (".env" when none are given) into the process
// environment without overriding it, then builds the Config. Missing env
// files are not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{
		StorageDriver: DriverPostgres,
		SQLitePath:    DefaultSQLitePath,
		Addr:          DefaultAddr,
	}

	origins, ok := lookup("ALLOWED_ORIGINS")
	if !ok {
		return Config{}, fmt.Errorf("%w: ALLOWED_ORIGINS", ErrMissingEnv)
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	cfg.JWTKey, ok = lookup("JWT_KEY")
	if !ok || cfg.JWTKey == "" {
		return Config{}, fmt.Errorf("%w: JWT_KEY", ErrMissingEnv)
	}

	if v, ok := lookup("STORAGE_DRIVER"); ok && v != "" {
		cfg.StorageDriver = v
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		cfg.PostgresURL, ok = lookup("POSTGRES_URL")
		if !ok || cfg.PostgresURL == "" {
			return Config{}, fmt.Errorf("%w: POSTGRES_URL", ErrMissingEnv)
		}
	case DriverSQLite:
		if v, ok := lookup("SQLITE_PATH"); ok && v != "" {
			cfg.SQLitePath = v
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if v, ok := lookup("ADDR"); ok && v != "" {
		cfg.Addr = v
	}

	if v, ok := lookup("DEBUG"); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEBUG %q: %w", v, err)
		}
		cfg.Debug = debug
	}

	return cfg, nil
}

// DSN is the data source for the configured storage driver.
func (c Config) DSN() string {
	if c.StorageDriver == DriverSQLite {
		return c.SQLitePath
	}
	return c.PostgresURL
}

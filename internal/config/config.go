// Package config handles the configuration directory and environment settings.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// AppName is the application directory name.
	AppName = "supatodo"

	// DotenvFile is the optional environment file name.
	DotenvFile = ".env"

	// SQLiteFile is the default sqlite database filename.
	SQLiteFile = "todos.db"

	// DefaultTable is the remote table holding the records.
	DefaultTable = "todos"

	// DefaultAddr is the listen address of the web surface.
	DefaultAddr = "127.0.0.1:3000"
)

// Environment variable names.
const (
	EnvURL       = "SUPABASE_URL"
	EnvKey       = "SUPABASE_ANON_KEY"
	EnvPublicURL = "NEXT_PUBLIC_SUPABASE_URL"
	EnvPublicKey = "NEXT_PUBLIC_SUPABASE_ANON_KEY"
	EnvStore     = "SUPATODO_STORE"
	EnvTable     = "SUPATODO_TABLE"
	EnvSQLite    = "SUPATODO_SQLITE_PATH"
	EnvAddr      = "SUPATODO_ADDR"
)

// Store drivers.
const (
	StorePostgREST = "postgrest"
	StoreSQLite    = "sqlite"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// URL is the record store endpoint.
	URL string

	// Key is the public access key sent with every request.
	Key string

	// Store selects the backend driver.
	Store string

	// Table is the name of the records table.
	Table string

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string

	// Addr is the listen address for the web surface.
	Addr string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a new Config with the default or specified config directory
// and fills the remaining fields from the process environment.
// If configDir is empty, uses XDG_CONFIG_HOME/supatodo or $HOME/.config/supatodo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	cfg.Apply(os.LookupEnv)
	return cfg, nil
}

// Apply fills the settings from lookup. Unset values fall back to defaults.
func (c *Config) Apply(lookup func(string) (string, bool)) {
	get := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}

	c.URL = strings.TrimRight(get(EnvURL, EnvPublicURL), "/")
	c.Key = get(EnvKey, EnvPublicKey)

	c.Store = strings.ToLower(get(EnvStore))
	if c.Store == "" {
		c.Store = StorePostgREST
	}
	c.Table = get(EnvTable)
	if c.Table == "" {
		c.Table = DefaultTable
	}
	c.SQLitePath = get(EnvSQLite)
	if c.SQLitePath == "" {
		c.SQLitePath = filepath.Join(c.Dir, SQLiteFile)
	}
	c.Addr = get(EnvAddr)
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
}

// Configured reports whether the record store can be reached.
// The postgrest driver needs both the URL and the key; sqlite only a path.
func (c *Config) Configured() bool {
	if c.Store == StoreSQLite {
		return c.SQLitePath != ""
	}
	return c.URL != "" && c.Key != ""
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DotenvPath returns the path to the .env file inside the config directory.
func (c *Config) DotenvPath() string {
	return filepath.Join(c.Dir, DotenvFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

package doku

import (
	"os"
	"strconv"
	"time"

	"github.com/olgasafonova/dokuwiki-tools/internal/kvconfig"
)

const (
	// DefaultServer is used when no d_server key is configured
	DefaultServer = "http://localhost/wiki"

	// DefaultSummary is the edit summary sent with every page upload
	DefaultSummary = "wiki.putPage"

	// DefaultConfigFile is read from the working directory when no path is given
	DefaultConfigFile = "doku_config.txt"
)

// Config holds DokuWiki connection settings
type Config struct {
	// ServerRoot is the wiki base URL (e.g., https://wiki.example.com/wiki)
	ServerRoot string

	// User and Password for dokuwiki.login (optional, anonymous access is legal)
	User     string
	Password string

	// Timeout bounds each HTTP round trip. Zero means no timeout.
	Timeout time.Duration

	// StrictLogin turns a rejected login into a LoginFailedError
	StrictLogin bool

	// Summary is the edit summary attached to wiki.putPage
	Summary string
}

// DefaultConfig returns the settings used when no config file exists
func DefaultConfig() Config {
	return Config{
		ServerRoot: DefaultServer,
		Summary:    DefaultSummary,
	}
}

// FromValues overlays the d_* keys of a parsed config file on c.
func (c Config) FromValues(v kvconfig.Values) Config {
	c.ServerRoot = v.String("d_server", c.ServerRoot)
	c.User = v.String("d_user", c.User)
	c.Password = v.String("d_pass", c.Password)
	c.Summary = v.String("d_summary", c.Summary)
	c.StrictLogin = v.Bool("d_strict_login", c.StrictLogin)
	if s, ok := v["d_timeout"]; ok {
		if d, err := time.ParseDuration(s); err == nil && d >= 0 {
			c.Timeout = d
		}
	}
	return c
}

// LoadConfig reads path over the defaults. When the file does not exist the
// defaults are returned together with a ConfigMissingError.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	values, err := kvconfig.Load(path)
	if values != nil {
		cfg = cfg.FromValues(values)
	}
	return cfg, err
}

// WithEnv applies DOKUWIKI_* environment overrides on top of c
func (c Config) WithEnv() Config {
	if s := os.Getenv("DOKUWIKI_SERVER"); s != "" {
		c.ServerRoot = s
	}
	if s := os.Getenv("DOKUWIKI_USER"); s != "" {
		c.User = s
	}
	if s := os.Getenv("DOKUWIKI_PASS"); s != "" {
		c.Password = s
	}
	if s := os.Getenv("DOKUWIKI_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= 0 {
			c.Timeout = d
		}
	}
	if s := os.Getenv("DOKUWIKI_STRICT_LOGIN"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			c.StrictLogin = b
		}
	}
	return c
}

// HasCredentials returns true if login credentials are configured
func (c Config) HasCredentials() bool {
	return c.User != "" && c.Password != ""
}

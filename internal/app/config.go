package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/tavola-client/internal/session"
)

// Config holds the complete client configuration, loadable from environment
// variables (TAVOLA_ prefix), flags, or YAML config files.
type Config struct {
	BaseURL        string        `default:"http://localhost:8080/api" usage:"Backend API base URL (including the /api prefix)" flag:"base-url"`
	TokenFile      string        `usage:"Path of the persisted session token (defaults under the user config dir)" flag:"token-file"`
	RequestTimeout time.Duration `default:"15s" usage:"Timeout for API requests" flag:"request-timeout"`
	Probe          ProbeConfig
}

// ProbeConfig controls the background backend reachability check.
type ProbeConfig struct {
	Interval time.Duration `default:"30s" usage:"Reachability check interval"`
	Timeout  time.Duration `default:"3s"  usage:"Reachability check timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies fallback defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "TAVOLA",
		Files:     []string{"config.yaml", "/etc/tavola/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults maps the unprefixed API_BASE_URL variable (the name the old
// web frontend deployments used) and resolves the default token path.
func (c *Config) applyDefaults() {
	if v := os.Getenv("API_BASE_URL"); v != "" && c.BaseURL == "http://localhost:8080/api" {
		c.BaseURL = v
	}
	if c.TokenFile == "" {
		if path, err := session.DefaultTokenPath(); err == nil {
			c.TokenFile = path
		}
	}
}

package jsonfrag

import (
	"flag"
	"time"

	"github.com/pkg/errors"

	"github.com/grafana/jsonfrag/pkg/ingest"
	"github.com/grafana/jsonfrag/pkg/util/flagext"
	util_log "github.com/grafana/jsonfrag/pkg/util/log"
)

// Config is the root config for jsonfrag.
type Config struct {
	ConfigFiles  flagext.ConfigFiles `yaml:"-"`
	ExpandEnv    bool                `yaml:"-"`
	PrintVersion bool                `yaml:"-"`
	PrintConfig  bool                `yaml:"-"`

	Server ServerConfig  `yaml:"server,omitempty"`
	Ingest ingest.Config `yaml:"ingest,omitempty"`
}

// RegisterFlags registers flag.
func (c *Config) RegisterFlags(f *flag.FlagSet) {
	f.Var(&c.ConfigFiles, "config.file", "yaml file to load, may be given more than once")
	f.BoolVar(&c.ExpandEnv, "config.expand-env", false, "Expands ${var} in config according to the values of the environment variables.")
	f.BoolVar(&c.PrintVersion, "version", false, "Print this builds version information")
	f.BoolVar(&c.PrintConfig, "print-config-stderr", false, "Dump the entire config object to stderr")

	c.Server.RegisterFlags(f)
	c.Ingest.RegisterFlags(f)
}

// Validate the config and returns an error if the validation
// doesn't pass
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return errors.Wrap(err, "invalid server config")
	}
	if err := c.Ingest.Validate(); err != nil {
		return errors.Wrap(err, "invalid ingest config")
	}
	return nil
}

// ServerConfig configures the optional admin HTTP listener and logging.
type ServerConfig struct {
	HTTPListenAddress       string        `yaml:"http_listen_address"`
	GracefulShutdownTimeout time.Duration `yaml:"graceful_shutdown_timeout"`

	Log util_log.Config `yaml:",inline"`
}

// RegisterFlags registers the server flags.
func (c *ServerConfig) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&c.HTTPListenAddress, "server.http-listen-address", "", "Address to serve /metrics, /log_level and /ready on. Empty disables the admin server.")
	f.DurationVar(&c.GracefulShutdownTimeout, "server.graceful-shutdown-timeout", 30*time.Second, "Timeout for graceful shutdown of the admin server.")
	c.Log.RegisterFlags(f)
}

// Validate checks the server config.
func (c *ServerConfig) Validate() error {
	if c.GracefulShutdownTimeout < 0 {
		return errors.New("graceful-shutdown-timeout must not be negative")
	}
	return c.Log.Validate()
}

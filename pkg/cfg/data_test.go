package cfg

import (
	"flag"
	"time"

	"github.com/grafana/jsonfrag/pkg/util/flagext"
)

// Data is a test configuration struct.
type Data struct {
	ConfigFiles flagext.ConfigFiles `yaml:"-"`
	ExpandEnv   bool                `yaml:"-"`

	Verbose bool   `yaml:"verbose"`
	Server  Server `yaml:"server"`
	TLS     TLS    `yaml:"tls"`
}

type Server struct {
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

type TLS struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

// RegisterFlags makes Data implement flagext.Registerer for using flags
func (d *Data) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&d.ConfigFiles, "config.file", "yaml file to load")
	fs.BoolVar(&d.ExpandEnv, "config.expand-env", false, "expand env vars")
	fs.BoolVar(&d.Verbose, "verbose", false, "")
	fs.IntVar(&d.Server.Port, "server.port", 80, "")
	fs.DurationVar(&d.Server.Timeout, "server.timeout", 60*time.Second, "")

	fs.StringVar(&d.TLS.Cert, "tls.cert", "CERT", "")
	fs.StringVar(&d.TLS.Key, "tls.key", "KEY", "")
}

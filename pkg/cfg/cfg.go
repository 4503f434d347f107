package cfg

import (
	"flag"

	"github.com/pkg/errors"
)

// Source is a generic configuration source. This function may do whatever is
// required to obtain the configuration. It is passed a pointer to the
// destination, which will be something compatible to `yaml.Unmarshal`. The
// obtained configuration may be written to this object, it may also contain
// data from previous sources.
type Source func(interface{}) error

// Registerer is a configuration struct that binds its fields to flags.
type Registerer interface {
	RegisterFlags(f *flag.FlagSet)
}

// Unmarshal merges the values of the various configuration sources and sets them on
// `dst`. The object must be compatible with `yaml.Unmarshal`.
func Unmarshal(dst interface{}, sources ...Source) error {
	if len(sources) == 0 {
		panic("No sources supplied to cfg.Unmarshal(). This is most likely a programming issue and should never happen. Check the code!")
	}
	for _, source := range sources {
		if err := source(dst); err != nil {
			return errors.Wrap(err, "sourcing")
		}
	}
	return nil
}

// DefaultUnmarshal applies the flag defaults of dst, then every YAML file
// named by -config.file (expanding ${VAR} references when -config.expand-env
// is set), then the flags given in args. Flags set explicitly on the command
// line win over the files.
func DefaultUnmarshal(dst Registerer, args []string, fs *flag.FlagSet) error {
	return Unmarshal(dst,
		Defaults(fs),
		ConfigFileLoader(args, "config.file", "config.expand-env"),
		Flags(args, fs),
	)
}

package cfg

import (
	"flag"

	"github.com/pkg/errors"
)

// Defaults registers the flags of dst on fs, which sets every flag bound
// field of dst to its default value.
func Defaults(fs *flag.FlagSet) Source {
	return func(dst interface{}) error {
		r, ok := dst.(Registerer)
		if !ok {
			return errors.Errorf("%T does not implement RegisterFlags", dst)
		}
		r.RegisterFlags(fs)
		return nil
	}
}

// Flags parses args into fs. The flags must have been registered against the
// same destination by Defaults.
func Flags(args []string, fs *flag.FlagSet) Source {
	return func(interface{}) error {
		return fs.Parse(args)
	}
}

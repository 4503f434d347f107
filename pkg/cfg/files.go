package cfg

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/drone/envsubst"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// ConfigFileLoader looks up the config file flag (and the env expansion flag)
// in args and loads every named file into dst, in order. Nothing happens when
// no file is given.
func ConfigFileLoader(args []string, name, expandEnvName string) Source {
	return func(dst interface{}) error {
		r, ok := dst.(Registerer)
		if !ok {
			return errors.Errorf("%T does not implement RegisterFlags", dst)
		}

		// Parse args against a throwaway copy so dst only sees the files.
		clone := reflect.New(reflect.Indirect(reflect.ValueOf(r)).Type()).Interface().(Registerer)
		fresh := flag.NewFlagSet("config-file-loader", flag.ContinueOnError)
		fresh.SetOutput(io.Discard)
		clone.RegisterFlags(fresh)
		// Parse errors are reported by the Flags source.
		_ = fresh.Parse(args)

		f := fresh.Lookup(name)
		if f == nil || f.Value.String() == "" {
			return nil
		}
		expandEnv := false
		if e := fresh.Lookup(expandEnvName); e != nil {
			expandEnv = e.Value.String() == "true"
		}

		for _, file := range strings.Split(f.Value.String(), ",") {
			if err := YAML(file, expandEnv)(dst); err != nil {
				return errors.Wrapf(err, "loading config file %s", file)
			}
		}
		return nil
	}
}

// YAML returns a Source that opens the supplied `.yaml` file and loads it.
// When expandEnv is true, ${VAR} references are replaced by environment
// variables before the document is parsed.
func YAML(f string, expandEnv bool) Source {
	return func(dst interface{}) error {
		y, err := os.ReadFile(filepath.Clean(f))
		if err != nil {
			return err
		}
		if expandEnv {
			s, err := envsubst.EvalEnv(string(y))
			if err != nil {
				return errors.Wrap(err, "expanding env vars")
			}
			y = []byte(s)
		}
		return dYAML(y)(dst)
	}
}

// dYAML returns a YAML source and allows dependency injection
func dYAML(y []byte) Source {
	return func(dst interface{}) error {
		return yaml.UnmarshalStrict(y, dst)
	}
}

package util

import (
	"fmt"
	"io"

	"github.com/prometheus/common/version"
	"gopkg.in/yaml.v2"
)

// PrintConfig will takes yaml-marshalable config and prints it as YAML.
func PrintConfig(w io.Writer, config interface{}) error {
	lc, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "---\n# jsonfrag Config\n# %s\n%s\n\n", version.Info(), string(lc))
	return nil
}

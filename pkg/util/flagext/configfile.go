package flagext

import (
	"strings"
)

// ConfigFiles is a repeatable flag holding YAML config file paths. Files are
// applied in the order given, later files overriding earlier ones.
type ConfigFiles []string

// String implements flag.Value
// Format: file1.yaml,file2.yaml
func (cfgFiles *ConfigFiles) String() string {
	return strings.Join(*cfgFiles, ",")
}

// Set implements flag.Value
// Accepts a single path or a comma separated list.
func (cfgFiles *ConfigFiles) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*cfgFiles = append(*cfgFiles, v)
		}
	}
	return nil
}

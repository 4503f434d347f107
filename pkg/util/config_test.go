package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintConfig(t *testing.T) {
	cfg := struct {
		Policy string `yaml:"absent_policy"`
		Hidden string `yaml:"-"`
	}{Policy: "join", Hidden: "secret"}

	var buf bytes.Buffer
	require.NoError(t, PrintConfig(&buf, &cfg))
	require.Contains(t, buf.String(), "# jsonfrag Config")
	require.Contains(t, buf.String(), "absent_policy: join")
	require.NotContains(t, buf.String(), "secret")
}

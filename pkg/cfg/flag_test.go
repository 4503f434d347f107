package cfg

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaults checks whether `Defaults()` correctly sets values from flag defaults
func TestDefaults(t *testing.T) {
	var d Data
	err := Defaults(flag.NewFlagSet(t.Name(), flag.ContinueOnError))(&d)
	require.NoError(t, err)
	assert.Equal(t, Data{
		Verbose: false,
		Server: Server{
			Port:    80,
			Timeout: 60 * time.Second,
		},
		TLS: TLS{
			Cert: "CERT",
			Key:  "KEY",
		},
	}, d)
}

// TestFlagsMerge checks that defaults and user-supplied values merge correctly
func TestFlagsMerge(t *testing.T) {
	fs := flag.NewFlagSet(t.Name(), flag.ContinueOnError)

	var c Data
	err := Unmarshal(&c,
		Defaults(fs),
		Flags([]string{"-verbose", "-server.timeout=12h"}, fs),
	)
	require.NoError(t, err)
	assert.Equal(t, Data{
		Verbose: true,
		Server: Server{
			Port:    80,
			Timeout: 12 * time.Hour,
		},
		TLS: TLS{
			Cert: "CERT",
			Key:  "KEY",
		},
	}, c)
}

func TestFlagsUnknown(t *testing.T) {
	fs := flag.NewFlagSet(t.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var c Data
	err := Unmarshal(&c,
		Defaults(fs),
		Flags([]string{"-nope"}, fs),
	)
	require.Error(t, err)
}

func TestDefaults_NotRegisterer(t *testing.T) {
	var s struct{}
	err := Defaults(flag.NewFlagSet(t.Name(), flag.ContinueOnError))(&s)
	require.Error(t, err)
}

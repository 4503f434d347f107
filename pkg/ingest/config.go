package ingest

import (
	"flag"
	"fmt"
	"strings"

	dskitflagext "github.com/grafana/dskit/flagext"
	"github.com/pkg/errors"

	"github.com/grafana/jsonfrag/pkg/fragment"
	"github.com/grafana/jsonfrag/pkg/util"
	"github.com/grafana/jsonfrag/pkg/util/flagext"
)

// Absent policies decide what happens to a fragment that does not decode.
const (
	// PolicyDiscard drops the fragment.
	PolicyDiscard = "discard"
	// PolicyRaw emits {"message": <fragment>} in place of the fragment.
	PolicyRaw = "raw"
	// PolicyJoin treats the fragment as the start of a record split across
	// lines and retries decoding with the lines that follow.
	PolicyJoin = "join"
)

var policies = []string{PolicyDiscard, PolicyRaw, PolicyJoin}

const (
	DefaultConcurrency  = 4
	DefaultBatchSize    = 128
	DefaultMaxLineSize  = 1 << 20
	DefaultMaxJoinLines = 16

	maxConcurrency = 1024
)

var (
	errInvalidConcurrency  = errors.New("concurrency must be greater than 0")
	errInvalidBatchSize    = errors.New("batch-size must be greater than 0")
	errInvalidMaxLineSize  = errors.New("max-line-size must be greater than 0")
	errInvalidMaxJoinLines = errors.New("max-join-lines must be at least 2 with the join policy")
)

// Config configures a Processor.
type Config struct {
	// AbsentPolicy is one of discard, raw or join.
	AbsentPolicy string `yaml:"absent_policy"`

	// Concurrency is the number of goroutines decoding a batch.
	Concurrency int `yaml:"concurrency"`
	// BatchSize is the number of lines decoded together before results are
	// written out in input order.
	BatchSize int `yaml:"batch_size"`

	// MaxLineSize bounds a single line, and a joined record.
	MaxLineSize flagext.ByteSize `yaml:"max_line_size"`
	// MaxJoinLines bounds how many lines may make up a joined record.
	MaxJoinLines int `yaml:"max_join_lines"`

	// Fields, when set, projects every decoded object down to these dotted
	// key paths.
	Fields dskitflagext.StringSliceCSV `yaml:"fields"`
}

// RegisterFlags registers the ingest flags.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix("ingest.", f)
}

// RegisterFlagsWithPrefix registers the ingest flags with the given prefix.
func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	f.StringVar(
		&cfg.AbsentPolicy,
		prefix+"absent-policy",
		PolicyDiscard,
		fmt.Sprintf("What to do with a line that is not a complete JSON object. Valid values: [%s]", strings.Join(policies, ", ")),
	)
	f.IntVar(
		&cfg.Concurrency,
		prefix+"concurrency",
		DefaultConcurrency,
		"Number of goroutines decoding lines of a batch. Not used with the join policy, which decodes sequentially.",
	)
	f.IntVar(
		&cfg.BatchSize,
		prefix+"batch-size",
		DefaultBatchSize,
		"Number of lines decoded together before the results are written in input order.",
	)
	cfg.MaxLineSize = DefaultMaxLineSize
	f.Var(
		&cfg.MaxLineSize,
		prefix+"max-line-size",
		"Maximum size of a line, and of a record joined from several lines.",
	)
	f.IntVar(
		&cfg.MaxJoinLines,
		prefix+"max-join-lines",
		DefaultMaxJoinLines,
		"Maximum number of lines joined into one record with the join policy.",
	)
	f.Var(
		&cfg.Fields,
		prefix+"fields",
		"Comma separated dotted key paths. When set, only these keys are kept from each decoded object.",
	)
}

// Validate checks the config.
func (cfg *Config) Validate() error {
	if !util.StringSliceContains(policies, cfg.AbsentPolicy) {
		return fmt.Errorf("unrecognized absent policy %q, valid values: [%s]", cfg.AbsentPolicy, strings.Join(policies, ", "))
	}
	if cfg.Concurrency <= 0 {
		return errInvalidConcurrency
	}
	if cfg.BatchSize <= 0 {
		return errInvalidBatchSize
	}
	if cfg.MaxLineSize <= 0 {
		return errInvalidMaxLineSize
	}
	if cfg.AbsentPolicy == PolicyJoin && cfg.MaxJoinLines < 2 {
		return errInvalidMaxJoinLines
	}
	return nil
}

// Paths returns the parsed projection paths.
func (cfg *Config) Paths() []fragment.Path {
	if len(cfg.Fields) == 0 {
		return nil
	}
	paths := make([]fragment.Path, 0, len(cfg.Fields))
	for _, f := range cfg.Fields {
		if p := fragment.ParsePath(strings.TrimSpace(f)); len(p) > 0 {
			paths = append(paths, p)
		}
	}
	return paths
}

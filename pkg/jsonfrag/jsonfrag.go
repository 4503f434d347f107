// Package jsonfrag wires the fragment processor, its inputs and output, and
// the admin server into one runnable unit.
package jsonfrag

import (
	"context"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"

	"github.com/grafana/jsonfrag/pkg/ingest"
)

// Registry is both where metrics are registered and where /metrics reads them.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// JSONFrag processes fragment sources one after another.
type JSONFrag struct {
	cfg       Config
	logger    log.Logger
	gatherer  prometheus.Gatherer
	sink      *ingest.JSONLinesSink
	processor *ingest.Processor

	ready atomic.Bool
}

// New builds a JSONFrag writing decoded objects to out.
func New(cfg Config, out io.Writer, logger log.Logger, reg Registry) (*JSONFrag, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sink := ingest.NewJSONLinesSink(out)
	processor, err := ingest.NewProcessor(cfg.Ingest, sink, logger, reg)
	if err != nil {
		return nil, err
	}

	return &JSONFrag{
		cfg:       cfg,
		logger:    logger,
		gatherer:  reg,
		sink:      sink,
		processor: processor,
	}, nil
}

// Run processes every path in order, standard input when paths is empty.
// Output is flushed after each source.
func (j *JSONFrag) Run(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		paths = []string{ingest.Stdin}
	}

	if j.cfg.Server.HTTPListenAddress != "" {
		stop, err := j.startServer()
		if err != nil {
			return err
		}
		defer stop()
	}

	j.ready.Store(true)
	defer j.ready.Store(false)

	var total ingest.Stats
	for _, path := range paths {
		stats, err := j.processPath(ctx, path)
		total.Lines += stats.Lines
		total.Present += stats.Present
		total.Dropped += stats.Dropped
		if err != nil {
			return err
		}
	}

	level.Info(j.logger).Log(
		"msg", "finished",
		"sources", len(paths),
		"lines", total.Lines,
		"present", total.Present,
		"dropped", total.Dropped,
	)
	return nil
}

func (j *JSONFrag) processPath(ctx context.Context, path string) (ingest.Stats, error) {
	rc, err := ingest.Open(path)
	if err != nil {
		return ingest.Stats{}, err
	}
	defer rc.Close()

	stats, err := j.processor.Process(ctx, rc, path)
	if ferr := j.sink.Flush(); ferr != nil && err == nil {
		err = errors.Wrap(ferr, "flushing output")
	}
	return stats, err
}

// Package ingest feeds newline delimited fragments through the fragment
// decoder and decides what happens to the ones that do not decode.
package ingest

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/grafana/jsonfrag/pkg/fragment"
	"github.com/grafana/jsonfrag/pkg/util"
)

const (
	reasonAbsent     = "absent"
	reasonSuperseded = "superseded"
	reasonJoinLimit  = "join_limit"
	reasonEOF        = "eof"

	previewSize = 128
)

// Sink receives decoded objects in input order.
type Sink interface {
	Write(obj fragment.Object) error
}

// Stats summarises one call to Process.
type Stats struct {
	// Lines read, blank ones included.
	Lines int64
	// Blank lines are skipped without decoding.
	Blank int64
	// Present counts objects written to the sink from decoded lines,
	// joined records included.
	Present int64
	// Absent counts lines that did not decode on their own.
	Absent int64
	// Joined counts objects decoded from several lines.
	Joined int64
	// Dropped counts fragments discarded without output. A pending join
	// counts once however many lines it holds.
	Dropped int64
}

type counters struct {
	lines, blank, present, absent, joined, dropped atomic.Int64
}

func (c *counters) stats() Stats {
	return Stats{
		Lines:   c.lines.Load(),
		Blank:   c.blank.Load(),
		Present: c.present.Load(),
		Absent:  c.absent.Load(),
		Joined:  c.joined.Load(),
		Dropped: c.dropped.Load(),
	}
}

// Processor decodes fragments read line by line and writes the objects to a
// Sink.
type Processor struct {
	cfg         Config
	paths       []fragment.Path
	concurrency int
	sink        Sink
	logger      log.Logger
	metrics     *metrics
}

// NewProcessor validates cfg and returns a Processor writing to sink.
func NewProcessor(cfg Config, sink Sink, logger log.Logger, reg prometheus.Registerer) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid ingest config")
	}
	return &Processor{
		cfg:         cfg,
		paths:       cfg.Paths(),
		concurrency: util.Clamp(cfg.Concurrency, 1, maxConcurrency),
		sink:        sink,
		logger:      logger,
		metrics:     newMetrics(reg),
	}, nil
}

// Process reads r until EOF. source names r in logs and metrics. Fragments
// that do not decode never cause an error; reading, writing and context
// cancellation do.
func (p *Processor) Process(ctx context.Context, r io.Reader, source string) (Stats, error) {
	var c counters

	maxLineSize := p.cfg.MaxLineSize.Val()
	sc := bufio.NewScanner(r)
	// One extra byte for the newline.
	sc.Buffer(make([]byte, 0, util.Min(64*1024, maxLineSize+1)), maxLineSize+1)

	var err error
	if p.cfg.AbsentPolicy == PolicyJoin {
		err = p.processJoined(ctx, sc, source, &c)
	} else {
		err = p.processBatched(ctx, sc, source, &c)
	}

	stats := c.stats()
	level.Info(p.logger).Log(
		"msg", "processed fragments",
		"source", source,
		"lines", stats.Lines,
		"present", stats.Present,
		"absent", stats.Absent,
		"joined", stats.Joined,
		"dropped", stats.Dropped,
		"blank", stats.Blank,
	)
	return stats, err
}

type result struct {
	obj fragment.Object
	ok  bool
}

func (p *Processor) processBatched(ctx context.Context, sc *bufio.Scanner, source string, c *counters) error {
	batch := make([]string, 0, p.cfg.BatchSize)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, ok := p.readLine(sc, source, c)
		if !ok {
			continue
		}
		batch = append(batch, line)
		if len(batch) >= p.cfg.BatchSize {
			if err := p.flushBatch(ctx, batch, source, c); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := p.flushBatch(ctx, batch, source, c); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrapf(err, "reading %s", source)
	}
	return nil
}

// flushBatch decodes batch concurrently and writes the outcomes in order.
func (p *Processor) flushBatch(ctx context.Context, batch []string, source string, c *counters) error {
	results := make([]result, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, line := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i].obj, results[i].ok = p.decode(line, source, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, res := range results {
		if res.ok {
			if err := p.write(res.obj); err != nil {
				return err
			}
			continue
		}
		if p.cfg.AbsentPolicy == PolicyRaw {
			if err := p.write(fragment.Object{"message": batch[i]}); err != nil {
				return err
			}
			continue
		}
		p.drop(batch[i], source, reasonAbsent, c)
	}
	return nil
}

// processJoined keeps a fragment that did not decode pending and retries it
// with each following line. A line that decodes on its own supersedes the
// pending fragment.
func (p *Processor) processJoined(ctx context.Context, sc *bufio.Scanner, source string, c *counters) error {
	var (
		pending      string
		pendingLines int
		maxLineSize  = p.cfg.MaxLineSize.Val()
	)
	reset := func(line string) {
		pending, pendingLines = line, 0
		if line != "" {
			pendingLines = 1
		}
	}

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, ok := p.readLine(sc, source, c)
		if !ok {
			continue
		}

		if obj, ok := p.decode(line, source, c); ok {
			if pendingLines > 0 {
				p.drop(pending, source, reasonSuperseded, c)
			}
			reset("")
			if err := p.write(obj); err != nil {
				return err
			}
			continue
		}

		switch {
		case pendingLines == 0:
			reset(line)
			continue
		case pendingLines >= p.cfg.MaxJoinLines, len(pending)+1+len(line) > maxLineSize:
			p.drop(pending, source, reasonJoinLimit, c)
			reset(line)
			continue
		}

		candidate := pending + "\n" + line
		if obj, ok := p.decodeFragment(candidate); ok {
			c.present.Inc()
			c.joined.Inc()
			p.metrics.joined.WithLabelValues(source).Inc()
			reset("")
			if err := p.write(obj); err != nil {
				return err
			}
			continue
		}
		pending = candidate
		pendingLines++
	}

	if pendingLines > 0 {
		p.drop(pending, source, reasonEOF, c)
	}
	if err := sc.Err(); err != nil {
		return errors.Wrapf(err, "reading %s", source)
	}
	return nil
}

// readLine counts the current line and reports whether it needs decoding.
func (p *Processor) readLine(sc *bufio.Scanner, source string, c *counters) (string, bool) {
	c.lines.Inc()
	p.metrics.lines.WithLabelValues(source).Inc()

	line := sc.Text()
	if strings.TrimSpace(line) == "" {
		c.blank.Inc()
		p.metrics.fragments.WithLabelValues(source, outcomeBlank).Inc()
		return "", false
	}
	return line, true
}

// decode decodes a single line and counts the outcome. It is called
// concurrently.
func (p *Processor) decode(line, source string, c *counters) (fragment.Object, bool) {
	obj, ok := p.decodeFragment(line)
	if ok {
		c.present.Inc()
		p.metrics.fragments.WithLabelValues(source, outcomePresent).Inc()
	} else {
		c.absent.Inc()
		p.metrics.fragments.WithLabelValues(source, outcomeAbsent).Inc()
	}
	return obj, ok
}

func (p *Processor) decodeFragment(s string) (fragment.Object, bool) {
	if len(p.paths) > 0 {
		return fragment.Project([]byte(s), p.paths)
	}
	return fragment.DecodeString(s)
}

func (p *Processor) drop(frag, source, reason string, c *counters) {
	c.dropped.Inc()
	p.metrics.dropped.WithLabelValues(source, reason).Inc()
	level.Debug(p.logger).Log(
		"msg", "dropping fragment",
		"source", source,
		"reason", reason,
		"fragment", util.Preview(frag, previewSize),
	)
}

func (p *Processor) write(obj fragment.Object) error {
	if err := p.sink.Write(obj); err != nil {
		return errors.Wrap(err, "writing object")
	}
	return nil
}

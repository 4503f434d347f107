package log

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	dslog "github.com/grafana/dskit/log"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Logger is a shared go-kit logger, set by InitLogger. Components receive
	// it through their constructors.
	Logger = log.NewNopLogger()

	plogger *prometheusLogger
	filter  *levelFilter
)

// Config holds the logging flags.
type Config struct {
	LogLevel  dslog.Level `yaml:"log_level"`
	LogFormat string      `yaml:"log_format"`
}

// RegisterFlags registers the log flags.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.LogLevel.RegisterFlags(f)
	f.StringVar(&cfg.LogFormat, "log.format", "logfmt", "Output log messages in the given format. Valid formats: [logfmt, json]")
}

// Validate checks the log format.
func (cfg *Config) Validate() error {
	switch cfg.LogFormat {
	case "logfmt", "json":
		return nil
	default:
		return fmt.Errorf("unrecognized log format %q", cfg.LogFormat)
	}
}

// InitLogger initialises the global logger according to the allowed log level
// and log format, writing to stderr.
func InitLogger(cfg *Config, reg prometheus.Registerer) {
	Logger = NewLogger(cfg, reg, os.Stderr)
}

// NewLogger builds a leveled logger that counts the messages it writes per
// level. Its level is the one LevelHandler adjusts.
func NewLogger(cfg *Config, reg prometheus.Registerer, w io.Writer) log.Logger {
	plogger = newPrometheusLogger(cfg.LogFormat, reg, w)
	filter = newLevelFilter(plogger, cfg.LogLevel)
	return log.With(filter, "ts", log.DefaultTimestampUTC)
}

// prometheusLogger exposes Prometheus counters for each of go-kit's log levels.
// It sits behind the level filter and only sees messages that get written.
type prometheusLogger struct {
	logger      log.Logger
	logMessages *prometheus.CounterVec
}

func newPrometheusLogger(format string, reg prometheus.Registerer, w io.Writer) *prometheusLogger {
	var writer io.Writer = log.NewSyncWriter(w)
	logger := log.NewLogfmtLogger(writer)
	if format == "json" {
		logger = log.NewJSONLogger(writer)
	}

	logMessages := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Namespace: "jsonfrag",
		Name:      "log_messages_total",
		Help:      "Total number of log messages.",
	}, []string{"level"})
	// Initialise counters for all supported levels:
	for _, lvl := range []level.Value{
		level.DebugValue(),
		level.InfoValue(),
		level.WarnValue(),
		level.ErrorValue(),
	} {
		logMessages.WithLabelValues(lvl.String())
	}

	return &prometheusLogger{
		logger:      logger,
		logMessages: logMessages,
	}
}

// Log increments the appropriate Prometheus counter depending on the log level.
func (pl *prometheusLogger) Log(kv ...interface{}) error {
	if err := pl.logger.Log(kv...); err != nil {
		return err
	}
	l := "unknown"
	for i := 1; i < len(kv); i += 2 {
		if v, ok := kv[i].(level.Value); ok {
			l = v.String()
			break
		}
	}
	pl.logMessages.WithLabelValues(l).Inc()
	return nil
}

// levelFilter is a level filter in front of next that can be swapped at
// runtime.
type levelFilter struct {
	next log.Logger

	mtx      sync.RWMutex
	filtered log.Logger
}

func newLevelFilter(next log.Logger, l dslog.Level) *levelFilter {
	f := &levelFilter{next: next}
	f.Set(l)
	return f
}

func (f *levelFilter) Log(kv ...interface{}) error {
	f.mtx.RLock()
	logger := f.filtered
	f.mtx.RUnlock()
	return logger.Log(kv...)
}

// Set replaces the level filter.
func (f *levelFilter) Set(l dslog.Level) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.filtered = level.NewFilter(f.next, l.Option)
}

// CheckFatal prints an error and exits with error code 1 if err is non-nil.
func CheckFatal(location string, err error, logger log.Logger) {
	if err == nil {
		return
	}
	errLogger := level.Error(logger)
	if location != "" {
		errLogger = log.With(errLogger, "msg", "error "+location)
	}
	// %+v gets the stack trace from errors using github.com/pkg/errors
	errStr := fmt.Sprintf("%+v", err)
	fmt.Fprintln(os.Stderr, errStr)

	errLogger.Log("err", errStr)
	os.Exit(1)
}

// LevelHandler reports the current log level on GET and changes it on POST
// with a log_level form value.
func LevelHandler(currentLogLevel *dslog.Level) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]string{
				"message": fmt.Sprintf("Current log level is %s", currentLogLevel.String()),
			})
		case http.MethodPost:
			logLevel := r.FormValue("log_level")

			var newLogLevel dslog.Level
			if err := newLogLevel.Set(logLevel); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{
					"message": err.Error(),
					"status":  "failed",
				})
				return
			}

			if filter != nil {
				filter.Set(newLogLevel)
			}
			*currentLogLevel = newLogLevel
			writeJSON(w, http.StatusOK, map[string]string{
				"status":  "success",
				"message": fmt.Sprintf("Log level set to %s", logLevel),
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = jsoniter.NewEncoder(w).Encode(v)
}

package jsonfrag

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	util_log "github.com/grafana/jsonfrag/pkg/util/log"
)

func (j *JSONFrag) router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(j.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.Handle("/log_level", util_log.LevelHandler(&j.cfg.Server.Log.LogLevel)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/ready", j.readyHandler).Methods(http.MethodGet)
	return r
}

func (j *JSONFrag) readyHandler(w http.ResponseWriter, _ *http.Request) {
	if !j.ready.Load() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	_, _ = w.Write([]byte("ready"))
}

// startServer binds the admin listener and serves in the background. The
// returned function shuts the server down.
func (j *JSONFrag) startServer() (func(), error) {
	ln, err := net.Listen("tcp", j.cfg.Server.HTTPListenAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", j.cfg.Server.HTTPListenAddress)
	}
	srv := &http.Server{
		Handler:           j.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	level.Info(j.logger).Log("msg", "admin server listening", "addr", ln.Addr().String())

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(j.logger).Log("msg", "admin server failed", "err", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.cfg.Server.GracefulShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			level.Warn(j.logger).Log("msg", "admin server shutdown", "err", err)
		}
		<-done
	}, nil
}

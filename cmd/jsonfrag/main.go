package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/common/version"

	"github.com/grafana/jsonfrag/pkg/cfg"
	"github.com/grafana/jsonfrag/pkg/jsonfrag"
	"github.com/grafana/jsonfrag/pkg/util"
	util_log "github.com/grafana/jsonfrag/pkg/util/log"
)

func main() {
	var config jsonfrag.Config

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [file ...]\n\nDecodes newline delimited JSON fragments from the given files (or stdin) and writes the complete objects to stdout.\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	if err := cfg.DefaultUnmarshal(&config, os.Args[1:], flag.CommandLine); err != nil {
		fmt.Fprintf(os.Stderr, "failed parsing config: %v\n", err)
		os.Exit(1)
	}

	// Handle -version CLI flag
	if config.PrintVersion {
		fmt.Println(version.Print("jsonfrag"))
		os.Exit(0)
	}

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		versioncollector.NewCollector("jsonfrag"),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Init the logger which will honor the log level set in config.Server
	util_log.InitLogger(&config.Server.Log, reg)

	if config.PrintConfig {
		if err := util.PrintConfig(os.Stderr, &config); err != nil {
			level.Error(util_log.Logger).Log("msg", "failed to print config to stderr", "err", err.Error())
		}
	}

	j, err := jsonfrag.New(config, os.Stdout, util_log.Logger, reg)
	util_log.CheckFatal("initialising jsonfrag", err, util_log.Logger)

	level.Info(util_log.Logger).Log("msg", "Starting jsonfrag", "version", version.Info())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = j.Run(ctx, flag.CommandLine.Args())
	// CheckFatal exits without running deferred calls.
	stop()
	util_log.CheckFatal("running jsonfrag", err, util_log.Logger)
}

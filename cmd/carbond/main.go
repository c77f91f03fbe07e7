// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/carbond/carbond/internal/alerting"
	"github.com/carbond/carbond/internal/cache"
	"github.com/carbond/carbond/internal/config"
	"github.com/carbond/carbond/internal/counters"
	"github.com/carbond/carbond/internal/devpersister"
	"github.com/carbond/carbond/internal/ingest"
	carbondlog "github.com/carbond/carbond/internal/log"
	"github.com/carbond/carbond/internal/maintenance"
	"github.com/carbond/carbond/internal/obs"
	"github.com/carbond/carbond/internal/query"
	"github.com/carbond/carbond/internal/schema"
	"github.com/google/gops/agent"
)

// sink adapts the cache and counter table to the ingest.Sink interface so
// the listeners only ever see the two operations they need.
type sink struct {
	cache    *cache.Cache
	counters *counters.Table
}

func (s *sink) Store(metric string, dp schema.Datapoint) { s.cache.Store(metric, dp) }
func (s *sink) IncMetricsReceived(n int64)                { s.counters.IncMetricsReceived(n) }
func (s *sink) IncParseErrors()                           { s.counters.IncParseErrors() }
func (s *sink) IncFramingErrors()                         { s.counters.IncFramingErrors() }

func main() {
	cliInit()

	if flagVersion {
		fmt.Printf("carbond (%s)\n", runtime.Version())
		return
	}

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			carbondlog.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	config.Init(flagConfigFile)

	logLevel := config.Keys.LogLevel
	if flagLogLevel != "" {
		logLevel = flagLogLevel
	}
	carbondlog.SetLogLevel(logLevel)
	carbondlog.SetLogDateTime(flagLogDateTime || config.Keys.LogDateTime)

	c := cache.New()
	ct := counters.New()
	s := &sink{cache: c, counters: ct}
	registry := ingest.NewClientManager()

	bindAddr := func(port int) string {
		return fmt.Sprintf("%s:%d", config.Keys.Interface, port)
	}

	lineListener := ingest.NewLineTextListener(bindAddr(config.Keys.LineTCPPort), s, registry)
	udpListener := ingest.NewLineDatagramListener(bindAddr(config.Keys.UDPPort), s)
	batchedListener := ingest.NewBatchedListener(bindAddr(config.Keys.PickleTCPPort), s, registry)
	queryHandler := query.NewHandler(c, ct)
	queryListener := query.NewListener(bindAddr(config.Keys.QueryTCPPort), queryHandler)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	runListener := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				carbondlog.ComponentError("carbond", name, " exited: ", err)
			}
		}()
	}

	runListener("line-text listener", lineListener.ListenAndServe)
	runListener("line-datagram listener", udpListener.ListenAndServe)
	runListener("batched listener", batchedListener.ListenAndServe)
	runListener("query listener", queryListener.ListenAndServe)

	var metricsServer *http.Server
	if config.Keys.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    config.Keys.MetricsAddr,
			Handler: obs.NewHandler(ct, c),
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			carbondlog.Info("metrics server listening at ", config.Keys.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				carbondlog.ComponentError("carbond", "metrics server exited: ", err)
			}
		}()
	}

	scheduler, err := maintenance.New()
	if err != nil {
		carbondlog.Fatal(err)
	}
	if err := scheduler.RegisterCacheWatchdog(c, registry, ct, config.Keys.MaxCacheSize, config.Keys.MaxCacheSize/2, 10*time.Second); err != nil {
		carbondlog.Fatal(err)
	}

	rules := alerting.Compile(alertRuleSpecs(config.Keys.Alerting.Rules))
	if err := scheduler.RegisterAlerting(rules, c, 30*time.Second); err != nil {
		carbondlog.Fatal(err)
	}

	var persister *devpersister.Persister
	if config.Keys.Checkpoints.Enabled {
		persister, err = devpersister.Connect(config.Keys.Checkpoints.DSN)
		if err != nil {
			carbondlog.Fatal(err)
		}
		interval, err := time.ParseDuration(config.Keys.Checkpoints.Interval)
		if err != nil {
			interval = time.Minute
		}
		if err := scheduler.RegisterDrain(persister, c, interval); err != nil {
			carbondlog.Fatal(err)
		}
	}

	scheduler.Start()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	carbondlog.Info("shutting down")
	cancel()

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		metricsServer.Shutdown(shutdownCtx)
		shutdownCancel()
	}
	if err := scheduler.Shutdown(); err != nil {
		carbondlog.ComponentError("carbond", "scheduler shutdown: ", err)
	}
	if persister != nil {
		persister.Close()
	}

	wg.Wait()
	carbondlog.Info("graceful shutdown completed")
}

func alertRuleSpecs(rules []config.AlertRule) []alerting.RuleSpec {
	specs := make([]alerting.RuleSpec, len(rules))
	for i, r := range rules {
		specs[i] = alerting.RuleSpec{Name: r.Name, Target: r.Target, Expr: r.Expr}
	}
	return specs
}

// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// quai-staked is the staking dashboard backend daemon. It owns the ledger
// state, executes pool operations through the serialized runtime, records the
// operation history, and serves the REST and metrics endpoints.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/dominant-strategies/go-quai-stake/api"
	"github.com/dominant-strategies/go-quai-stake/eventdb"
	"github.com/dominant-strategies/go-quai-stake/log"
	"github.com/dominant-strategies/go-quai-stake/lvldb"
	"github.com/dominant-strategies/go-quai-stake/metrics"
	"github.com/dominant-strategies/go-quai-stake/runtime"
	"github.com/dominant-strategies/go-quai-stake/state"
)

var (
	version   string
	gitCommit string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	if version == "" {
		return "dev"
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "quai-staked",
		Usage:     "QUAI staking dashboard backend",
		Copyright: "2025 Dominant Strategies",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			apiAddrFlag,
			apiCorsFlag,
			metricsAddrFlag,
			verbosityFlag,
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quai-staked"
	}
	return filepath.Join(home, ".quai-staked")
}

func runAction(ctx *cli.Context) error {
	if err := log.Init(ctx.String(verbosityFlag.Name)); err != nil {
		return err
	}
	if ctx.String(metricsAddrFlag.Name) != "" {
		metrics.InitializePrometheusMetrics()
	}

	cfg, err := LoadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}

	dataDir := ctx.String(dataDirFlag.Name)
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return err
	}

	db, err := lvldb.New(filepath.Join(dataDir, "ledger.db"), lvldb.Options{})
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing ledger database..."); db.Close() }()

	events, err := eventdb.New(filepath.Join(dataDir, "events.db"))
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing event database..."); events.Close() }()

	st := state.New(db)
	rt := runtime.New(st, runtime.NewSystemClock(cfg.GenesisTime))
	svc, err := buildService(rt, cfg, events)
	if err != nil {
		return err
	}

	root, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(root)

	apiSrv := &http.Server{
		Addr:    ctx.String(apiAddrFlag.Name),
		Handler: api.New(svc, parseCors(ctx.String(apiCorsFlag.Name))),
	}
	group.Go(func() error {
		logger.Info("api service started", "addr", apiSrv.Addr)
		if err := apiSrv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	var metricsSrv *http.Server
	if addr := ctx.String(metricsAddrFlag.Name); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler())
		metricsSrv = &http.Server{Addr: addr, Handler: mux}
		group.Go(func() error {
			logger.Info("metrics service started", "addr", metricsSrv.Addr)
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	group.Go(func() error { return meterLoop(groupCtx, svc) })

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if metricsSrv != nil {
			metricsSrv.Shutdown(shutdownCtx)
		}
		return apiSrv.Shutdown(shutdownCtx)
	})

	err = group.Wait()
	logger.Info("exited")
	return err
}

func parseCors(raw string) []string {
	if raw == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Licensed to LinDB under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. LinDB licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/lindb/common/pkg/fileutil"

	"github.com/lindb/taskpool"
	"github.com/lindb/taskpool/config"
	"github.com/lindb/taskpool/metrics"
)

var (
	tasks      int
	taskJitter time.Duration
	metricAddr string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "build a pool from config, feed it a synthetic workload, and print live stats",
		RunE:  serveRun,
	}
	cmd.Flags().IntVar(&tasks, "tasks", 0,
		"number of synthetic tasks to submit as a smoke test; 0 disables the workload")
	cmd.Flags().DurationVar(&taskJitter, "task-jitter", 5*time.Millisecond,
		"maximum random sleep each synthetic task does before returning")
	cmd.Flags().StringVar(&metricAddr, "metrics-addr", ":9090",
		"address to serve /metrics on")
	return cmd
}

func serveRun(_ *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		path = defaultCfgFile
	}

	poolCfg := config.NewDefaultPool()
	if fileutil.Exist(path) {
		var wrapper struct {
			Pool config.Pool `toml:"pool"`
		}
		wrapper.Pool = *poolCfg
		if _, err := toml.DecodeFile(path, &wrapper); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		poolCfg = &wrapper.Pool
	}

	reg := prometheus.NewRegistry()
	stats := metrics.NewPoolStats(reg, poolCfg.Name)

	pool := taskpool.NewBuilder(poolCfg.Name).
		WithMaxWorkers(poolCfg.MaxWorkers).
		WithIdleTimeout(time.Duration(poolCfg.IdleTimeout)).
		WithLaunchOnBuild(poolCfg.LaunchOnBuild).
		WithStats(stats).
		Build()
	defer pool.Shutdown()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: metricAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintln(os.Stderr, "metrics server:", err)
		}
	}()
	defer server.Close()

	if tasks > 0 {
		runWorkload(pool)
	}

	printStatsTable(pool)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}

func runWorkload(pool *taskpool.Pool) {
	for i := 0; i < tasks; i++ {
		taskpool.SpawnOn(pool, func() int {
			if taskJitter > 0 {
				time.Sleep(time.Duration(rand.Int63n(int64(taskJitter)))) //nolint:gosec
			}
			return 1
		})
	}
}

func printStatsTable(pool *taskpool.Pool) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"pool", "workers"})
	t.AppendRow(table.Row{color.CyanString(pool.Name()), pool.Workers()})
	t.Render()
}

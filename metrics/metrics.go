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

// Package metrics exposes a pool's scheduling events as Prometheus
// collectors. It plays the role the original internal/concurrent.Pool's
// *metrics.ConcurrentStatistics field played, generalized from LinDB's
// internal push-based exposition format to a pull-based
// promauto/promhttp registry, since a task pool library has no business
// assuming its caller runs LinDB's own metric pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lindb/taskpool/internal/sched"
)

// PoolStats implements sched.Stats by recording every event into a set
// of per-pool Prometheus collectors, labeled by pool name.
type PoolStats struct {
	workersStarted prometheus.Counter
	workersStopped prometheus.Counter
	tasksSubmitted prometheus.Counter
	tasksStolen    prometheus.Counter
	tasksRejected  prometheus.Counter
	tasksPanicked  prometheus.Counter
	waitSeconds    prometheus.Histogram
	runSeconds     prometheus.Histogram
}

// NewPoolStats registers a PoolStats's collectors against reg, labeling
// every metric with the given pool name. Passing prometheus.DefaultRegisterer
// registers against the global default registry.
func NewPoolStats(reg prometheus.Registerer, poolName string) *PoolStats {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"pool": poolName}

	return &PoolStats{
		workersStarted: factory.NewCounter(prometheus.CounterOpts{
			Name:        "taskpool_workers_started_total",
			Help:        "Total number of workers started.",
			ConstLabels: constLabels,
		}),
		workersStopped: factory.NewCounter(prometheus.CounterOpts{
			Name:        "taskpool_workers_stopped_total",
			Help:        "Total number of workers stopped (idle timeout or shutdown).",
			ConstLabels: constLabels,
		}),
		tasksSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name:        "taskpool_tasks_submitted_total",
			Help:        "Total number of tasks submitted to the pool.",
			ConstLabels: constLabels,
		}),
		tasksStolen: factory.NewCounter(prometheus.CounterOpts{
			Name:        "taskpool_tasks_stolen_total",
			Help:        "Total number of tasks a worker picked up via the injector or a peer steal.",
			ConstLabels: constLabels,
		}),
		tasksRejected: factory.NewCounter(prometheus.CounterOpts{
			Name:        "taskpool_tasks_rejected_total",
			Help:        "Total number of tasks rejected because the pool was already stopped.",
			ConstLabels: constLabels,
		}),
		tasksPanicked: factory.NewCounter(prometheus.CounterOpts{
			Name:        "taskpool_tasks_panicked_total",
			Help:        "Total number of tasks whose body panicked.",
			ConstLabels: constLabels,
		}),
		waitSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "taskpool_task_wait_seconds",
			Help:        "Time a task spent queued before a worker picked it up.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}),
		runSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "taskpool_task_run_seconds",
			Help:        "Time a task spent running once a worker picked it up.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}),
	}
}

var _ sched.Stats = (*PoolStats)(nil)

func (s *PoolStats) WorkerStarted() { s.workersStarted.Inc() }
func (s *PoolStats) WorkerStopped() { s.workersStopped.Inc() }
func (s *PoolStats) TaskSubmitted() { s.tasksSubmitted.Inc() }
func (s *PoolStats) TaskStolen()    { s.tasksStolen.Inc() }
func (s *PoolStats) TaskRejected()  { s.tasksRejected.Inc() }
func (s *PoolStats) TaskPanicked()  { s.tasksPanicked.Inc() }

func (s *PoolStats) WaitDuration(d time.Duration) { s.waitSeconds.Observe(d.Seconds()) }
func (s *PoolStats) RunDuration(d time.Duration)  { s.runSeconds.Observe(d.Seconds()) }

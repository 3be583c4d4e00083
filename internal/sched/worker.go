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

package sched

import (
	"fmt"
	"time"

	"github.com/lindb/common/pkg/logger"

	"github.com/lindb/taskpool/internal/deque"
	"github.com/lindb/taskpool/internal/glocal"
	"github.com/lindb/taskpool/internal/state"
	"github.com/lindb/taskpool/internal/task"
)

// currentWorker lets a goroutine that is itself a pool worker discover
// that fact, the goroutine-local equivalent of the original's
// thread_local!{ static WORKER: ... }.
var currentWorker glocal.Slot

// CurrentWorker returns the Worker running on the calling goroutine, if
// any. It is what the root package's Current()/Spawn free functions use
// to find the pool a nested task should submit into.
func CurrentWorker() (*Worker, bool) {
	v, ok := currentWorker.Get()
	if !ok {
		return nil, false
	}
	return v.(*Worker), true
}

// Worker owns one local queue and runs on its own goroutine until the
// Core it belongs to is shut down, or it sits idle past IdleTimeout.
type Worker struct {
	core *Core
	id   int
	name string

	local  deque.Local
	stopCh chan struct{}
}

func newWorker(core *Core, id int, name string) *Worker {
	if name == "" {
		name = fmt.Sprintf("%s-worker-%d", core.opts.Name, id)
	}
	return &Worker{
		core:   core,
		id:     id,
		name:   name,
		stopCh: make(chan struct{}),
	}
}

// ID returns the worker's stable identifier within its pool.
func (w *Worker) ID() int { return w.id }

// Name is the worker's display name: either the configured name hook's
// return value for this id, or a "<pool-name>-worker-<id>" default.
func (w *Worker) Name() string { return w.name }

// Core returns the Core this worker belongs to.
func (w *Worker) Core() *Core { return w.core }

// run is the worker's main loop: pop local, steal injector/peers, or park.
func (w *Worker) run() {
	currentWorker.Set(w)
	defer currentWorker.Clear()

	defer w.core.removeWorker(w)

	hooks := w.core.opts.Hooks
	stats := w.core.opts.Stats

	w.core.log.Debug("worker started", logger.String("name", w.name), logger.Int("id", w.id))
	hooks.onStart(w.id)
	stats.WorkerStarted()
	defer func() {
		hooks.onStop(w.id)
		stats.WorkerStopped()
		w.local.Drain()
		w.core.log.Debug("worker stopped", logger.String("name", w.name), logger.Int("id", w.id))
	}()

	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		t, ok := w.local.Pop()
		if !ok {
			t, ok = w.core.trySteal(w)
		}

		if ok {
			w.runOne(t, hooks, stats)
			continue
		}

		hooks.onPark(w.id)
		woke := w.core.park(w.core.opts.IdleTimeout)
		hooks.onUnpark(w.id)
		if !woke {
			select {
			case <-w.stopCh:
			default:
				return
			}
		}

		select {
		case <-w.stopCh:
			return
		default:
		}
	}
}

func (w *Worker) runOne(t task.Erased, hooks Hooks, stats Stats) {
	w.core.working.Inc()
	defer w.core.working.Dec()

	hooks.beforeWork(w.id)
	start := time.Now()
	stats.WaitDuration(start.Sub(t.CreatedAt()))
	t.Run()
	stats.RunDuration(time.Since(start))
	hooks.afterWork(w.id)

	if t.State().Get(state.Panicked) {
		stats.TaskPanicked()
	}
	task.Release(t)
}

// RunOne steps the scheduler once on behalf of the calling goroutine if
// it is itself a worker: it tries to make local progress without parking,
// the equivalent of the original's yield_now used by a busy task that
// wants to let sibling work run between steps. It reports whether it
// found and ran something.
func RunOne() bool {
	w, ok := CurrentWorker()
	if !ok {
		return false
	}
	t, ok := w.local.Pop()
	if !ok {
		t, ok = w.core.trySteal(w)
	}
	if !ok {
		return false
	}
	w.runOne(t, w.core.opts.Hooks, w.core.opts.Stats)
	return true
}

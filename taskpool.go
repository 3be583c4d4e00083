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

// Package taskpool is a work-stealing goroutine pool: Spawn a function,
// get back a Handle you can Join, Abort, or Poll as a future.Future.
//
// A Pool owns a bounded set of workers, each with its own local
// queue, plus a shared injector queue for submissions from outside any
// worker. A worker that runs out of local work steals from the
// injector, then from a peer's local queue, before parking.
package taskpool

import (
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/lindb/common/pkg/logger"

	"github.com/lindb/taskpool/internal/sched"
	"github.com/lindb/taskpool/join"
	"github.com/lindb/taskpool/internal/task"
)

var log = logger.GetLogger("TaskPool", "Pool")

// Hooks are optional callbacks invoked around a worker's lifecycle and
// around each task it runs. Every field may be left nil.
type Hooks struct {
	// Name, if set, overrides the default "<pool-name>-worker-<id>" name
	// used in logs for a given worker id.
	Name func(workerID int) string
	// OnStart runs once, on the worker's own goroutine, before it begins
	// its scheduling loop.
	OnStart func(workerID int)
	// OnStop runs once, on the worker's own goroutine, after its
	// scheduling loop exits (idle timeout or pool shutdown).
	OnStop func(workerID int)
	// OnPark runs just before a worker with no work blocks waiting for
	// more.
	OnPark func(workerID int)
	// OnUnpark runs just after a worker wakes from parking, whether
	// because work arrived or because it is about to self-terminate.
	OnUnpark func(workerID int)
	// BeforeWork and AfterWork bracket each individual task execution.
	BeforeWork func(workerID int)
	AfterWork  func(workerID int)
}

func (h Hooks) toSched() sched.Hooks {
	return sched.Hooks{
		Name:       h.Name,
		OnStart:    h.OnStart,
		OnStop:     h.OnStop,
		OnPark:     h.OnPark,
		OnUnpark:   h.OnUnpark,
		BeforeWork: h.BeforeWork,
		AfterWork:  h.AfterWork,
	}
}

// Builder configures a Pool before it is built. The zero Builder is
// usable: it picks runtime.NumCPU() workers, a 15s idle timeout, and
// does not launch any worker until the first task is spawned.
type Builder struct {
	name        string
	maxWorkers  int
	stackSize   int // accepted for API parity; goroutine stacks auto-grow
	idleTimeout time.Duration
	launchEager bool
	hooks       Hooks
	stats       sched.Stats
}

// NewBuilder creates a Builder with name used in logs and metrics.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// WithMaxWorkers caps the number of concurrently running workers.
// Defaults to runtime.NumCPU().
func (b *Builder) WithMaxWorkers(n int) *Builder {
	b.maxWorkers = n
	return b
}

// WithStackSize is accepted for parity with the original design, where it
// sized each worker OS thread's stack. Goroutine stacks start small and
// grow on demand, so this is a deliberate no-op kept only so ported
// callers compile unchanged.
func (b *Builder) WithStackSize(bytes int) *Builder {
	b.stackSize = bytes
	return b
}

// WithIdleTimeout sets how long an idle worker waits for new work before
// terminating. Defaults to 15s.
func (b *Builder) WithIdleTimeout(d time.Duration) *Builder {
	b.idleTimeout = d
	return b
}

// WithLaunchOnBuild makes Build start every worker immediately instead of
// lazily on first Spawn.
func (b *Builder) WithLaunchOnBuild(v bool) *Builder {
	b.launchEager = v
	return b
}

// WithHooks configures the pool's lifecycle hooks via a closure, so
// callers can set only the ones they need:
//
//	taskpool.NewBuilder("io").WithHooks(func(h *taskpool.Hooks) {
//	    h.OnStart = func(id int) { ... }
//	})
func (b *Builder) WithHooks(configure func(*Hooks)) *Builder {
	configure(&b.hooks)
	return b
}

// WithStats wires a sched.Stats implementation (see the metrics package)
// to receive scheduling events. Defaults to a no-op collector.
func (b *Builder) WithStats(stats sched.Stats) *Builder {
	b.stats = stats
	return b
}

// Build constructs the Pool. Workers are not started until either the
// first task is spawned or, if WithLaunchOnBuild(true) was set, right
// now.
func (b *Builder) Build() *Pool {
	maxWorkers := b.maxWorkers
	if maxWorkers < 1 {
		maxWorkers = runtime.NumCPU()
	}

	core := sched.NewCore(sched.Options{
		Name:        b.name,
		MaxWorkers:  maxWorkers,
		IdleTimeout: b.idleTimeout,
		Hooks:       b.hooks.toSched(),
		Stats:       b.stats,
	})

	p := &Pool{
		id:   uuid.NewString(),
		name: b.name,
		core: core,
	}
	core.SetOwner(p)

	if b.launchEager {
		core.EnsureWorkers(maxWorkers)
	}

	log.Info("pool built", logger.String("name", b.name), logger.String("id", p.id),
		logger.Int("maxWorkers", maxWorkers))
	return p
}

// Pool is a running work-stealing goroutine pool.
type Pool struct {
	id   string
	name string
	core *sched.Core
}

// ID is the pool's generated unique instance identifier, useful to
// disambiguate pools of the same name in logs and metrics.
func (p *Pool) ID() string { return p.id }

// Name returns the pool's configured name.
func (p *Pool) Name() string { return p.name }

// Workers reports how many workers currently exist. It fluctuates as
// workers are created on demand and retire after IdleTimeout.
func (p *Pool) Workers() int { return p.core.Len() }

// Shutdown stops accepting new work and waits for every worker to exit.
// Tasks still queued when Shutdown is called are released, not run, and
// their handles observe IsAborted()==false, IsFinished()==false forever
// (the same behavior as dropping an un-run task in the original design).
func (p *Pool) Shutdown() {
	p.core.Shutdown()
}

// SpawnOn spawns fn on p, returning a handle to its eventual result. If
// the calling goroutine is itself a worker of p, fn is pushed onto that
// worker's own local queue instead of the shared injector (the
// nested-submit fast path).
func SpawnOn[R any](p *Pool, fn func() R) *join.Handle[R] {
	tk := task.New(fn)
	erased := tk.Erase()
	handle := join.New(tk)

	var owner *sched.Worker
	if w, ok := sched.CurrentWorker(); ok && w.Core() == p.core {
		owner = w
	}

	if err := p.core.Spawn(erased, owner); err != nil {
		log.Warn("spawn rejected, pool stopped", logger.String("pool", p.name))
	}
	return handle
}

// Current returns the Pool the calling goroutine is currently running a
// task on, or nil if it isn't running inside any pool.
func Current() *Pool {
	p, _ := TryCurrent()
	return p
}

// TryCurrent is Current with an explicit ok flag.
func TryCurrent() (*Pool, bool) {
	w, ok := sched.CurrentWorker()
	if !ok {
		return nil, false
	}
	owner, ok := w.Core().Owner().(*Pool)
	return owner, ok
}

// Spawn spawns fn on the pool the calling goroutine is currently running
// on. It panics if called from outside any pool's worker; use SpawnOn
// from arbitrary goroutines instead.
func Spawn[R any](fn func() R) *join.Handle[R] {
	p, ok := TryCurrent()
	if !ok {
		panic("taskpool: Spawn called from outside any pool worker; use SpawnOn")
	}
	return SpawnOn(p, fn)
}

// RunOne lets a task body that wants to yield give a sibling task a
// chance to run, without blocking on a channel or a timer. It is a no-op
// if the calling goroutine isn't a pool worker.
func RunOne() bool {
	return sched.RunOne()
}

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

// Package sched implements the work-stealing pool core: a shared
// injector queue, a registry of workers each with its own local queue,
// and the park/unpark protocol that lets idle workers sleep instead of
// spinning. It mirrors the Worker/Pool split of internal/concurrent.Pool
// generalized with per-worker local queues and stealing.
package sched

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/lindb/common/pkg/logger"

	"github.com/lindb/taskpool/internal/deque"
	"github.com/lindb/taskpool/internal/task"
)

// ErrStopped is returned by Spawn once the Core has been told to stop.
var ErrStopped = errors.New("sched: pool is stopped")

// stealAttempts bounds how many peers a parked worker tries before
// giving up and parking; the original design retries a bounded number
// of times rather than scanning every worker on every empty poll.
const stealAttempts = 8

// Options configures a Core at construction time.
type Options struct {
	Name        string
	MaxWorkers  int
	IdleTimeout time.Duration
	Hooks       Hooks
	Stats       Stats
}

// Core is the pool's shared scheduling state: the injector queue, the
// worker registry, and the counters/condvar used to park and wake idle
// workers. It has no notion of typed tasks or join handles; those live in
// the join and root taskpool packages, layered on top of task.Erased.
type Core struct {
	opts Options
	log  logger.Logger

	mu      sync.Mutex
	cv      *Cv
	workers []*Worker
	stopped bool

	idMu    sync.Mutex
	usedIDs map[int]struct{}

	injector deque.Injector

	idle    atomic.Int64
	working atomic.Int64

	wg sync.WaitGroup

	owner any
}

// SetOwner stashes the root-package Pool value that wraps this Core, so
// CurrentWorker callers can recover it without sched importing the root
// package (which imports sched).
func (c *Core) SetOwner(owner any) { c.owner = owner }

// Owner returns whatever was passed to SetOwner, or nil.
func (c *Core) Owner() any { return c.owner }

// NewCore creates a Core with no workers running yet; callers that want
// workers launched immediately call EnsureWorkers after construction.
func NewCore(opts Options) *Core {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 15 * time.Second
	}
	if opts.Stats == nil {
		opts.Stats = NoopStats{}
	}
	c := &Core{
		opts:    opts,
		log:     logger.GetLogger("Sched", opts.Name),
		usedIDs: make(map[int]struct{}, opts.MaxWorkers),
	}
	c.cv = NewCv(&c.mu)
	return c
}

// EnsureWorkers launches workers up to MaxWorkers that are not already
// running. Called eagerly by a LaunchOnBuild builder, and lazily by
// Spawn when the injector has work but every existing worker is busy.
func (c *Core) EnsureWorkers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureWorkersLocked(n)
}

func (c *Core) ensureWorkersLocked(n int) {
	if c.stopped {
		return
	}
	for len(c.workers) < n && len(c.workers) < c.opts.MaxWorkers {
		c.startWorkerLocked()
	}
}

func (c *Core) startWorkerLocked() *Worker {
	id := c.allocID()
	name := c.opts.Hooks.name(id)
	w := newWorker(c, id, name)
	c.workers = append(c.workers, w)
	c.wg.Add(1)
	go w.run()
	return w
}

// allocID samples uniformly from [0, MaxWorkers) until it finds an id not
// currently held by a live worker, guarding the used-id set with its own
// mutex rather than the registry lock startWorkerLocked is called under.
func (c *Core) allocID() int {
	c.idMu.Lock()
	defer c.idMu.Unlock()
	for {
		id := rand.Intn(c.opts.MaxWorkers) //nolint:gosec // id sampling, not a security boundary
		if _, taken := c.usedIDs[id]; !taken {
			c.usedIDs[id] = struct{}{}
			return id
		}
	}
}

// freeID releases id back to the used-id set once its worker has exited.
func (c *Core) freeID(id int) {
	c.idMu.Lock()
	delete(c.usedIDs, id)
	c.idMu.Unlock()
}

// Spawn hands t to the scheduler. If owner is non-nil and belongs to this
// Core, t is pushed to the owner's own local queue (the nested-submit
// fast path); otherwise it goes to the injector and an idle worker, if
// any, is woken.
func (c *Core) Spawn(t task.Erased, owner *Worker) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		c.opts.Stats.TaskRejected()
		task.Release(t)
		return ErrStopped
	}

	if owner != nil && owner.core == c {
		owner.local.Push(t)
		c.cv.NotifyOne()
		c.mu.Unlock()
		c.opts.Stats.TaskSubmitted()
		return nil
	}

	c.injector.Push(t)
	if c.idle.Load() == 0 {
		// every existing worker is busy; grow the pool instead of leaving
		// the task to wait behind running work.
		c.ensureWorkersLocked(len(c.workers) + 1)
	}
	c.cv.NotifyOne()
	c.mu.Unlock()
	c.opts.Stats.TaskSubmitted()
	return nil
}

// trySteal takes the oldest task from the injector if there is one;
// otherwise it tries other workers' local queues once each, starting from
// a randomly chosen peer, for at most stealAttempts peers.
func (c *Core) trySteal(self *Worker) (task.Erased, bool) {
	if t, ok := c.injector.Steal(); ok {
		c.opts.Stats.TaskStolen()
		return t, ok
	}

	c.mu.Lock()
	peers := make([]*Worker, 0, len(c.workers))
	for _, w := range c.workers {
		if w != self {
			peers = append(peers, w)
		}
	}
	c.mu.Unlock()

	if len(peers) == 0 {
		return nil, false
	}

	attempts := stealAttempts
	if attempts > len(peers) {
		attempts = len(peers)
	}
	start := rand.Intn(len(peers)) //nolint:gosec // scheduling jitter, not a security boundary
	for i := 0; i < attempts; i++ {
		peer := peers[(start+i)%len(peers)]
		if t, ok := peer.local.Steal(); ok {
			c.opts.Stats.TaskStolen()
			return t, true
		}
	}
	return nil, false
}

// park blocks the calling worker until new work might be available or
// the idle timeout elapses, returning false if it should exit instead.
func (c *Core) park(idleTimeout time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return false
	}
	c.idle.Inc()
	defer c.idle.Dec()
	return c.cv.WaitTimeout(idleTimeout)
}

// removeWorker drops w from the registry once its goroutine exits and
// returns its id to the used-id set so a future worker can reuse it.
func (c *Core) removeWorker(w *Worker) {
	c.mu.Lock()
	for i, existing := range c.workers {
		if existing == w {
			c.workers = append(c.workers[:i], c.workers[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	c.freeID(w.id)
	c.wg.Done()
}

// Shutdown stops accepting new work, wakes every parked worker so it can
// observe the stop flag, and waits for all worker goroutines to exit. Any
// tasks still queued (injector or local) are released, not run.
func (c *Core) Shutdown() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	workers := append([]*Worker(nil), c.workers...)
	c.cv.NotifyAll()
	c.mu.Unlock()

	for _, w := range workers {
		close(w.stopCh)
	}
	c.wg.Wait()

	c.injector.Drain()
	c.log.Info("pool stopped")
}

// Len reports how many workers are currently registered.
func (c *Core) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.workers)
}

// Idle reports how many workers are currently parked.
func (c *Core) Idle() int64 {
	return c.idle.Load()
}

// Working reports how many workers are currently running a task.
func (c *Core) Working() int64 {
	return c.working.Load()
}

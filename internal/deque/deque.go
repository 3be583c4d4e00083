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

// Package deque implements the per-worker local queue and the pool-wide
// injector queue, both over github.com/gammazero/deque. The original
// design uses a lock-free work-stealing deque (crossbeam-deque); no
// equivalent lock-free structure appears anywhere in the retrieved
// example corpus, so this package gets the same push/pop/steal contract
// with a plain mutex guarding a ring-buffer deque instead.
package deque

import (
	"sync"

	"github.com/gammazero/deque"

	"github.com/lindb/taskpool/internal/task"
)

// Local is a worker's own double-ended queue: the owner pushes at the back
// and pops from the front (FIFO, matching the original's Worker::new_fifo),
// and any other worker steals from the same front end.
type Local struct {
	mu sync.Mutex
	dq deque.Deque[task.Erased]
}

// Push adds t to the back of the queue. Only the owning worker calls this.
func (l *Local) Push(t task.Erased) {
	l.mu.Lock()
	l.dq.PushBack(t)
	l.mu.Unlock()
}

// Pop removes and returns the oldest task in the queue, if any. Only the
// owning worker calls this.
func (l *Local) Pop() (task.Erased, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dq.Len() == 0 {
		return nil, false
	}
	return l.dq.PopFront(), true
}

// Steal removes and returns the oldest task in the queue, if any, for a
// worker other than the owner.
func (l *Local) Steal() (task.Erased, bool) {
	return l.Pop()
}

// Len reports the number of tasks currently queued.
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dq.Len()
}

// Drain removes every queued task, releasing each one (see
// task.Release), for use when a worker exits without having run its
// remaining local work (shutdown).
func (l *Local) Drain() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.dq.Len() > 0 {
		task.Release(l.dq.PopFront())
	}
}

// Injector is the pool-wide FIFO queue that out-of-worker submissions and
// overflow from sched.Core.Spawn land in.
type Injector struct {
	mu sync.Mutex
	dq deque.Deque[task.Erased]
}

// Push adds t to the back of the injector.
func (i *Injector) Push(t task.Erased) {
	i.mu.Lock()
	i.dq.PushBack(t)
	i.mu.Unlock()
}

// Steal removes and returns the oldest task in the injector, if any.
func (i *Injector) Steal() (task.Erased, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.dq.Len() == 0 {
		return nil, false
	}
	return i.dq.PopFront(), true
}

// Len reports the number of tasks currently queued.
func (i *Injector) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.dq.Len()
}

// Drain releases every queued task without running it.
func (i *Injector) Drain() {
	i.mu.Lock()
	defer i.mu.Unlock()
	for i.dq.Len() > 0 {
		task.Release(i.dq.PopFront())
	}
}

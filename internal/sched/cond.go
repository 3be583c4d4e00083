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
	"sync"
	"time"
)

// Cv is a condition variable that, unlike sync.Cond, can wait with a
// timeout: a worker parks on it while idle and wakes either because new
// work arrived or because its idle timeout elapsed. It guards against the
// original's parking_lot Condvar::wait_for, for which the standard
// library has no direct equivalent.
type Cv struct {
	mu *sync.Mutex

	genMu sync.Mutex
	gen   chan struct{}
}

// NewCv creates a Cv whose Wait methods are called with mu held.
func NewCv(mu *sync.Mutex) *Cv {
	return &Cv{mu: mu, gen: make(chan struct{})}
}

// WaitTimeout releases mu, blocks until notified or until d elapses,
// then reacquires mu before returning. It reports whether it was
// notified (false means it timed out).
func (c *Cv) WaitTimeout(d time.Duration) bool {
	c.genMu.Lock()
	gen := c.gen
	c.genMu.Unlock()

	c.mu.Unlock()
	defer c.mu.Lock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-gen:
		return true
	case <-timer.C:
		return false
	}
}

// WaitNoTimeout releases mu and blocks until notified, then reacquires mu.
func (c *Cv) WaitNoTimeout() {
	c.genMu.Lock()
	gen := c.gen
	c.genMu.Unlock()

	c.mu.Unlock()
	defer c.mu.Lock()
	<-gen
}

// NotifyAll wakes every waiter currently parked on c.
func (c *Cv) NotifyAll() {
	c.genMu.Lock()
	close(c.gen)
	c.gen = make(chan struct{})
	c.genMu.Unlock()
}

// NotifyOne wakes at least one waiter parked on c. A buffered-channel
// single wakeup would need a waiter-count handshake this scheduler has no
// other use for, so NotifyOne is implemented as NotifyAll: extra wakeups
// just make a worker re-check its queues and, finding nothing, park again.
func (c *Cv) NotifyOne() {
	c.NotifyAll()
}

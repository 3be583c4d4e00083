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

// Package wake implements the single-slot rendezvous ("parker") that a task
// header uses to notify whichever consumer is currently waiting on it: a
// blocked goroutine or a future.Waker.
package wake

import "github.com/lindb/taskpool/future"

// Parker is a tagged value that is one of: empty, a channel a blocked
// goroutine is receiving from, or a future.Waker. It is not safe for
// concurrent use; callers serialize access with a mutex (see
// internal/task.header).
type Parker struct {
	ch    chan struct{}
	waker future.Waker
}

// SetChannel installs ch as the parker's target. Closing or sending on ch
// wakes the blocked goroutine on the other end.
func (p *Parker) SetChannel(ch chan struct{}) {
	p.ch = ch
	p.waker = nil
}

// SetWaker installs waker as the parker's target.
func (p *Parker) SetWaker(waker future.Waker) {
	p.waker = waker
	p.ch = nil
}

// Take resets the parker to empty and returns its previous value.
func (p *Parker) Take() Parker {
	taken := *p
	p.ch = nil
	p.waker = nil
	return taken
}

// Wake notifies whatever was installed, if anything. It consumes p: calling
// Wake on a Parker obtained from Take is the only supported use.
func (p Parker) Wake() {
	switch {
	case p.ch != nil:
		select {
		case p.ch <- struct{}{}:
		default:
		}
	case p.waker != nil:
		// Errors from a caller-supplied Waker are not actionable here; the
		// caller that installed the waker is responsible for surfacing its
		// own failures.
		_ = p.waker.Wake()
	}
}

// Empty reports whether the parker currently holds neither a channel nor a
// waker.
func (p Parker) Empty() bool {
	return p.ch == nil && p.waker == nil
}

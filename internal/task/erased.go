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

package task

import (
	"time"

	"github.com/lindb/taskpool/internal/state"
)

// Erased is the type-erased view of a task that the scheduler's queues
// store. It is Go's stand-in for the original design's (header pointer,
// static vtable) pair: the interface's method set is the vtable, and any
// *Task[R] satisfies it regardless of R.
type Erased interface {
	// Run executes the task (or, if aborted before starting, finalizes it
	// without running).
	Run()
	// Abort marks the task as cancelled.
	Abort()
	// TryRelease drops the task's remaining slot contents if neither the
	// scheduler nor a join handle still needs them, reporting whether it
	// did so.
	TryRelease() bool
	// State exposes the task's state word, e.g. so the scheduler can log
	// a snapshot without needing the concrete type.
	State() *state.State
	// CreatedAt reports when the task was constructed, for wait-time
	// metrics.
	CreatedAt() time.Time
}

// Header is the type-erased view of a task's header that a join.Handle
// holds on to in order to install itself into the parker.
type Header interface {
	State() *state.State
	Lock()
	Unlock()
	SetChannelLocked(ch chan struct{})
	SetWakerLocked(w interface{ Wake() error })
}

// Release clears ExecutorAlive on an erased task and attempts to release
// its remaining slot contents. It is the erased-reference equivalent of
// the original design's TypeErasedTask Drop impl: every queue that removes
// a task without running it (e.g. draining the injector on shutdown) must
// call Release exactly once.
func Release(t Erased) {
	t.State().Set(state.ExecutorAlive, false)
	t.TryRelease()
}

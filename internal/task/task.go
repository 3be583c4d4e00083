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

// Package task implements the task allocation: a header (state + parker)
// plus a single storage slot that holds either the pending computation or
// its result, never both at once.
package task

import (
	"fmt"
	"sync"
	"time"

	"github.com/lindb/common/pkg/logger"

	"github.com/lindb/taskpool/internal/state"
	"github.com/lindb/taskpool/internal/wake"
)

var log = logger.GetLogger("Task", "Task")

// Result is the outcome of a task: either the computed value, or a
// captured panic payload, or an aborted marker (see the Open Question
// resolution for Abort in SPEC_FULL.md §4.1).
type Result[R any] struct {
	Value   R
	Panic   any
	Aborted bool
}

// Failed reports whether the task ended in a captured panic.
func (r Result[R]) Failed() bool {
	return r.Panic != nil
}

// header is the part of a task shared regardless of its type parameters;
// it is what the scheduler's erased interface ultimately reaches.
type header struct {
	st         state.State
	createTime time.Time
	parkerMu   sync.Mutex
	parker     wake.Parker
}

func (h *header) wake() {
	h.parkerMu.Lock()
	taken := h.parker.Take()
	h.parkerMu.Unlock()
	taken.Wake()
}

// Lock and Unlock guard the header's parker, for join.Handle.
func (h *header) Lock()   { h.parkerMu.Lock() }
func (h *header) Unlock() { h.parkerMu.Unlock() }

// SetChannelLocked and SetWakerLocked install a channel or a waker as the
// parker's target. Callers must hold the lock obtained via Lock.
func (h *header) SetChannelLocked(ch chan struct{}) { h.parker.SetChannel(ch) }
func (h *header) SetWakerLocked(w interface{ Wake() error }) {
	h.parker.SetWaker(w)
}

// State exposes the header's state word.
func (h *header) State() *state.State { return &h.st }

// CreatedAt reports when the task was constructed, used to measure how
// long it waited in a queue before a worker ran it.
func (h *header) CreatedAt() time.Time { return h.createTime }

// Task is one heap allocation holding a computation's input (a runnable
// closure) and its eventual output, mutually exclusive in lifetime.
type Task[R any] struct {
	header
	runnable func() R
	output   Result[R]
}

// New creates a Task wrapping runnable. The returned Task's ExecutorAlive
// bit is not yet set; callers erase it (see Erase) once it is handed to the
// scheduler.
func New[R any](runnable func() R) *Task[R] {
	t := &Task[R]{runnable: runnable}
	t.createTime = time.Now()
	return t
}

// Erase marks the task as held by the executor and returns it through the
// erased interface the scheduler's queues store.
func (t *Task[R]) Erase() Erased {
	t.st.Set(state.ExecutorAlive, true)
	return t
}

// Header exposes the shared header, for join.Handle.
func (t *Task[R]) Header() Header {
	return &t.header
}

// Run executes the task: consumes the runnable, captures any panic into
// the output's Panic field, and wakes whoever is parked on it.
//
// Preconditions mirror the original vtable entry: Running and Finished
// must both be clear. If Aborted is observed before the task starts, Run
// synthesizes an aborted Result instead of invoking the computation.
func (t *Task[R]) Run() {
	if !t.st.TryTransition(state.Running|state.Finished|state.Aborted, 0, state.Running) {
		if t.st.Get(state.Aborted) && !t.st.Get(state.Finished) {
			t.finishAborted()
		}
		return
	}

	runnable := t.runnable
	t.runnable = nil

	result := t.invoke(runnable)

	t.output = result
	t.st.Set(state.Running, false)
	t.st.Set(state.Finished, true)
	t.st.Set(state.OutputReady, true)
	t.wake()
}

func (t *Task[R]) invoke(runnable func() R) (result Result[R]) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while running task", logger.String("panic", fmt.Sprint(r)), logger.Stack())
			t.st.Set(state.Panicked, true)
			result = Result[R]{Panic: r}
		}
	}()
	return Result[R]{Value: runnable()}
}

// finishAborted transitions a not-yet-started, aborted task straight to a
// terminal state without ever invoking the computation.
func (t *Task[R]) finishAborted() {
	if !t.st.TryTransition(state.Finished, 0, state.Finished|state.OutputReady) {
		return
	}
	t.runnable = nil
	t.output = Result[R]{Aborted: true}
	t.wake()
}

// Abort marks the task as cancelled. If it hasn't started running, it is
// finished immediately with an aborted Result; if it is already running,
// execution continues to completion (abort only prevents starting).
func (t *Task[R]) Abort() {
	t.st.Set(state.Aborted, true)
	if !t.st.Get(state.Running) && !t.st.Get(state.Finished) {
		t.finishAborted()
	}
}

// TryRelease drops the task's remaining references if neither the
// scheduler nor a join.Handle still holds it, returning whether it did so.
func (t *Task[R]) TryRelease() bool {
	if t.st.Get(state.ExecutorAlive) || t.st.Get(state.HandleAlive) {
		return false
	}

	if !t.st.Get(state.Finished) {
		t.runnable = nil
	}
	if t.st.Get(state.OutputReady) && !t.st.Get(state.OutputTaken) {
		var zero Result[R]
		t.output = zero
	}
	return true
}

// TakeOutput moves the output out of the task, if it is ready and hasn't
// already been taken.
func (t *Task[R]) TakeOutput() (Result[R], bool) {
	if !t.st.Get(state.OutputReady) || t.st.Get(state.OutputTaken) {
		return Result[R]{}, false
	}
	t.st.Set(state.OutputTaken, true)
	out := t.output
	var zero Result[R]
	t.output = zero
	return out, true
}

// String implements fmt.Stringer, mostly useful in log lines and tests.
func (t *Task[R]) String() string {
	return fmt.Sprintf("Task{state=%b}", t.st.Snapshot())
}

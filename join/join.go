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

// Package join implements the handle a caller keeps after spawning a
// task: a blocking Join, an Abort, and a future.Future-compatible Poll
// for callers that would rather not block a goroutine waiting.
package join

import (
	"errors"
	"fmt"

	"github.com/lindb/taskpool/future"
	"github.com/lindb/taskpool/internal/state"
	"github.com/lindb/taskpool/internal/task"
)

// ErrAborted is returned by Poll once the task finished because it was
// aborted before it started running.
var ErrAborted = errors.New("join: task was aborted")

// Handle is the caller-facing side of a spawned task. Unlike the
// original design's raw pointer held behind an unsafe cast, Handle holds
// the concrete *task.Task[R] directly: Go's generics keep the static type
// available at every call site that creates one, so there is no separate
// type-erased "take_output" vtable entry to dispatch through.
type Handle[R any] struct {
	t *task.Task[R]
}

// New wraps t, marking it as having a live handle. Called once, right
// after the task has been created and before it is handed to the scheduler.
func New[R any](t *task.Task[R]) *Handle[R] {
	t.Header().State().Set(state.HandleAlive, true)
	return &Handle[R]{t: t}
}

// Join blocks until the task finishes (successfully, with a captured
// panic, or aborted) and returns its result.
func (h *Handle[R]) Join() task.Result[R] {
	hdr := h.t.Header()
	hdr.Lock()
	if hdr.State().Get(state.Finished) {
		hdr.Unlock()
	} else {
		ch := make(chan struct{}, 1)
		hdr.SetChannelLocked(ch)
		hdr.Unlock()
		<-ch
	}

	out, ok := h.t.TakeOutput()
	if !ok {
		// A previous Join/Poll already consumed the output; return the
		// zero Result rather than blocking a second caller forever.
		return task.Result[R]{}
	}
	return out
}

// Abort cancels the task. If it hasn't started running it is finished
// immediately with an aborted result; if it's already running, it runs
// to completion (abort only prevents a not-yet-started task from
// starting).
func (h *Handle[R]) Abort() {
	h.t.Abort()
}

// IsAborted reports whether the task was aborted.
func (h *Handle[R]) IsAborted() bool {
	return h.t.Header().State().Get(state.Aborted)
}

// IsFinished reports whether the task has finished, successfully,
// panicked, or aborted.
func (h *Handle[R]) IsFinished() bool {
	return h.t.Header().State().Get(state.Finished)
}

// Detach drops the handle's reference without waiting for the task,
// letting the scheduler release the task's storage once it finishes.
func (h *Handle[R]) Detach() {
	h.t.Header().State().Set(state.HandleAlive, false)
	h.t.TryRelease()
}

// Poll implements future.Future: it reports PollResultPending and
// installs waker if the task hasn't finished yet, or its final result
// (boxed as future.PollResult) once it has.
func (h *Handle[R]) Poll(waker future.Waker) (future.PollResult, error) {
	hdr := h.t.Header()
	hdr.Lock()
	if !hdr.State().Get(state.Finished) {
		hdr.SetWakerLocked(waker)
		hdr.Unlock()
		return future.PollResultPending, nil
	}
	hdr.Unlock()

	out, ok := h.t.TakeOutput()
	if !ok {
		return nil, errors.New("join: output already taken")
	}
	if out.Aborted {
		return nil, ErrAborted
	}
	if out.Failed() {
		return nil, fmt.Errorf("join: task panicked: %v", out.Panic)
	}
	return out.Value, nil
}

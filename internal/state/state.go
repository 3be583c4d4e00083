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

// Package state implements the atomic bit-flag word that tracks a task's
// lifecycle, shared between a task's producer (the worker running it) and
// its consumers (a join.Handle, the scheduler's queues).
package state

import "go.uber.org/atomic"

// Bits is the set of flags tracked by a task's State. A task's State is a
// bitwise-OR of zero or more Bits.
type Bits uint32

const (
	// Running is set while the task's computation is executing.
	Running Bits = 1 << iota
	// Finished is set once the task has produced a terminal outcome, either
	// by running to completion (including a captured panic) or by being
	// aborted before it ever ran.
	Finished
	// Aborted is set when a caller has requested cancellation. It is
	// advisory: a task already Running finishes normally regardless.
	Aborted
	// ExecutorAlive is set while the scheduler (a queue, or an in-flight
	// worker frame) holds an erased reference to the task.
	ExecutorAlive
	// HandleAlive is set while a join.Handle for the task exists.
	HandleAlive
	// OutputReady is set once the output slot has been populated.
	OutputReady
	// OutputTaken is set once the output slot has been moved out by a
	// consumer. Implies OutputReady.
	OutputTaken
	// Panicked is set if the task's computation panicked; Finished and
	// OutputReady are still set alongside it.
	Panicked
)

// State is an atomic set of Bits. The zero value is a State with no bits
// set, ready to use.
type State struct {
	bits atomic.Uint32
}

// Get reports whether every bit in want is currently set.
func (s *State) Get(want Bits) bool {
	return Bits(s.bits.Load())&want == want
}

// Snapshot returns every bit currently set, for callers that need to
// inspect several flags without racing against interleaved sets.
func (s *State) Snapshot() Bits {
	return Bits(s.bits.Load())
}

// Set sets or clears every bit in item depending on value.
func (s *State) Set(item Bits, value bool) {
	for {
		old := s.bits.Load()
		var next uint32
		if value {
			next = old | uint32(item)
		} else {
			next = old &^ uint32(item)
		}
		if next == old || s.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// TryTransition atomically checks that the bits of mask currently set are
// exactly the bits of from (cur&mask == from, so bits of mask outside from
// must be clear) and, if so, clears every bit of mask and then sets every
// bit of to; bits outside mask and to are left as they were. It reports
// whether the transition happened. It's used to resolve races between a
// task starting to run and a concurrent abort.
func (s *State) TryTransition(mask, from, to Bits) bool {
	for {
		old := s.bits.Load()
		if Bits(old)&mask != from {
			return false
		}
		next := (old &^ uint32(mask)) | uint32(to)
		if s.bits.CompareAndSwap(old, next) {
			return true
		}
	}
}

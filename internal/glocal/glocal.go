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

// Package glocal stands in for the thread-local storage the original
// design keys "current worker" and "current pool" lookups on. Go has no
// goroutine-local storage primitive, so this package keys a small map on
// the calling goroutine's numeric id, parsed from the runtime's own stack
// trace header — the standard pragmatic technique used when a true TLS
// primitive isn't available. No goroutine-local-storage library appears in
// the example corpus this was built from, so this one piece is built
// directly on the standard library.
package glocal

import (
	"runtime"
	"strconv"
	"sync"
)

// Slot is a goroutine-keyed value slot. The zero value is ready to use.
type Slot struct {
	mu     sync.RWMutex
	values map[uint64]any
}

// Set stores value for the calling goroutine.
func (s *Slot) Set(value any) {
	id := goroutineID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[uint64]any)
	}
	s.values[id] = value
}

// Clear removes any value stored for the calling goroutine.
func (s *Slot) Clear() {
	id := goroutineID()
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, id)
}

// Get returns the value stored for the calling goroutine, if any.
func (s *Slot) Get() (any, bool) {
	id := goroutineID()
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[id]
	return v, ok
}

// goroutineID extracts the numeric id the runtime assigns the calling
// goroutine from the header line of its own stack trace
// ("goroutine 123 [running]:"). It is only ever used as a map key, never
// exposed or relied upon for scheduling decisions.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	line := buf[:n]

	const prefix = "goroutine "
	if len(line) <= len(prefix) {
		return 0
	}
	line = line[len(prefix):]

	i := 0
	for i < len(line) && line[i] != ' ' {
		i++
	}
	id, _ := strconv.ParseUint(string(line[:i]), 10, 64)
	return id
}

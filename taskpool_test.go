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

package taskpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lindb/taskpool/join"
)

func TestCreateAndShutdownWithoutLaunch(t *testing.T) {
	p := NewBuilder("create-shutdown").
		WithMaxWorkers(2).
		WithLaunchOnBuild(false).
		Build()

	assert.Equal(t, 0, p.Workers())

	done := make(chan struct{})
	go func() {
		p.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shutdown of a never-launched pool should return promptly")
	}
}

func TestPreLaunchedIdleDrain(t *testing.T) {
	p := NewBuilder("pre-launched").
		WithMaxWorkers(2).
		WithLaunchOnBuild(true).
		WithIdleTimeout(time.Minute).
		Build()

	assert.Equal(t, 2, p.Workers())
	p.Shutdown()
	assert.Equal(t, 0, p.Workers())
}

func TestTwoTasksRunInParallelOnTwoWorkers(t *testing.T) {
	p := NewBuilder("parallel").WithMaxWorkers(2).Build()
	defer p.Shutdown()

	start := time.Now()
	hA := SpawnOn(p, func() int {
		time.Sleep(80 * time.Millisecond)
		return 5
	})
	hB := SpawnOn(p, func() int {
		time.Sleep(40 * time.Millisecond)
		return 2
	})

	assert.Equal(t, 2, hB.Join().Value)
	assert.Equal(t, 5, hA.Join().Value)
	assert.Less(t, time.Since(start), 120*time.Millisecond,
		"both tasks should have overlapped, not run back to back")
}

func TestInjectorFanInOnSingleWorker(t *testing.T) {
	p := NewBuilder("fan-in").WithMaxWorkers(1).Build()
	defer p.Shutdown()

	var running int32
	var overlapped bool
	work := func(sleep time.Duration) func() int {
		return func() int {
			if atomic.AddInt32(&running, 1) > 1 {
				overlapped = true
			}
			time.Sleep(sleep)
			atomic.AddInt32(&running, -1)
			return int(sleep.Milliseconds())
		}
	}

	hA := SpawnOn(p, work(60*time.Millisecond))
	hB := SpawnOn(p, work(20*time.Millisecond))

	hA.Join()
	hB.Join()
	assert.False(t, overlapped, "a single worker must never run two tasks at once")
}

func TestNestedSubmitRunsOnCurrentWorkerAfterParentReturns(t *testing.T) {
	p := NewBuilder("nested").WithMaxWorkers(1).Build()
	defer p.Shutdown()

	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	outer := SpawnOn(p, func() *join.Handle[int] {
		record("parent-start")
		inner := Spawn(func() int {
			record("child")
			return 1
		})
		record("parent-end")
		return inner
	})

	assert.Equal(t, 1, outer.Join().Value.Join().Value)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"parent-start", "parent-end", "child"}, order)
}

func TestStealMovesWorkToIdleWorker(t *testing.T) {
	p := NewBuilder("steal").
		WithMaxWorkers(2).
		WithLaunchOnBuild(true).
		Build()
	defer p.Shutdown()

	var subRanOnDifferentGoroutine int32
	outer := SpawnOn(p, func() int {
		sub := Spawn(func() int {
			atomic.AddInt32(&subRanOnDifferentGoroutine, 1)
			return 1
		})
		busyWait(50 * time.Millisecond)
		return sub.Join().Value
	})

	assert.Equal(t, 1, outer.Join().Value)
	assert.Equal(t, int32(1), atomic.LoadInt32(&subRanOnDifferentGoroutine))
}

func busyWait(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

func TestIdleTimeoutRetiresWorkersWithoutShutdown(t *testing.T) {
	p := NewBuilder("idle-timeout").
		WithMaxWorkers(2).
		WithIdleTimeout(30 * time.Millisecond).
		Build()

	h := SpawnOn(p, func() int { return 42 })
	assert.Equal(t, 42, h.Join().Value)

	assert.Eventually(t, func() bool {
		return p.Workers() == 0
	}, time.Second, 5*time.Millisecond, "workers should self-terminate after sitting idle")
}

func TestPanicIsCapturedAndPoolKeepsAcceptingWork(t *testing.T) {
	p := NewBuilder("panic-capture").WithMaxWorkers(1).Build()
	defer p.Shutdown()

	h := SpawnOn(p, func() int { panic("boom") })
	result := h.Join()
	assert.True(t, result.Failed())
	assert.Equal(t, "boom", result.Panic)

	follow := SpawnOn(p, func() int { return 7 })
	assert.Equal(t, 7, follow.Join().Value)
}

func TestCurrentAndTryCurrentOutsideAnyPool(t *testing.T) {
	assert.Nil(t, Current())
	_, ok := TryCurrent()
	assert.False(t, ok)
}

func TestSpawnPanicsOutsideAnyPoolWorker(t *testing.T) {
	assert.Panics(t, func() {
		Spawn(func() int { return 1 })
	})
}

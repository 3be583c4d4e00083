package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateSetGet(t *testing.T) {
	var s State
	assert.False(t, s.Get(Running))
	s.Set(Running, true)
	assert.True(t, s.Get(Running))
	s.Set(Running, false)
	assert.False(t, s.Get(Running))
}

func TestStateSnapshotIsBitwise(t *testing.T) {
	var s State
	s.Set(Running, true)
	s.Set(Finished, true)
	snap := s.Snapshot()
	assert.True(t, snap&Running != 0)
	assert.True(t, snap&Finished != 0)
	assert.True(t, snap&Aborted == 0)
}

func TestStateTryTransitionRace(t *testing.T) {
	var s State

	var wg sync.WaitGroup
	wins := make([]bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wins[i] = s.TryTransition(Running|Finished|Aborted, 0, Running)
		}(i)
	}
	wg.Wait()

	count := 0
	for _, w := range wins {
		if w {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one goroutine should win the transition into Running")
	assert.True(t, s.Get(Running))
}

func TestStateTryTransitionRejectsWrongFrom(t *testing.T) {
	var s State
	s.Set(Aborted, true)
	ok := s.TryTransition(Running|Finished|Aborted, 0, Running)
	assert.False(t, ok, "cannot enter Running once Aborted is observed")
}

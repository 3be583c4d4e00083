package glocal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotPerGoroutine(t *testing.T) {
	var s Slot

	_, ok := s.Get()
	assert.False(t, ok)

	var wg sync.WaitGroup
	results := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, before := s.Get()
			s.Set(i)
			v, after := s.Get()
			results <- !before && after && v == i
			s.Clear()
			_, gone := s.Get()
			results <- !gone
		}(i)
	}
	wg.Wait()
	close(results)
	for ok := range results {
		assert.True(t, ok)
	}
}

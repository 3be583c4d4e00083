package sched

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCvWaitTimeoutExpires(t *testing.T) {
	var mu sync.Mutex
	cv := NewCv(&mu)

	mu.Lock()
	start := time.Now()
	woke := cv.WaitTimeout(20 * time.Millisecond)
	mu.Unlock()

	assert.False(t, woke)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestCvNotifyAllWakesWaiter(t *testing.T) {
	var mu sync.Mutex
	cv := NewCv(&mu)
	done := make(chan bool, 1)

	go func() {
		mu.Lock()
		done <- cv.WaitTimeout(time.Second)
		mu.Unlock()
	}()

	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	cv.NotifyAll()
	mu.Unlock()

	select {
	case woke := <-done:
		assert.True(t, woke)
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken")
	}
}

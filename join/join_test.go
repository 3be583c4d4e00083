package join

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lindb/taskpool/future"
	"github.com/lindb/taskpool/internal/state"
	"github.com/lindb/taskpool/internal/task"
)

func TestHandleJoinWaitsForRun(t *testing.T) {
	tk := task.New(func() int {
		time.Sleep(10 * time.Millisecond)
		return 7
	})
	erased := tk.Erase()
	h := New(tk)

	go erased.Run()

	out := h.Join()
	assert.Equal(t, 7, out.Value)
	assert.False(t, out.Failed())
}

func TestHandleJoinAfterAlreadyFinished(t *testing.T) {
	tk := task.New(func() int { return 3 })
	erased := tk.Erase()
	h := New(tk)

	erased.Run()

	out := h.Join()
	assert.Equal(t, 3, out.Value)
}

func TestHandleAbortBeforeRun(t *testing.T) {
	tk := task.New(func() int {
		t.Fatal("must not run")
		return 0
	})
	tk.Erase()
	h := New(tk)

	h.Abort()
	assert.True(t, h.IsAborted())
	assert.True(t, h.IsFinished())

	out := h.Join()
	assert.True(t, out.Aborted)
}

func TestHandlePollPendingThenReady(t *testing.T) {
	tk := task.New(func() int { return 9 })
	erased := tk.Erase()
	h := New(tk)

	var woke sync.WaitGroup
	woke.Add(1)
	waker := future.WakerFunc(func() error {
		woke.Done()
		return nil
	})

	result, err := h.Poll(waker)
	require.NoError(t, err)
	assert.Equal(t, future.PollResultPending, result)

	erased.Run()
	woke.Wait()

	result, err = h.Poll(future.NopWaker)
	require.NoError(t, err)
	assert.Equal(t, 9, result)
}

func TestHandlePollReportsPanic(t *testing.T) {
	tk := task.New(func() int { panic("bad") })
	erased := tk.Erase()
	h := New(tk)

	erased.Run()

	_, err := h.Poll(future.NopWaker)
	assert.Error(t, err)
}

func TestHandleDetachReleasesTask(t *testing.T) {
	tk := task.New(func() int { return 1 })
	erased := tk.Erase()
	h := New(tk)

	h.Detach()
	assert.False(t, erased.TryRelease(), "ExecutorAlive still set, the executor owns release")

	erased.State().Set(state.ExecutorAlive, false)
	assert.True(t, erased.TryRelease())
}

package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lindb/taskpool/internal/state"
)

func TestTaskRunProducesOutput(t *testing.T) {
	tk := New(func() string { return "foo" })
	erased := tk.Erase()
	erased.State().Set(state.HandleAlive, true) // keep alive while we inspect it

	erased.Run()

	out, ok := tk.TakeOutput()
	require.True(t, ok)
	assert.Equal(t, "foo", out.Value)
	assert.False(t, out.Failed())

	assert.True(t, tk.State().Get(state.Finished))
	assert.True(t, tk.State().Get(state.OutputReady))
	assert.True(t, tk.State().Get(state.OutputTaken))
	assert.False(t, tk.State().Get(state.Running))

	_, ok = tk.TakeOutput()
	assert.False(t, ok, "second TakeOutput must report nothing")
}

func TestTaskRunCapturesPanic(t *testing.T) {
	tk := New(func() int {
		panic("boom")
	})
	erased := tk.Erase()
	erased.State().Set(state.HandleAlive, true)

	erased.Run()

	out, ok := tk.TakeOutput()
	require.True(t, ok)
	assert.True(t, out.Failed())
	assert.Equal(t, "boom", out.Panic)
}

func TestTaskAbortBeforeRunSynthesizesOutput(t *testing.T) {
	tk := New(func() int {
		t.Fatal("must not run an aborted task")
		return 0
	})
	erased := tk.Erase()
	erased.State().Set(state.HandleAlive, true)

	erased.Abort()
	assert.True(t, tk.State().Get(state.Aborted))
	assert.True(t, tk.State().Get(state.Finished))

	out, ok := tk.TakeOutput()
	require.True(t, ok)
	assert.True(t, out.Aborted)

	// Running the already-finished, aborted task is a no-op.
	erased.Run()
}

func TestTaskAbortIdempotent(t *testing.T) {
	tk := New(func() int { return 1 })
	erased := tk.Erase()
	erased.State().Set(state.HandleAlive, true)

	erased.Abort()
	erased.Abort()

	out, ok := tk.TakeOutput()
	require.True(t, ok)
	assert.True(t, out.Aborted)
}

func TestTaskTryReleaseRequiresBothFlagsClear(t *testing.T) {
	tk := New(func() int { return 1 })
	erased := tk.Erase() // ExecutorAlive set
	erased.State().Set(state.HandleAlive, true)

	assert.False(t, erased.TryRelease(), "still referenced by both sides")

	erased.State().Set(state.HandleAlive, false)
	assert.False(t, erased.TryRelease(), "ExecutorAlive still set")

	erased.State().Set(state.ExecutorAlive, false)
	assert.True(t, erased.TryRelease())
	assert.True(t, erased.TryRelease(), "TryRelease is safe to call again")
}

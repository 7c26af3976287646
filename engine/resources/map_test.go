package resources

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	core.SetLogOutput(io.Discard)
}

func waitPromise(t *testing.T, p *core.Promise) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return p.Wait(ctx)
}

func TestMapSharesEntriesAndCountsReferences(t *testing.T) {
	var decodes atomic.Int32
	m := NewMap(func(path string) (string, error) {
		decodes.Add(1)
		return "content of " + path, nil
	}, nil)

	p1 := m.Load("a.txt")
	p2 := m.Load("a.txt")
	assert.Same(t, p1, p2)
	require.NoError(t, waitPromise(t, p1))

	v, ok := m.Get("a.txt")
	require.True(t, ok)
	assert.Equal(t, "content of a.txt", v)
	assert.Equal(t, int32(1), decodes.Load())
	assert.Equal(t, 2, m.RefCount("a.txt"))

	assert.True(t, m.Unload("a.txt"))
	assert.True(t, m.Has("a.txt"))
	assert.True(t, m.Unload("a.txt"))
	assert.False(t, m.Has("a.txt"))
	assert.False(t, m.Unload("a.txt"))
}

func TestMapFailedLoadIsForgotten(t *testing.T) {
	boom := errors.New("boom")
	m := NewMap(func(path string) (int, error) {
		return 0, boom
	}, nil)

	err := waitPromise(t, m.Load("x"))
	assert.ErrorIs(t, err, boom)
	_, ok := m.Get("x")
	assert.False(t, ok)
	assert.False(t, m.Has("x"))
}

func TestMapReleaseHookRunsOnLastUnload(t *testing.T) {
	m := NewMap(func(path string) (int, error) { return 7, nil }, nil)
	var released []int
	m.OnRelease(func(_ string, v int) { released = append(released, v) })

	require.NoError(t, waitPromise(t, m.Load("x")))
	m.Load("x")
	m.Unload("x")
	assert.Empty(t, released)
	m.Unload("x")
	assert.Equal(t, []int{7}, released)
}

func TestMapReloadKeepsReferences(t *testing.T) {
	version := atomic.Int32{}
	m := NewMap(func(path string) (int32, error) {
		return version.Add(1), nil
	}, nil)

	require.NoError(t, waitPromise(t, m.Load("x")))
	m.Load("x")
	require.NoError(t, waitPromise(t, m.Reload("x")))

	v, _ := m.Get("x")
	assert.Equal(t, int32(2), v)
	assert.Equal(t, 2, m.RefCount("x"))

	// reloading an unknown path loads it
	require.NoError(t, waitPromise(t, m.Reload("y")))
	assert.True(t, m.Has("y"))
	assert.Equal(t, []string{"x", "y"}, m.Paths())
}

func TestMapRegistersWithSynchronizer(t *testing.T) {
	loads := NewSynchronizer()
	m := NewMap(func(path string) (string, error) { return path, nil }, loads)

	m.Load("a")
	m.Load("b")
	m.Load("a")
	assert.Equal(t, 2, loads.Pending())

	require.NoError(t, loads.WaitOnPromises(context.Background()))
	assert.Equal(t, 0, loads.Pending())
	_, ok := m.Get("b")
	assert.True(t, ok)
}

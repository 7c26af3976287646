package engine

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	core.SetLogOutput(io.Discard)
}

// scheduler holds requested frames until the test fires them.
type scheduler struct {
	next   uint64
	frames map[uint64]func()
}

func newScheduler() *scheduler {
	return &scheduler{frames: make(map[uint64]func())}
}

func (s *scheduler) RequestFrame(fn func()) uint64 {
	s.next++
	s.frames[s.next] = fn
	return s.next
}

func (s *scheduler) CancelFrame(id uint64) {
	delete(s.frames, id)
}

// fire runs the frames requested so far, not the ones they request.
func (s *scheduler) fire() {
	pending := s.frames
	s.frames = make(map[uint64]func())
	for _, fn := range pending {
		fn()
	}
}

type manualTime struct {
	now time.Time
}

func (m *manualTime) source() time.Time { return m.now }

func (m *manualTime) advance(ms float64) {
	m.now = m.now.Add(time.Duration(ms * float64(time.Millisecond)))
}

type waiter struct {
	err   error
	block bool
	// when set, the wait signals entered and holds until release is closed
	entered chan struct{}
	release chan struct{}
}

func (w *waiter) WaitOnPromises(ctx context.Context) error {
	if w.release != nil {
		close(w.entered)
		<-w.release
		return w.err
	}
	if w.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return w.err
}

type sampler struct {
	updates int
}

func (s *sampler) Update() { s.updates++ }

type recordingScene struct {
	calls     []string
	deltas    []float64
	updateErr error
	loadErr   error
	initErr   error
}

func (s *recordingScene) Load() error {
	s.calls = append(s.calls, "load")
	return s.loadErr
}

func (s *recordingScene) Init() error {
	s.calls = append(s.calls, "init")
	return s.initErr
}

func (s *recordingScene) Update(deltaTime float64) error {
	s.calls = append(s.calls, "update")
	s.deltas = append(s.deltas, deltaTime)
	return s.updateErr
}

func (s *recordingScene) Draw() error {
	s.calls = append(s.calls, "draw")
	return nil
}

func (s *recordingScene) Unload() error {
	s.calls = append(s.calls, "unload")
	return nil
}

func (s *recordingScene) count(name string) int {
	n := 0
	for _, c := range s.calls {
		if c == name {
			n++
		}
	}
	return n
}

type loopFixture struct {
	loop      *Loop
	scheduler *scheduler
	time      *manualTime
	input     *sampler
	loads     *waiter
}

func newLoopFixture() *loopFixture {
	f := &loopFixture{
		scheduler: newScheduler(),
		time:      &manualTime{now: time.Unix(0, 0)},
		input:     &sampler{},
		loads:     &waiter{},
	}
	f.loop = NewLoop(f.scheduler, f.loads, f.input, core.NewClockWithSource(f.time.source))
	return f
}

func TestLoopFixedTimestep(t *testing.T) {
	f := newLoopFixture()
	scene := &recordingScene{}
	require.NoError(t, f.loop.Start(context.Background(), scene))
	assert.Equal(t, []string{"load", "init"}, scene.calls)
	assert.Equal(t, LoopRunning, f.loop.State())

	f.time.advance(2.5 * MPF)
	f.scheduler.fire()

	assert.Equal(t, 1, scene.count("draw"))
	assert.Equal(t, 2, scene.count("update"))
	assert.Equal(t, 2, f.input.updates)
	assert.InDelta(t, 0.5*MPF, f.loop.Lag(), 1e-3)
	// every update of the tick receives the real elapsed time
	for _, d := range scene.deltas {
		assert.InDelta(t, 2.5*MPF, d, 1e-3)
	}

	// the carried lag plus one more step allows a single update
	f.time.advance(MPF)
	f.scheduler.fire()
	assert.Equal(t, 2, scene.count("draw"))
	assert.Equal(t, 3, scene.count("update"))
	assert.InDelta(t, 0.5*MPF, f.loop.Lag(), 1e-3)
}

func TestLoopDrawsWithoutUpdatingOnShortFrames(t *testing.T) {
	f := newLoopFixture()
	scene := &recordingScene{}
	require.NoError(t, f.loop.Start(context.Background(), scene))

	f.time.advance(MPF / 4)
	f.scheduler.fire()
	f.time.advance(MPF / 4)
	f.scheduler.fire()

	assert.Equal(t, 2, scene.count("draw"))
	assert.Equal(t, 0, scene.count("update"))
	assert.Equal(t, []string{"load", "init", "draw", "draw"}, scene.calls)
}

func TestLoopStartTwice(t *testing.T) {
	f := newLoopFixture()
	require.NoError(t, f.loop.Start(context.Background(), &recordingScene{}))

	other := &recordingScene{}
	assert.ErrorIs(t, f.loop.Start(context.Background(), other), core.ErrAlreadyRunning)
	assert.Equal(t, LoopRunning, f.loop.State())
	assert.Empty(t, other.calls)
}

func TestLoopStopCancelsNextFrame(t *testing.T) {
	f := newLoopFixture()
	scene := &recordingScene{}
	require.NoError(t, f.loop.Start(context.Background(), scene))

	f.loop.Stop()
	assert.Equal(t, LoopStopped, f.loop.State())
	assert.Empty(t, f.scheduler.frames)
	assert.Equal(t, 0, scene.count("unload"))

	// a frame already in flight does nothing once stopped
	f.loop.loopOnce()
	assert.Equal(t, 0, scene.count("draw"))
	assert.Empty(t, f.scheduler.frames)
}

func TestLoopCleanUpIsIdempotent(t *testing.T) {
	f := newLoopFixture()
	scene := &recordingScene{}
	require.NoError(t, f.loop.Start(context.Background(), scene))

	f.loop.CleanUp()
	f.loop.CleanUp()
	assert.Equal(t, 1, scene.count("unload"))
	assert.Equal(t, LoopStopped, f.loop.State())

	// a stopped loop can run another scene
	next := &recordingScene{}
	require.NoError(t, f.loop.Start(context.Background(), next))
	assert.Equal(t, LoopRunning, f.loop.State())
}

func TestLoopCleanUpAfterStopDoesNothing(t *testing.T) {
	f := newLoopFixture()
	scene := &recordingScene{}
	require.NoError(t, f.loop.Start(context.Background(), scene))

	f.loop.Stop()
	f.loop.CleanUp()
	assert.Equal(t, 0, scene.count("unload"))
	assert.Equal(t, scene, f.loop.Scene())

	f.loop.Release()
	f.loop.Release()
	assert.Equal(t, 1, scene.count("unload"))
	assert.Nil(t, f.loop.Scene())
}

func TestLoopRestartUnloadsStoppedScene(t *testing.T) {
	f := newLoopFixture()
	first := &recordingScene{}
	require.NoError(t, f.loop.Start(context.Background(), first))
	f.loop.Stop()

	second := &recordingScene{}
	require.NoError(t, f.loop.Start(context.Background(), second))
	assert.Equal(t, 1, first.count("unload"))
	assert.Equal(t, second, f.loop.Scene())
}

func TestLoopReleaseIgnoresRunningScene(t *testing.T) {
	f := newLoopFixture()
	scene := &recordingScene{}
	require.NoError(t, f.loop.Start(context.Background(), scene))

	f.loop.Release()
	assert.Equal(t, 0, scene.count("unload"))
	assert.Equal(t, LoopRunning, f.loop.State())
}

func TestLoopStopWhileWaitingOnResources(t *testing.T) {
	f := newLoopFixture()
	f.loads.entered = make(chan struct{})
	f.loads.release = make(chan struct{})
	scene := &recordingScene{}

	done := make(chan error, 1)
	go func() { done <- f.loop.Start(context.Background(), scene) }()
	<-f.loads.entered

	assert.Equal(t, LoopStarting, f.loop.State())
	assert.ErrorIs(t, f.loop.Start(context.Background(), &recordingScene{}), core.ErrAlreadyRunning)
	f.loop.Stop()
	close(f.loads.release)

	assert.ErrorIs(t, <-done, errStoppedWhileStarting)
	assert.Equal(t, LoopStopped, f.loop.State())
	assert.Equal(t, []string{"load", "unload"}, scene.calls)
	assert.Empty(t, f.scheduler.frames)
	assert.Nil(t, f.loop.Scene())
}

func TestLoopCleanUpNeverStarted(t *testing.T) {
	f := newLoopFixture()
	f.loop.CleanUp()
	assert.Equal(t, LoopStopped, f.loop.State())
}

func TestLoopUpdateErrorStops(t *testing.T) {
	f := newLoopFixture()
	scene := &recordingScene{updateErr: errors.New("boom")}
	require.NoError(t, f.loop.Start(context.Background(), scene))

	f.time.advance(3 * MPF)
	f.scheduler.fire()

	assert.Equal(t, 1, scene.count("update"))
	assert.Equal(t, LoopStopped, f.loop.State())
	assert.Empty(t, f.scheduler.frames)
}

func TestLoopStartFailures(t *testing.T) {
	t.Run("load", func(t *testing.T) {
		f := newLoopFixture()
		boom := errors.New("boom")
		scene := &recordingScene{loadErr: boom}
		assert.ErrorIs(t, f.loop.Start(context.Background(), scene), boom)
		assert.Equal(t, LoopStopped, f.loop.State())
		assert.Equal(t, []string{"load"}, scene.calls)
	})

	t.Run("resources", func(t *testing.T) {
		f := newLoopFixture()
		f.loads.err = core.ErrFatalInit
		scene := &recordingScene{}
		assert.ErrorIs(t, f.loop.Start(context.Background(), scene), core.ErrFatalInit)
		assert.Equal(t, LoopStopped, f.loop.State())
		assert.Equal(t, 0, scene.count("init"))
		assert.Equal(t, 1, scene.count("unload"))
		assert.Empty(t, f.scheduler.frames)
	})

	t.Run("init", func(t *testing.T) {
		f := newLoopFixture()
		boom := errors.New("boom")
		scene := &recordingScene{initErr: boom}
		assert.ErrorIs(t, f.loop.Start(context.Background(), scene), boom)
		assert.Equal(t, LoopStopped, f.loop.State())
		assert.Equal(t, []string{"load", "init", "unload"}, scene.calls)
		assert.Nil(t, f.loop.Scene())
	})

	t.Run("cancelled", func(t *testing.T) {
		f := newLoopFixture()
		f.loads.block = true
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		scene := &recordingScene{}
		assert.ErrorIs(t, f.loop.Start(ctx, scene), context.DeadlineExceeded)
		assert.Equal(t, LoopStopped, f.loop.State())
		assert.Equal(t, 1, scene.count("unload"))
	})
}

func TestLoopOnFrameRunsBeforeDraw(t *testing.T) {
	f := newLoopFixture()
	scene := &recordingScene{}
	f.loop.OnFrame(func() { scene.calls = append(scene.calls, "frame") })
	require.NoError(t, f.loop.Start(context.Background(), scene))

	f.scheduler.fire()
	assert.Equal(t, []string{"load", "init", "frame", "draw"}, scene.calls)
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spaghettifunk/anima2d/engine/core"
)

const (
	// FPS is the fixed update rate.
	FPS = 60
	// MPF is the fixed timestep in milliseconds.
	MPF = 1000.0 / FPS
)

var errStoppedWhileStarting = errors.New("loop stopped while waiting on resources")

type LoopState uint8

const (
	LoopStopped LoopState = iota
	// Start is waiting on pending resource loads
	LoopStarting
	LoopRunning
)

func (s LoopState) String() string {
	switch s {
	case LoopStopped:
		return "stopped"
	case LoopStarting:
		return "starting"
	case LoopRunning:
		return "running"
	}
	return "unknown"
}

// FrameScheduler invokes a callback at the next presentation refresh.
type FrameScheduler interface {
	RequestFrame(fn func()) uint64
	CancelFrame(id uint64)
}

// Waiter blocks until every registered resource load has completed.
type Waiter interface {
	WaitOnPromises(ctx context.Context) error
}

// InputSampler advances one input polling frame.
type InputSampler interface {
	Update()
}

// Loop drives a Scene: one Draw per scheduled frame and as many fixed-step
// Updates as the accumulated lag allows. State transitions may be requested
// from any goroutine; frames and scene calls run on the render thread.
type Loop struct {
	scheduler FrameScheduler
	loads     Waiter
	input     InputSampler
	clock     *core.Clock
	metrics   *core.Metrics

	state    atomic.Uint32
	stops    atomic.Uint64
	scene    Scene
	frameID  uint64
	prevTime float64
	lag      float64

	// runs on the render thread at the top of every frame
	onFrame func()
}

func NewLoop(scheduler FrameScheduler, loads Waiter, input InputSampler, clock *core.Clock) *Loop {
	l := &Loop{
		scheduler: scheduler,
		loads:     loads,
		input:     input,
		clock:     clock,
		metrics:   core.NewMetrics(),
	}
	l.state.Store(uint32(LoopStopped))
	return l
}

// OnFrame sets a hook executed at the start of each running frame.
func (l *Loop) OnFrame(fn func()) {
	l.onFrame = fn
}

// Start loads the scene, waits for every pending resource load, initializes
// the scene and schedules the first frame. A scene that fails to start is
// unloaded again.
func (l *Loop) Start(ctx context.Context, scene Scene) error {
	if !l.state.CompareAndSwap(uint32(LoopStopped), uint32(LoopStarting)) {
		core.LogWarn("loop start requested while %s", l.State())
		return core.ErrAlreadyRunning
	}
	stops := l.stops.Load()
	// the scene a previous Stop kept is unloaded before the next one loads
	l.Release()

	if err := scene.Load(); err != nil {
		l.abortStart(stops)
		return fmt.Errorf("scene load: %w", err)
	}
	if err := l.loads.WaitOnPromises(ctx); err != nil {
		l.abortStart(stops)
		unload(scene)
		return fmt.Errorf("waiting on resources: %w", err)
	}
	// a Stop issued during the wait wins
	if l.stops.Load() != stops {
		unload(scene)
		return errStoppedWhileStarting
	}
	if err := scene.Init(); err != nil {
		l.abortStart(stops)
		unload(scene)
		return fmt.Errorf("scene init: %w", err)
	}

	l.scene = scene
	l.clock.Start()
	l.prevTime = l.clock.Elapsed()
	l.lag = 0
	l.frameID = l.scheduler.RequestFrame(l.loopOnce)
	if !l.state.CompareAndSwap(uint32(LoopStarting), uint32(LoopRunning)) {
		l.scheduler.CancelFrame(l.frameID)
		l.clock.Stop()
		l.scene = nil
		unload(scene)
		return errStoppedWhileStarting
	}
	core.LogInfo("loop running at %d updates per second", FPS)
	return nil
}

func (l *Loop) loopOnce() {
	if l.State() != LoopRunning {
		return
	}
	l.frameID = l.scheduler.RequestFrame(l.loopOnce)

	if l.onFrame != nil {
		l.onFrame()
	}

	if err := l.scene.Draw(); err != nil {
		core.LogError("scene draw failed, stopping the loop: %s", err)
		l.Stop()
		return
	}

	l.clock.Update()
	current := l.clock.Elapsed()
	elapsed := current - l.prevTime
	l.prevTime = current
	l.lag += elapsed
	l.metrics.Update(elapsed)

	for l.lag >= MPF && l.State() == LoopRunning {
		l.input.Update()
		if err := l.scene.Update(elapsed); err != nil {
			core.LogError("scene update failed, stopping the loop: %s", err)
			l.Stop()
			return
		}
		l.lag -= MPF
	}
}

// Stop halts the loop before its next frame. The scene stays loaded.
func (l *Loop) Stop() {
	l.stops.Add(1)
	if LoopState(l.state.Swap(uint32(LoopStopped))) == LoopRunning {
		l.scheduler.CancelFrame(l.frameID)
		l.clock.Stop()
	}
}

// CleanUp stops a running loop, unloads its scene and drops it. On a loop
// that is not running it does nothing.
func (l *Loop) CleanUp() {
	if l.State() != LoopRunning {
		return
	}
	l.Stop()
	l.Release()
}

// Scene returns the scene held by the loop, which a Stop keeps around.
func (l *Loop) Scene() Scene { return l.scene }

// Release unloads and drops the scene left behind by a Stop. It does nothing
// while the loop is running or when no scene is held.
func (l *Loop) Release() {
	if l.State() == LoopRunning || l.scene == nil {
		return
	}
	unload(l.scene)
	l.scene = nil
}

func (l *Loop) State() LoopState { return LoopState(l.state.Load()) }

// abortStart returns a failed start to Stopped unless a Stop already did,
// in which case the state may belong to a newer Start.
func (l *Loop) abortStart(stops uint64) {
	if l.stops.Load() == stops {
		l.state.CompareAndSwap(uint32(LoopStarting), uint32(LoopStopped))
	}
}

func unload(scene Scene) {
	if err := scene.Unload(); err != nil {
		core.LogError("scene unload: %s", err)
	}
}

// Lag is the simulated time, in milliseconds, not yet consumed by updates.
func (l *Loop) Lag() float64 { return l.lag }

// FPS returns the frames counted over the last second.
func (l *Loop) FPS() float64 { return l.metrics.FPS() }

package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/anima2d/engine/containers"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/resources"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// GPU buffers allocated and shader sources requested
	EngineStageInitialized
	// A scene is being driven by the loop
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// pending asset change notifications; extra ones are dropped until drained
const reloadQueueSize = 64

// Engine owns every GPU resource and loader for the lifetime of the graphics
// context and hands them to the renderables that need them.
type Engine struct {
	currentStage Stage
	config       *ApplicationConfig

	gl       renderer.Context
	buffers  *renderer.Buffers
	shaders  *renderer.ShaderResources
	loads    *resources.Synchronizer
	text     *resources.TextLoader
	textures *resources.TextureLoader
	fonts    *resources.FontLoader
	events   *core.EventBus
	input    *core.Input
	watcher  *resources.Watcher
	loop     *Loop

	reloads        *containers.RingQueue[string]
	pendingReloads map[string]*core.Promise

	width  uint32
	height uint32
}

// New wires the engine over an already initialized graphics context. Frames
// are requested from scheduler.
func New(config *ApplicationConfig, gl renderer.Context, scheduler FrameScheduler) (*Engine, error) {
	if config == nil {
		config = DefaultApplicationConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if gl == nil {
		err := fmt.Errorf("engine: no graphics context: %w", core.ErrFatalInit)
		core.LogError(err.Error())
		return nil, err
	}
	if config.LogLevel != "" {
		if err := core.SetLogLevel(config.LogLevel); err != nil {
			core.LogWarn("invalid log level %q, keeping the default: %s", config.LogLevel, err)
		}
	}

	loads := resources.NewSynchronizer()
	events := core.NewEventBus()
	input := core.NewInput(events)
	buffers := renderer.NewBuffers(gl)
	textures := resources.NewTextureLoader(gl, loads)

	e := &Engine{
		currentStage:   EngineStageUninitialized,
		config:         config,
		gl:             gl,
		buffers:        buffers,
		shaders:        renderer.NewShaderResources(gl, buffers, config.Shaders),
		loads:          loads,
		text:           resources.NewTextLoader(loads),
		textures:       textures,
		fonts:          resources.NewFontLoader(textures, loads),
		events:         events,
		input:          input,
		reloads:        containers.NewRingQueue[string](reloadQueueSize),
		pendingReloads: make(map[string]*core.Promise),
		width:          config.StartWidth,
		height:         config.StartHeight,
	}
	e.loop = NewLoop(scheduler, loads, input, core.NewClock())
	e.loop.OnFrame(e.processReloads)
	return e, nil
}

// Init allocates the shared GPU buffers and requests the shader sources. The
// programs are built once the loop waits on pending loads.
func (e *Engine) Init() error {
	if e.currentStage != EngineStageUninitialized {
		core.LogWarn("engine already initialized, nothing was done")
		return nil
	}
	if err := e.buffers.Init(); err != nil {
		return err
	}
	e.shaders.Init(e.text, e.loads)

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.events.Register(core.EVENT_CODE_ASSET_CHANGED, e, e.onAssetChanged)

	if e.config.HotReload {
		w, err := resources.NewWatcher(e.events)
		if err != nil {
			core.LogError("hot reload disabled: %s", err)
		} else if err := w.AddRecursive(e.config.AssetRoot); err != nil {
			core.LogError("hot reload disabled, cannot watch %s: %s", e.config.AssetRoot, err)
			w.Close()
		} else {
			e.watcher = w
			core.LogInfo("watching %s for changes", e.config.AssetRoot)
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Start loads scene and hands it to the loop. It blocks until every resource
// requested so far, the shader sources included, has loaded.
func (e *Engine) Start(ctx context.Context, scene Scene) error {
	if e.currentStage == EngineStageUninitialized || e.currentStage == EngineStageShuttingDown {
		return fmt.Errorf("engine start: not initialized: %w", core.ErrConfiguration)
	}
	if err := e.loop.Start(ctx, scene); err != nil {
		core.LogError("failed to start scene: %s", err)
		return err
	}
	e.currentStage = EngineStageRunning
	return nil
}

// Stop halts the loop without unloading the scene.
func (e *Engine) Stop() {
	e.loop.Stop()
	if e.currentStage == EngineStageRunning {
		e.currentStage = EngineStageInitialized
	}
}

// CleanUp unloads the scene and releases every GPU resource. Safe to call
// more than once.
func (e *Engine) CleanUp() {
	if e.currentStage == EngineStageUninitialized {
		return
	}
	e.currentStage = EngineStageShuttingDown

	e.loop.CleanUp()
	// a loop stopped by quit or a scene error still holds its scene
	e.loop.Release()
	if e.watcher != nil {
		e.watcher.Close()
		e.watcher = nil
	}
	e.shaders.CleanUp()
	e.buffers.CleanUp()
	if err := e.events.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	e.currentStage = EngineStageUninitialized
}

func (e *Engine) GL() renderer.Context { return e.gl }
func (e *Engine) Buffers() *renderer.Buffers { return e.buffers }
func (e *Engine) Shaders() *renderer.ShaderResources { return e.shaders }
func (e *Engine) Text() *resources.TextLoader { return e.text }
func (e *Engine) Textures() *resources.TextureLoader { return e.textures }
func (e *Engine) Fonts() *resources.FontLoader { return e.fonts }
func (e *Engine) Events() *core.EventBus { return e.events }
func (e *Engine) Input() *core.Input { return e.input }
func (e *Engine) Loop() *Loop { return e.loop }
func (e *Engine) Config() *ApplicationConfig { return e.config }
func (e *Engine) Stage() Stage { return e.currentStage }

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

// processReloads runs on the render thread: it picks up changed sources and
// rebuilds the programs using them once the new text is in the cache.
func (e *Engine) processReloads() {
	for {
		path, err := e.reloads.Dequeue()
		if err != nil {
			break
		}
		if source, ok := e.shaders.ResolveSource(path); ok {
			e.pendingReloads[source] = e.text.Reload(source)
		}
	}

	for path, p := range e.pendingReloads {
		if !p.IsDone() {
			continue
		}
		delete(e.pendingReloads, path)
		if err := p.Err(); err != nil {
			continue
		}
		if err := e.shaders.ReloadSource(path); err != nil {
			continue
		}
		core.LogInfo("reloaded shaders using %s", path)
	}
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.Stop()
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", code)
		return false
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", code)
		return false
	}
	if se.WindowWidth != e.width || se.WindowHeight != e.height {
		e.width = se.WindowWidth
		e.height = se.WindowHeight
		core.LogDebug("Window resize: %d, %d", e.width, e.height)
	}
	return false
}

// onAssetChanged is called from the watcher goroutine.
func (e *Engine) onAssetChanged(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	ae, ok := context.Data.(*core.AssetEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", code)
		return false
	}
	if err := e.reloads.Enqueue(filepath.Clean(ae.Path)); err != nil {
		core.LogWarn("dropping change of %s: %s", ae.Path, err)
	}
	return false
}

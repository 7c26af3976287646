package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/anima2d/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform owns the window and its GL context. It is also the frame
// scheduler: callbacks requested through RequestFrame run once per refresh.
type Platform struct {
	Window *glfw.Window

	input  *core.Input
	events *core.EventBus

	nextFrame uint64
	frames    map[uint64]func()
}

func New() *Platform {
	return &Platform{
		frames: make(map[uint64]func()),
	}
}

// Startup creates the window with an OpenGL 4.1 core context and makes it
// current on the calling thread.
func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32, vsync bool) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return fmt.Errorf("glfw: %v: %w", err, core.ErrFatalInit)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return fmt.Errorf("window: %v: %w", err, core.ErrFatalInit)
	}
	window.MakeContextCurrent()
	if vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	p.Window = window
	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

// Attach routes window input to the engine. Events may be nil.
func (p *Platform) Attach(input *core.Input, events *core.EventBus) {
	p.input = input
	p.events = events
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

func (p *Platform) RequestFrame(fn func()) uint64 {
	p.nextFrame++
	p.frames[p.nextFrame] = fn
	return p.nextFrame
}

func (p *Platform) CancelFrame(id uint64) {
	delete(p.frames, id)
}

// Run pumps window messages and presents frames until the window closes, ctx
// is done or nobody requests another frame.
func (p *Platform) Run(ctx context.Context) {
	for p.Window != nil && !p.Window.ShouldClose() && ctx.Err() == nil {
		glfw.PollEvents()
		if len(p.frames) == 0 {
			return
		}
		pending := p.frames
		p.frames = make(map[uint64]func())
		for _, fn := range pending {
			fn()
		}
		p.Window.SwapBuffers()
	}
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if p.input == nil || action == glfw.Repeat {
		return
	}
	code, ok := translateKey(key)
	if !ok {
		return
	}
	p.input.ProcessKey(code, action == glfw.Press)
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if p.input == nil {
		return
	}
	var b core.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = core.BUTTON_LEFT
	case glfw.MouseButtonRight:
		b = core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		b = core.BUTTON_MIDDLE
	default:
		return
	}
	p.input.ProcessButton(b, action == glfw.Press)
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	if p.input == nil || xpos < 0 || ypos < 0 {
		return
	}
	p.input.ProcessMouseMove(uint16(xpos), uint16(ypos))
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if p.events == nil {
		return
	}
	p.events.Fire(core.EVENT_CODE_RESIZED, p, core.EventContext{
		Data: &core.SystemEvent{WindowWidth: uint32(width), WindowHeight: uint32(height)},
	})
}

func (p *Platform) closeCallback(w *glfw.Window) {
	if p.events == nil {
		return
	}
	p.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, p, core.EventContext{})
}

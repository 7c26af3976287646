package renderer

import (
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/anima2d/engine/core"
)

// TextSource is the shared text cache shader sources are read from.
type TextSource interface {
	Load(path string) *core.Promise
	Reload(path string) *core.Promise
	Get(path string) (string, bool)
	Unload(path string) bool
}

// LoadSynchronizer collects outstanding loads and the continuations to run,
// on the waiting goroutine, once they all completed.
type LoadSynchronizer interface {
	PushPromise(p *core.Promise)
	Defer(fn func() error)
}

type ShaderState uint8

const (
	ShaderStateUnloaded ShaderState = iota
	ShaderStateLoading
	ShaderStateReady
	ShaderStateFailed
)

func (s ShaderState) String() string {
	switch s {
	case ShaderStateUnloaded:
		return "unloaded"
	case ShaderStateLoading:
		return "loading"
	case ShaderStateReady:
		return "ready"
	case ShaderStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ShaderPaths locates the GLSL sources of the built-in programs.
type ShaderPaths struct {
	SimpleVS  string `toml:"simple_vs"`
	SimpleFS  string `toml:"simple_fs"`
	TextureVS string `toml:"texture_vs"`
	TextureFS string `toml:"texture_fs"`
}

func DefaultShaderPaths() ShaderPaths {
	return ShaderPaths{
		SimpleVS:  "assets/shaders/simple_vs.glsl",
		SimpleFS:  "assets/shaders/simple_fs.glsl",
		TextureVS: "assets/shaders/texture_vs.glsl",
		TextureFS: "assets/shaders/texture_fs.glsl",
	}
}

func (p ShaderPaths) all() []string {
	return []string{p.SimpleVS, p.SimpleFS, p.TextureVS, p.TextureFS}
}

/**
 * @brief Owns the three built-in programs: constant color, texture and sprite.
 * Programs exist only in the Ready state; the accessors return nil otherwise.
 */
type ShaderResources struct {
	gl      Context
	buffers *Buffers
	paths   ShaderPaths
	text    TextSource

	state ShaderState
	err   error

	constColorShader *ShaderProgram
	textureShader    *ShaderProgram
	spriteShader     *ShaderProgram
}

func NewShaderResources(gl Context, buffers *Buffers, paths ShaderPaths) *ShaderResources {
	return &ShaderResources{
		gl:      gl,
		buffers: buffers,
		paths:   paths,
	}
}

// Init requests the four sources and defers program creation until the
// synchronizer has seen every load complete.
func (r *ShaderResources) Init(text TextSource, sync LoadSynchronizer) {
	if r.state == ShaderStateLoading || r.state == ShaderStateReady {
		core.LogWarn("shader resources already initialized, nothing was done")
		return
	}
	r.text = text
	r.state = ShaderStateLoading
	r.err = nil

	paths := r.paths.all()
	promises := make([]*core.Promise, 0, len(paths))
	for _, p := range paths {
		promises = append(promises, text.Load(p))
	}
	all := core.All(promises...)
	sync.PushPromise(all)
	sync.Defer(func() error {
		if err := all.Err(); err != nil {
			return r.fail(fmt.Errorf("shader sources: %w", err))
		}
		return r.createShaders()
	})
}

func (r *ShaderResources) createShaders() error {
	if r.state != ShaderStateLoading {
		// CleanUp ran before the sources arrived
		return nil
	}

	constColor, err := NewShaderProgram(r.gl, r.buffers, r.text, r.paths.SimpleVS, r.paths.SimpleFS, ConstColorBindings)
	if err != nil {
		return r.fail(err)
	}
	texture, err := NewShaderProgram(r.gl, r.buffers, r.text, r.paths.TextureVS, r.paths.TextureFS, TextureBindings)
	if err != nil {
		constColor.CleanUp()
		return r.fail(err)
	}
	sprite, err := NewShaderProgram(r.gl, r.buffers, r.text, r.paths.TextureVS, r.paths.TextureFS, SpriteBindings)
	if err != nil {
		constColor.CleanUp()
		texture.CleanUp()
		return r.fail(err)
	}

	r.constColorShader = constColor
	r.textureShader = texture
	r.spriteShader = sprite
	r.state = ShaderStateReady
	core.LogInfo("shader resources ready")
	return nil
}

func (r *ShaderResources) fail(err error) error {
	r.state = ShaderStateFailed
	r.err = err
	core.LogError("shader resources failed: %s", err)
	return err
}

// CleanUp releases every program and drops the cached sources.
func (r *ShaderResources) CleanUp() {
	for _, p := range r.programs() {
		p.CleanUp()
	}
	r.constColorShader = nil
	r.textureShader = nil
	r.spriteShader = nil

	if r.text != nil && r.state != ShaderStateUnloaded {
		for _, p := range r.paths.all() {
			r.text.Unload(p)
		}
	}
	r.state = ShaderStateUnloaded
	r.err = nil
}

func (r *ShaderResources) programs() []*ShaderProgram {
	out := make([]*ShaderProgram, 0, 3)
	for _, p := range []*ShaderProgram{r.constColorShader, r.textureShader, r.spriteShader} {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (r *ShaderResources) ConstColorShader() *ShaderProgram {
	if r.state != ShaderStateReady {
		return nil
	}
	return r.constColorShader
}

func (r *ShaderResources) TextureShader() *ShaderProgram {
	if r.state != ShaderStateReady {
		return nil
	}
	return r.textureShader
}

func (r *ShaderResources) SpriteShader() *ShaderProgram {
	if r.state != ShaderStateReady {
		return nil
	}
	return r.spriteShader
}

func (r *ShaderResources) State() ShaderState { return r.state }
func (r *ShaderResources) Err() error { return r.err }

// Sources lists the source files the programs are built from.
func (r *ShaderResources) Sources() []string {
	return r.paths.all()
}

// UsesSource reports whether any built-in program compiles path.
func (r *ShaderResources) UsesSource(path string) bool {
	for _, p := range r.paths.all() {
		if p == path {
			return true
		}
	}
	return false
}

// ResolveSource maps a changed file to the configured source path it
// refers to. Relative and absolute spellings of the same file match.
func (r *ShaderResources) ResolveSource(path string) (string, bool) {
	target, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	for _, p := range r.paths.all() {
		if abs, err := filepath.Abs(p); err == nil && abs == target {
			return p, true
		}
	}
	return "", false
}

// ReloadSource rebuilds every program compiled from path using the text
// currently cached. Programs that fail to rebuild keep their previous version.
func (r *ShaderResources) ReloadSource(path string) error {
	if r.state != ShaderStateReady {
		return fmt.Errorf("reload %s: shaders are %s: %w", path, r.state, core.ErrConfiguration)
	}
	var firstErr error
	for _, p := range r.programs() {
		if !p.UsesSource(path) {
			continue
		}
		if err := p.Reload(r.text); err != nil {
			core.LogError("shader reload failed, keeping previous program: %s", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

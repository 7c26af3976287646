package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima2d/engine/core"
)

// Names of the attributes and uniforms every engine shader declares.
const (
	AttribPosition          = "aPosition"
	AttribTextureCoordinate = "aTextureCoordinate"
	UniformPixelColor       = "uPixelColor"
	UniformModelMatrix      = "uModelMatrix"
	UniformViewMatrix       = "uViewMatrix"
	UniformSampler          = "uSampler"
)

// The texture unit samplers are bound to.
const SamplerTextureUnit = 0

// ShaderBindings selects what a program binds on Activate, on top of the
// always-present position attribute and color/model/view uniforms.
type ShaderBindings uint8

const (
	BindPosition ShaderBindings = 1 << iota
	// bind the registry's unit-quad texture coordinates
	BindTexCoord
	// bind a per-instance texture coordinate buffer supplied by the caller
	BindInstanceTexCoord
	// bind uSampler to SamplerTextureUnit
	BindSampler
)

const (
	ConstColorBindings = BindPosition
	TextureBindings    = BindPosition | BindTexCoord | BindSampler
	SpriteBindings     = BindPosition | BindInstanceTexCoord | BindSampler
)

func (b ShaderBindings) Has(flag ShaderBindings) bool {
	return b&flag != 0
}

func (b ShaderBindings) usesTexCoords() bool {
	return b.Has(BindTexCoord) || b.Has(BindInstanceTexCoord)
}

/** @brief A linked vertex+fragment program and its resolved locations. */
type ShaderProgram struct {
	gl      Context
	buffers *Buffers

	vertexPath   string
	fragmentPath string
	bindings     ShaderBindings

	program        ProgramHandle
	vertexShader   ShaderHandle
	fragmentShader ShaderHandle

	positionRef    int32
	texCoordRef    int32
	pixelColorRef  int32
	modelMatrixRef int32
	viewMatrixRef  int32
	samplerRef     int32
}

// NewShaderProgram compiles and links the two sources, which must already be
// in the text cache, and resolves every location the bindings need.
func NewShaderProgram(gl Context, buffers *Buffers, text TextSource, vertexPath, fragmentPath string, bindings ShaderBindings) (*ShaderProgram, error) {
	s := &ShaderProgram{
		gl:           gl,
		buffers:      buffers,
		vertexPath:   vertexPath,
		fragmentPath: fragmentPath,
		bindings:     bindings | BindPosition,
	}
	if err := s.build(text); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return s, nil
}

func (s *ShaderProgram) build(text TextSource) error {
	if s.gl == nil || !s.gl.IsInitialized() {
		return fmt.Errorf("shader [%s %s]: graphics context is not initialized: %w", s.vertexPath, s.fragmentPath, core.ErrFatalInit)
	}

	vs, err := compileShader(s.gl, text, s.vertexPath, ShaderStageVertex)
	if err != nil {
		return err
	}
	fs, err := compileShader(s.gl, text, s.fragmentPath, ShaderStageFragment)
	if err != nil {
		s.gl.DeleteShader(vs)
		return err
	}

	// create and link the shaders into a program.
	program := s.gl.CreateProgram()
	s.gl.AttachShader(program, vs)
	s.gl.AttachShader(program, fs)
	s.gl.LinkProgram(program)
	if !s.gl.ProgramLinked(program) {
		infoLog := s.gl.ProgramInfoLog(program)
		destroyProgram(s.gl, program, vs, fs)
		return &core.ShaderLinkError{
			VertexPath:   s.vertexPath,
			FragmentPath: s.fragmentPath,
			Log:          infoLog,
		}
	}

	positionRef := s.gl.AttribLocation(program, AttribPosition)
	if positionRef < 0 {
		destroyProgram(s.gl, program, vs, fs)
		return fmt.Errorf("shader [%s]: attribute %s not found: %w", s.vertexPath, AttribPosition, core.ErrConfiguration)
	}
	texCoordRef := int32(-1)
	if s.bindings.usesTexCoords() {
		texCoordRef = s.gl.AttribLocation(program, AttribTextureCoordinate)
		if texCoordRef < 0 {
			destroyProgram(s.gl, program, vs, fs)
			return fmt.Errorf("shader [%s]: attribute %s not found: %w", s.vertexPath, AttribTextureCoordinate, core.ErrConfiguration)
		}
	}

	s.program = program
	s.vertexShader = vs
	s.fragmentShader = fs
	s.positionRef = positionRef
	s.texCoordRef = texCoordRef
	s.pixelColorRef = s.gl.UniformLocation(program, UniformPixelColor)
	s.modelMatrixRef = s.gl.UniformLocation(program, UniformModelMatrix)
	s.viewMatrixRef = s.gl.UniformLocation(program, UniformViewMatrix)
	s.samplerRef = -1
	if s.bindings.Has(BindSampler) {
		s.samplerRef = s.gl.UniformLocation(program, UniformSampler)
	}
	return nil
}

// Reload rebuilds the program from the current text cache. On failure the
// previous program stays active and the error is returned.
func (s *ShaderProgram) Reload(text TextSource) error {
	next := *s
	if err := next.build(text); err != nil {
		return err
	}
	s.CleanUp()
	*s = next
	core.LogInfo("shader [%s %s] reloaded", s.vertexPath, s.fragmentPath)
	return nil
}

// Activate makes the program current and pushes the per-draw state. Texture
// coordinate and sampler bindings, when enabled, are issued after the base
// position and uniform bindings.
func (s *ShaderProgram) Activate(pixelColor [4]float32, modelMatrix, viewMatrix mgl32.Mat4) {
	s.ActivateWithTexCoords(pixelColor, modelMatrix, viewMatrix, 0)
}

// ActivateWithTexCoords is Activate with a caller-owned texture coordinate
// buffer, used by programs with BindInstanceTexCoord. A zero buffer falls back
// to the unit-quad coordinates.
func (s *ShaderProgram) ActivateWithTexCoords(pixelColor [4]float32, modelMatrix, viewMatrix mgl32.Mat4, texCoords Buffer) {
	s.activateBase(pixelColor, modelMatrix, viewMatrix)

	if s.bindings.usesTexCoords() {
		buf := s.buffers.TexCoordBuffer()
		if s.bindings.Has(BindInstanceTexCoord) && texCoords != 0 {
			buf = texCoords
		}
		s.gl.BindArrayBuffer(buf)
		s.gl.VertexAttribPointer(uint32(s.texCoordRef), TexCoordComponents, 0, 0)
		s.gl.EnableVertexAttribArray(uint32(s.texCoordRef))
	}

	if s.bindings.Has(BindSampler) {
		s.gl.Uniform1i(s.samplerRef, SamplerTextureUnit)
	}
}

func (s *ShaderProgram) activateBase(pixelColor [4]float32, modelMatrix, viewMatrix mgl32.Mat4) {
	s.gl.UseProgram(s.program)

	// bind vertex buffer
	s.gl.BindArrayBuffer(s.buffers.VertexBuffer())
	s.gl.VertexAttribPointer(uint32(s.positionRef), VertexComponents, 0, 0)
	s.gl.EnableVertexAttribArray(uint32(s.positionRef))

	// load uniforms
	s.gl.Uniform4f(s.pixelColorRef, pixelColor)
	s.gl.UniformMatrix4(s.modelMatrixRef, modelMatrix)
	s.gl.UniformMatrix4(s.viewMatrixRef, viewMatrix)
}

// CleanUp detaches and deletes both stages, then deletes the program.
func (s *ShaderProgram) CleanUp() {
	if s.program == 0 {
		return
	}
	destroyProgram(s.gl, s.program, s.vertexShader, s.fragmentShader)
	s.program = 0
	s.vertexShader = 0
	s.fragmentShader = 0
}

func (s *ShaderProgram) Bindings() ShaderBindings { return s.bindings }
func (s *ShaderProgram) VertexPath() string { return s.vertexPath }
func (s *ShaderProgram) FragmentPath() string { return s.fragmentPath }
func (s *ShaderProgram) Program() ProgramHandle { return s.program }

// UsesSource reports whether path is one of the program's two stages.
func (s *ShaderProgram) UsesSource(path string) bool {
	return s.vertexPath == path || s.fragmentPath == path
}

func compileShader(gl Context, text TextSource, path string, stage ShaderStage) (ShaderHandle, error) {
	source, ok := text.Get(path)
	if !ok {
		return 0, fmt.Errorf("%s shader %s not loaded: %w", stage, path, core.ErrFatalInit)
	}

	shader := gl.CreateShader(stage)
	gl.ShaderSource(shader, source)
	gl.CompileShader(shader)

	if !gl.ShaderCompiled(shader) {
		infoLog := gl.ShaderInfoLog(shader)
		gl.DeleteShader(shader)
		return 0, &core.ShaderCompileError{Path: path, Log: infoLog}
	}
	return shader, nil
}

func destroyProgram(gl Context, program ProgramHandle, vs, fs ShaderHandle) {
	gl.DetachShader(program, vs)
	gl.DetachShader(program, fs)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)
	gl.DeleteProgram(program)
}

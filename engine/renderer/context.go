package renderer

import "github.com/go-gl/mathgl/mgl32"

// Opaque GPU object handles. The zero value is "no object".
type (
	Buffer        uint32
	ShaderHandle  uint32
	ProgramHandle uint32
	TextureHandle uint32
)

type ShaderStage uint8

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

type BufferUsage uint8

const (
	BufferUsageStaticDraw BufferUsage = iota
	BufferUsageDynamicDraw
)

type DrawMode uint8

const (
	DrawModeTriangleStrip DrawMode = iota
	DrawModeTriangles
)

type Capability uint8

const (
	CapabilityScissorTest Capability = iota
	CapabilityBlend
)

// Context is the graphics driver surface the engine renders through. It
// mirrors the subset of a GL-style API the core needs and is expected to be
// initialized before any engine Init runs. All calls happen on the render
// thread.
type Context interface {
	IsInitialized() bool

	// buffers
	CreateBuffer() Buffer
	BindArrayBuffer(buffer Buffer)
	ArrayBufferData(data []float32, usage BufferUsage)
	DeleteBuffer(buffer Buffer)

	// shaders and programs
	CreateShader(stage ShaderStage) ShaderHandle
	ShaderSource(shader ShaderHandle, source string)
	CompileShader(shader ShaderHandle)
	ShaderCompiled(shader ShaderHandle) bool
	ShaderInfoLog(shader ShaderHandle) string
	DeleteShader(shader ShaderHandle)
	CreateProgram() ProgramHandle
	AttachShader(program ProgramHandle, shader ShaderHandle)
	DetachShader(program ProgramHandle, shader ShaderHandle)
	LinkProgram(program ProgramHandle)
	ProgramLinked(program ProgramHandle) bool
	ProgramInfoLog(program ProgramHandle) string
	UseProgram(program ProgramHandle)
	DeleteProgram(program ProgramHandle)

	// attributes and uniforms; a negative location means "not found"
	AttribLocation(program ProgramHandle, name string) int32
	UniformLocation(program ProgramHandle, name string) int32
	VertexAttribPointer(location uint32, size int32, stride int32, offset int)
	EnableVertexAttribArray(location uint32)
	Uniform4f(location int32, value [4]float32)
	UniformMatrix4(location int32, value mgl32.Mat4)
	Uniform1i(location int32, value int32)

	// textures
	CreateTexture() TextureHandle
	UploadTexture(texture TextureHandle, width, height int, rgba []uint8)
	ActiveTexture(unit uint32)
	BindTexture(texture TextureHandle)
	DeleteTexture(texture TextureHandle)

	// drawing and framebuffer state
	DrawArrays(mode DrawMode, first, count int32)
	Viewport(x, y, width, height int32)
	Scissor(x, y, width, height int32)
	Enable(capability Capability)
	Disable(capability Capability)
	ClearColor(r, g, b, a float32)
	Clear()
}

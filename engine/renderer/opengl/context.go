// Package opengl implements renderer.Context on top of OpenGL 4.1 core.
package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer"
)

// Context drives the GL context current on the calling thread. Every method
// must be called from the thread the platform layer made the context current on.
type Context struct {
	initialized bool
	vao         uint32
}

// New loads the GL function pointers. The window's context must be current.
func New() (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("could not initialize OpenGL: %v: %w", err, core.ErrFatalInit)
	}
	core.LogInfo("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	c := &Context{}
	// core profile refuses attribute pointers without a bound vertex array
	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	c.initialized = true
	return c, nil
}

// Shutdown releases the vertex array. The context itself belongs to the window.
func (c *Context) Shutdown() {
	if !c.initialized {
		return
	}
	gl.DeleteVertexArrays(1, &c.vao)
	c.vao = 0
	c.initialized = false
}

func (c *Context) IsInitialized() bool {
	return c.initialized
}

func (c *Context) CreateBuffer() renderer.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return renderer.Buffer(b)
}

func (c *Context) BindArrayBuffer(buffer renderer.Buffer) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buffer))
}

func (c *Context) ArrayBufferData(data []float32, usage renderer.BufferUsage) {
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, bufferUsage(usage))
		return
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), bufferUsage(usage))
}

func (c *Context) DeleteBuffer(buffer renderer.Buffer) {
	b := uint32(buffer)
	gl.DeleteBuffers(1, &b)
}

func (c *Context) CreateShader(stage renderer.ShaderStage) renderer.ShaderHandle {
	switch stage {
	case renderer.ShaderStageFragment:
		return renderer.ShaderHandle(gl.CreateShader(gl.FRAGMENT_SHADER))
	default:
		return renderer.ShaderHandle(gl.CreateShader(gl.VERTEX_SHADER))
	}
}

func (c *Context) ShaderSource(shader renderer.ShaderHandle, source string) {
	csrc, free := gl.Strs(source + "\x00")
	gl.ShaderSource(uint32(shader), 1, csrc, nil)
	free()
}

func (c *Context) CompileShader(shader renderer.ShaderHandle) {
	gl.CompileShader(uint32(shader))
}

func (c *Context) ShaderCompiled(shader renderer.ShaderHandle) bool {
	var status int32
	gl.GetShaderiv(uint32(shader), gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

func (c *Context) ShaderInfoLog(shader renderer.ShaderHandle) string {
	var logLen int32
	gl.GetShaderiv(uint32(shader), gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetShaderInfoLog(uint32(shader), logLen, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) DeleteShader(shader renderer.ShaderHandle) {
	gl.DeleteShader(uint32(shader))
}

func (c *Context) CreateProgram() renderer.ProgramHandle {
	return renderer.ProgramHandle(gl.CreateProgram())
}

func (c *Context) AttachShader(program renderer.ProgramHandle, shader renderer.ShaderHandle) {
	gl.AttachShader(uint32(program), uint32(shader))
}

func (c *Context) DetachShader(program renderer.ProgramHandle, shader renderer.ShaderHandle) {
	gl.DetachShader(uint32(program), uint32(shader))
}

func (c *Context) LinkProgram(program renderer.ProgramHandle) {
	gl.LinkProgram(uint32(program))
}

func (c *Context) ProgramLinked(program renderer.ProgramHandle) bool {
	var status int32
	gl.GetProgramiv(uint32(program), gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (c *Context) ProgramInfoLog(program renderer.ProgramHandle) string {
	var logLen int32
	gl.GetProgramiv(uint32(program), gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetProgramInfoLog(uint32(program), logLen, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (c *Context) UseProgram(program renderer.ProgramHandle) {
	gl.UseProgram(uint32(program))
}

func (c *Context) DeleteProgram(program renderer.ProgramHandle) {
	gl.DeleteProgram(uint32(program))
}

func (c *Context) AttribLocation(program renderer.ProgramHandle, name string) int32 {
	return gl.GetAttribLocation(uint32(program), gl.Str(name+"\x00"))
}

func (c *Context) UniformLocation(program renderer.ProgramHandle, name string) int32 {
	return gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00"))
}

func (c *Context) VertexAttribPointer(location uint32, size int32, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(location, size, gl.FLOAT, false, stride, uintptr(offset))
}

func (c *Context) EnableVertexAttribArray(location uint32) {
	gl.EnableVertexAttribArray(location)
}

func (c *Context) Uniform4f(location int32, value [4]float32) {
	gl.Uniform4fv(location, 1, &value[0])
}

func (c *Context) UniformMatrix4(location int32, value mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &value[0])
}

func (c *Context) Uniform1i(location int32, value int32) {
	gl.Uniform1i(location, value)
}

func (c *Context) CreateTexture() renderer.TextureHandle {
	var t uint32
	gl.GenTextures(1, &t)
	return renderer.TextureHandle(t)
}

func (c *Context) UploadTexture(texture renderer.TextureHandle, width, height int, rgba []uint8) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(width),
		int32(height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(rgba),
	)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (c *Context) ActiveTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
}

func (c *Context) BindTexture(texture renderer.TextureHandle) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
}

func (c *Context) DeleteTexture(texture renderer.TextureHandle) {
	t := uint32(texture)
	gl.DeleteTextures(1, &t)
}

func (c *Context) DrawArrays(mode renderer.DrawMode, first, count int32) {
	switch mode {
	case renderer.DrawModeTriangles:
		gl.DrawArrays(gl.TRIANGLES, first, count)
	default:
		gl.DrawArrays(gl.TRIANGLE_STRIP, first, count)
	}
}

func (c *Context) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (c *Context) Scissor(x, y, width, height int32) {
	gl.Scissor(x, y, width, height)
}

func (c *Context) Enable(capability renderer.Capability) {
	gl.Enable(glCapability(capability))
}

func (c *Context) Disable(capability renderer.Capability) {
	gl.Disable(glCapability(capability))
}

func (c *Context) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (c *Context) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func bufferUsage(u renderer.BufferUsage) uint32 {
	if u == renderer.BufferUsageDynamicDraw {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func glCapability(c renderer.Capability) uint32 {
	switch c {
	case renderer.CapabilityBlend:
		return gl.BLEND
	default:
		return gl.SCISSOR_TEST
	}
}

var _ renderer.Context = (*Context)(nil)

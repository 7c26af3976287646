// Package mock provides an in-memory renderer.Context that records every call.
package mock

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima2d/engine/renderer"
)

// Call is one recorded driver call, e.g. {"UseProgram", [1]}.
type Call struct {
	Name string
	Args []interface{}
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

type texture struct {
	width, height int
	pixels        []uint8
}

// Context is a fake graphics context. Handles are allocated from one counter
// so every object gets a distinct non-zero id.
type Context struct {
	mu sync.Mutex

	Initialized bool

	// failure injection, keyed by source text or program id
	FailCompile     map[string]string
	FailLink        bool
	MissingAttribs  map[string]bool
	FailAllocations bool

	calls    []Call
	nextID   uint32
	bound    renderer.Buffer
	buffers  map[renderer.Buffer][]float32
	sources  map[renderer.ShaderHandle]string
	shaders  map[renderer.ShaderHandle]bool
	programs map[renderer.ProgramHandle]bool
	textures map[renderer.TextureHandle]texture
	uniforms map[int32]interface{}
	attribs  map[uint32]renderer.Buffer
	enabled  map[renderer.Capability]bool
}

func NewContext() *Context {
	return &Context{
		Initialized:    true,
		FailCompile:    map[string]string{},
		MissingAttribs: map[string]bool{},
		buffers:        map[renderer.Buffer][]float32{},
		sources:        map[renderer.ShaderHandle]string{},
		shaders:        map[renderer.ShaderHandle]bool{},
		programs:       map[renderer.ProgramHandle]bool{},
		textures:       map[renderer.TextureHandle]texture{},
		uniforms:       map[int32]interface{}{},
		attribs:        map[uint32]renderer.Buffer{},
		enabled:        map[renderer.Capability]bool{},
	}
}

func (c *Context) record(name string, args ...interface{}) {
	c.calls = append(c.calls, Call{Name: name, Args: args})
}

func (c *Context) id() uint32 {
	c.nextID++
	return c.nextID
}

// Calls returns a copy of the call log.
func (c *Context) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// CallNames returns the names of the recorded calls, in order.
func (c *Context) CallNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	for i, call := range c.calls {
		out[i] = call.Name
	}
	return out
}

// CountCalls returns how many times name was called.
func (c *Context) CountCalls(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call.Name == name {
			n++
		}
	}
	return n
}

func (c *Context) ResetCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

// BufferData returns the last data uploaded to buf.
func (c *Context) BufferData(buf renderer.Buffer) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.buffers[buf]
	return d, ok
}

// LiveBuffers is the number of allocated, not yet deleted buffers.
func (c *Context) LiveBuffers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffers)
}

func (c *Context) LivePrograms() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.programs)
}

func (c *Context) LiveShaders() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.shaders)
}

func (c *Context) LiveTextures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.textures)
}

// TextureSize reports the dimensions last uploaded to tex.
func (c *Context) TextureSize(tex renderer.TextureHandle) (int, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.textures[tex]
	return t.width, t.height, ok
}

// Uniform returns the last value written to a uniform location.
func (c *Context) Uniform(loc int32) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uniforms[loc]
}

// AttribBuffer returns the buffer bound when the attribute pointer was set.
func (c *Context) AttribBuffer(loc uint32) renderer.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attribs[loc]
}

func (c *Context) IsEnabled(capability renderer.Capability) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled[capability]
}

func (c *Context) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Initialized
}

func (c *Context) CreateBuffer() renderer.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailAllocations {
		c.record("CreateBuffer")
		return 0
	}
	b := renderer.Buffer(c.id())
	c.buffers[b] = nil
	c.record("CreateBuffer", b)
	return b
}

func (c *Context) BindArrayBuffer(buffer renderer.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bound = buffer
	c.record("BindArrayBuffer", buffer)
}

func (c *Context) ArrayBufferData(data []float32, usage renderer.BufferUsage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]float32, len(data))
	copy(cp, data)
	c.buffers[c.bound] = cp
	c.record("ArrayBufferData", len(data), usage)
}

func (c *Context) DeleteBuffer(buffer renderer.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.buffers, buffer)
	c.record("DeleteBuffer", buffer)
}

func (c *Context) CreateShader(stage renderer.ShaderStage) renderer.ShaderHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := renderer.ShaderHandle(c.id())
	c.shaders[s] = false
	c.record("CreateShader", stage)
	return s
}

func (c *Context) ShaderSource(shader renderer.ShaderHandle, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[shader] = source
	c.record("ShaderSource", shader)
}

func (c *Context) CompileShader(shader renderer.ShaderHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, fail := c.FailCompile[c.sources[shader]]
	c.shaders[shader] = !fail
	c.record("CompileShader", shader)
}

func (c *Context) ShaderCompiled(shader renderer.ShaderHandle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shaders[shader]
}

func (c *Context) ShaderInfoLog(shader renderer.ShaderHandle) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.FailCompile[c.sources[shader]]
}

func (c *Context) DeleteShader(shader renderer.ShaderHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.shaders, shader)
	delete(c.sources, shader)
	c.record("DeleteShader", shader)
}

func (c *Context) CreateProgram() renderer.ProgramHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := renderer.ProgramHandle(c.id())
	c.programs[p] = false
	c.record("CreateProgram", p)
	return p
}

func (c *Context) AttachShader(program renderer.ProgramHandle, shader renderer.ShaderHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("AttachShader", program, shader)
}

func (c *Context) DetachShader(program renderer.ProgramHandle, shader renderer.ShaderHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DetachShader", program, shader)
}

func (c *Context) LinkProgram(program renderer.ProgramHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programs[program] = !c.FailLink
	c.record("LinkProgram", program)
}

func (c *Context) ProgramLinked(program renderer.ProgramHandle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.programs[program]
}

func (c *Context) ProgramInfoLog(program renderer.ProgramHandle) string {
	if c.FailLink {
		return "link failed"
	}
	return ""
}

func (c *Context) UseProgram(program renderer.ProgramHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("UseProgram", program)
}

func (c *Context) DeleteProgram(program renderer.ProgramHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.programs, program)
	c.record("DeleteProgram", program)
}

// Attribute and uniform locations are fixed per name so tests can address them.
var locations = map[string]int32{
	renderer.AttribPosition:          0,
	renderer.AttribTextureCoordinate: 1,
	renderer.UniformPixelColor:       10,
	renderer.UniformModelMatrix:      11,
	renderer.UniformViewMatrix:       12,
	renderer.UniformSampler:          13,
}

func (c *Context) AttribLocation(program renderer.ProgramHandle, name string) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.MissingAttribs[name] {
		return -1
	}
	if loc, ok := locations[name]; ok {
		return loc
	}
	return -1
}

func (c *Context) UniformLocation(program renderer.ProgramHandle, name string) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if loc, ok := locations[name]; ok {
		return loc
	}
	return -1
}

func (c *Context) VertexAttribPointer(location uint32, size int32, stride int32, offset int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attribs[location] = c.bound
	c.record("VertexAttribPointer", location, size)
}

func (c *Context) EnableVertexAttribArray(location uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("EnableVertexAttribArray", location)
}

func (c *Context) Uniform4f(location int32, value [4]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uniforms[location] = value
	c.record("Uniform4f", location)
}

func (c *Context) UniformMatrix4(location int32, value mgl32.Mat4) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uniforms[location] = value
	c.record("UniformMatrix4", location)
}

func (c *Context) Uniform1i(location int32, value int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uniforms[location] = value
	c.record("Uniform1i", location)
}

func (c *Context) CreateTexture() renderer.TextureHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := renderer.TextureHandle(c.id())
	c.textures[t] = texture{}
	c.record("CreateTexture", t)
	return t
}

func (c *Context) UploadTexture(tex renderer.TextureHandle, width, height int, rgba []uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.textures[tex] = texture{width: width, height: height, pixels: rgba}
	c.record("UploadTexture", tex, width, height)
}

func (c *Context) ActiveTexture(unit uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("ActiveTexture", unit)
}

func (c *Context) BindTexture(tex renderer.TextureHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BindTexture", tex)
}

func (c *Context) DeleteTexture(tex renderer.TextureHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.textures, tex)
	c.record("DeleteTexture", tex)
}

func (c *Context) DrawArrays(mode renderer.DrawMode, first, count int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DrawArrays", mode, first, count)
}

func (c *Context) Viewport(x, y, width, height int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Viewport", x, y, width, height)
}

func (c *Context) Scissor(x, y, width, height int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Scissor", x, y, width, height)
}

func (c *Context) Enable(capability renderer.Capability) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled[capability] = true
	c.record("Enable", capability)
}

func (c *Context) Disable(capability renderer.Capability) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled[capability] = false
	c.record("Disable", capability)
}

func (c *Context) ClearColor(r, g, b, a float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("ClearColor", r, g, b, a)
}

func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Clear")
}

var _ renderer.Context = (*Context)(nil)

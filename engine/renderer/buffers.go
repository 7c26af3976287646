package renderer

import (
	"fmt"

	"github.com/spaghettifunk/anima2d/engine/core"
)

// Vertex positions of the unit square, as a triangle strip:
// right-top, left-top, right-bottom, left-bottom.
var verticesOfSquare = []float32{
	0.5, 0.5, 0.0,
	-0.5, 0.5, 0.0,
	0.5, -0.5, 0.0,
	-0.5, -0.5, 0.0,
}

// Texture coordinates matching verticesOfSquare, covering the full image.
var textureCoordinates = []float32{
	1.0, 1.0,
	0.0, 1.0,
	1.0, 0.0,
	0.0, 0.0,
}

const (
	// floats per vertex position
	VertexComponents int32 = 3
	// floats per texture coordinate
	TexCoordComponents int32 = 2
	// vertices in the unit square strip
	SquareVertexCount int32 = 4
)

// Buffers owns the unit-square vertex buffer and its texture-coordinate
// buffer. Exactly one of each exists between Init and CleanUp.
type Buffers struct {
	gl             Context
	vertexBuffer   Buffer
	texCoordBuffer Buffer
}

func NewBuffers(gl Context) *Buffers {
	return &Buffers{gl: gl}
}

// Init allocates both buffers on the graphics context.
func (b *Buffers) Init() error {
	if b.gl == nil || !b.gl.IsInitialized() {
		err := fmt.Errorf("buffers init: graphics context is not initialized: %w", core.ErrFatalInit)
		core.LogError(err.Error())
		return err
	}
	if b.vertexBuffer != 0 {
		core.LogWarn("buffers already initialized, nothing was done")
		return nil
	}

	vb := b.gl.CreateBuffer()
	if vb == 0 {
		err := fmt.Errorf("buffers init: failed to allocate vertex buffer: %w", core.ErrFatalInit)
		core.LogError(err.Error())
		return err
	}
	b.gl.BindArrayBuffer(vb)
	b.gl.ArrayBufferData(verticesOfSquare, BufferUsageStaticDraw)

	tb := b.gl.CreateBuffer()
	if tb == 0 {
		b.gl.DeleteBuffer(vb)
		err := fmt.Errorf("buffers init: failed to allocate texture coordinate buffer: %w", core.ErrFatalInit)
		core.LogError(err.Error())
		return err
	}
	b.gl.BindArrayBuffer(tb)
	b.gl.ArrayBufferData(textureCoordinates, BufferUsageStaticDraw)

	b.vertexBuffer = vb
	b.texCoordBuffer = tb
	core.LogDebug("unit square buffers allocated (vertex=%d, texcoord=%d)", vb, tb)
	return nil
}

// CleanUp releases both buffers. Safe to call more than once.
func (b *Buffers) CleanUp() {
	if b.gl == nil {
		return
	}
	if b.vertexBuffer != 0 {
		b.gl.DeleteBuffer(b.vertexBuffer)
		b.vertexBuffer = 0
	}
	if b.texCoordBuffer != 0 {
		b.gl.DeleteBuffer(b.texCoordBuffer)
		b.texCoordBuffer = 0
	}
}

func (b *Buffers) VertexBuffer() Buffer {
	return b.vertexBuffer
}

func (b *Buffers) TexCoordBuffer() Buffer {
	return b.texCoordBuffer
}

// CreateDynamicBuffer allocates a buffer meant to be rewritten every frame,
// such as a sprite's per-instance texture coordinates.
func (b *Buffers) CreateDynamicBuffer(data []float32) (Buffer, error) {
	if b.gl == nil || !b.gl.IsInitialized() {
		return 0, fmt.Errorf("dynamic buffer: graphics context is not initialized: %w", core.ErrFatalInit)
	}
	buf := b.gl.CreateBuffer()
	if buf == 0 {
		return 0, fmt.Errorf("dynamic buffer: allocation failed: %w", core.ErrFatalInit)
	}
	b.gl.BindArrayBuffer(buf)
	b.gl.ArrayBufferData(data, BufferUsageDynamicDraw)
	return buf, nil
}

// UpdateDynamicBuffer replaces the contents of a buffer created by CreateDynamicBuffer.
func (b *Buffers) UpdateDynamicBuffer(buf Buffer, data []float32) {
	b.gl.BindArrayBuffer(buf)
	b.gl.ArrayBufferData(data, BufferUsageDynamicDraw)
}

func (b *Buffers) DeleteBuffer(buf Buffer) {
	if buf != 0 {
		b.gl.DeleteBuffer(buf)
	}
}

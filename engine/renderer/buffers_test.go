package renderer_test

import (
	"testing"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffersInitUploadsUnitSquare(t *testing.T) {
	gl := mock.NewContext()
	b := renderer.NewBuffers(gl)
	require.NoError(t, b.Init())

	assert.NotZero(t, b.VertexBuffer())
	assert.NotZero(t, b.TexCoordBuffer())
	assert.NotEqual(t, b.VertexBuffer(), b.TexCoordBuffer())

	vertices, ok := gl.BufferData(b.VertexBuffer())
	require.True(t, ok)
	assert.Equal(t, []float32{
		0.5, 0.5, 0,
		-0.5, 0.5, 0,
		0.5, -0.5, 0,
		-0.5, -0.5, 0,
	}, vertices)

	uvs, ok := gl.BufferData(b.TexCoordBuffer())
	require.True(t, ok)
	assert.Equal(t, []float32{1, 1, 0, 1, 1, 0, 0, 0}, uvs)
	assert.Equal(t, 2, gl.LiveBuffers())
}

func TestBuffersInitTwiceKeepsOnePair(t *testing.T) {
	gl := mock.NewContext()
	b := renderer.NewBuffers(gl)
	require.NoError(t, b.Init())
	vb := b.VertexBuffer()

	require.NoError(t, b.Init())
	assert.Equal(t, vb, b.VertexBuffer())
	assert.Equal(t, 2, gl.LiveBuffers())
}

func TestBuffersInitWithoutContext(t *testing.T) {
	gl := mock.NewContext()
	gl.Initialized = false

	err := renderer.NewBuffers(gl).Init()
	assert.ErrorIs(t, err, core.ErrFatalInit)

	err = renderer.NewBuffers(nil).Init()
	assert.ErrorIs(t, err, core.ErrFatalInit)
}

func TestBuffersInitAllocationFailure(t *testing.T) {
	gl := mock.NewContext()
	gl.FailAllocations = true

	b := renderer.NewBuffers(gl)
	assert.ErrorIs(t, b.Init(), core.ErrFatalInit)
	assert.Zero(t, b.VertexBuffer())
}

func TestBuffersCleanUpIsIdempotent(t *testing.T) {
	gl := mock.NewContext()
	b := renderer.NewBuffers(gl)
	require.NoError(t, b.Init())

	b.CleanUp()
	assert.Zero(t, b.VertexBuffer())
	assert.Zero(t, b.TexCoordBuffer())
	assert.Equal(t, 0, gl.LiveBuffers())
	deletes := gl.CountCalls("DeleteBuffer")

	b.CleanUp()
	assert.Equal(t, deletes, gl.CountCalls("DeleteBuffer"))

	// a fresh Init after CleanUp allocates a new pair
	require.NoError(t, b.Init())
	assert.Equal(t, 2, gl.LiveBuffers())
}

func TestDynamicBufferUpdates(t *testing.T) {
	gl := mock.NewContext()
	b := renderer.NewBuffers(gl)
	require.NoError(t, b.Init())

	buf, err := b.CreateDynamicBuffer([]float32{1, 2})
	require.NoError(t, err)
	b.UpdateDynamicBuffer(buf, []float32{3, 4, 5})

	data, _ := gl.BufferData(buf)
	assert.Equal(t, []float32{3, 4, 5}, data)

	b.DeleteBuffer(buf)
	_, ok := gl.BufferData(buf)
	assert.False(t, ok)
}

package components

import (
	"context"
	"io"
	"testing"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/mock"
	"github.com/spaghettifunk/anima2d/engine/resources"
	"github.com/stretchr/testify/require"
)

func init() {
	core.SetLogOutput(io.Discard)
}

// sources serves shader text from memory.
type sources map[string]string

func (s sources) Load(path string) *core.Promise { return core.ResolvedPromise() }
func (s sources) Reload(path string) *core.Promise { return core.ResolvedPromise() }
func (s sources) Unload(path string) bool { return true }
func (s sources) Get(path string) (string, bool) {
	src, ok := s[path]
	return src, ok
}

type testContext struct {
	gl      *mock.Context
	buffers *renderer.Buffers
	shaders *renderer.ShaderResources
}

func (c *testContext) GL() renderer.Context { return c.gl }
func (c *testContext) Buffers() *renderer.Buffers { return c.buffers }
func (c *testContext) Shaders() *renderer.ShaderResources { return c.shaders }

func newTestContext(t *testing.T) *testContext {
	t.Helper()
	gl := mock.NewContext()
	buffers := renderer.NewBuffers(gl)
	require.NoError(t, buffers.Init())

	paths := renderer.DefaultShaderPaths()
	shaders := renderer.NewShaderResources(gl, buffers, paths)
	loads := resources.NewSynchronizer()
	shaders.Init(sources{
		paths.SimpleVS:  "simple vs",
		paths.SimpleFS:  "simple fs",
		paths.TextureVS: "texture vs",
		paths.TextureFS: "texture fs",
	}, loads)
	require.NoError(t, loads.WaitOnPromises(context.Background()))
	require.Equal(t, renderer.ShaderStateReady, shaders.State())

	return &testContext{gl: gl, buffers: buffers, shaders: shaders}
}

func newTestTexture(t *testing.T, gl renderer.Context, w, h int) *resources.Texture {
	t.Helper()
	tex := &resources.Texture{
		Path:   "sheet.png",
		Width:  w,
		Height: h,
		Pixels: make([]uint8, w*h*4),
	}
	require.NoError(t, tex.Upload(gl))
	return tex
}

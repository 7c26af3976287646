package testbed

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima2d/engine"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
	"github.com/spaghettifunk/anima2d/engine/renderer/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statusFont = `info face="Status" size=8 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=0 aa=1 padding=0,0,0,0 spacing=0,0 outline=0
common lineHeight=8 base=7 scaleW=64 scaleH=8 pages=1 packed=0 alphaChnl=0 redChnl=4 greenChnl=4 blueChnl=4
page id=0 file="status_0.png"
chars count=5
char id=32   x=0     y=0     width=0     height=0     xoffset=0     yoffset=0     xadvance=4     page=0  chnl=15
char id=48   x=0     y=0     width=6     height=8     xoffset=0     yoffset=0     xadvance=7     page=0  chnl=15
char id=70   x=6     y=0     width=6     height=8     xoffset=0     yoffset=0     xadvance=7     page=0  chnl=15
char id=80   x=12    y=0     width=6     height=8     xoffset=0     yoffset=0     xadvance=7     page=0  chnl=15
char id=83   x=18    y=0     width=6     height=8     xoffset=0     yoffset=0     xadvance=7     page=0  chnl=15
kernings count=0
`

func init() {
	core.SetLogOutput(io.Discard)
}

type frames struct {
	next uint64
	fns  map[uint64]func()
}

func (f *frames) RequestFrame(fn func()) uint64 {
	f.next++
	f.fns[f.next] = fn
	return f.next
}

func (f *frames) CancelFrame(id uint64) { delete(f.fns, id) }

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func writeAssets(t *testing.T) (string, renderer.ShaderPaths) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "fonts"), 0o755))
	writePNG(t, filepath.Join(root, "minion_sprite.png"), 1024, 512)
	writePNG(t, filepath.Join(root, "consolas-72.png"), 256, 256)
	writePNG(t, filepath.Join(root, "fonts", "status_0.png"), 64, 8)
	require.NoError(t, os.WriteFile(filepath.Join(root, "fonts", "status.fnt"), []byte(statusFont), 0o644))

	paths := renderer.ShaderPaths{
		SimpleVS:  filepath.Join(root, "simple_vs.glsl"),
		SimpleFS:  filepath.Join(root, "simple_fs.glsl"),
		TextureVS: filepath.Join(root, "texture_vs.glsl"),
		TextureFS: filepath.Join(root, "texture_fs.glsl"),
	}
	for _, p := range []string{paths.SimpleVS, paths.SimpleFS, paths.TextureVS, paths.TextureFS} {
		require.NoError(t, os.WriteFile(p, []byte(filepath.Base(p)), 0o644))
	}
	return root, paths
}

func startGame(t *testing.T) (*TestGame, *engine.Engine, *mock.Context) {
	t.Helper()
	root, paths := writeAssets(t)
	config := engine.DefaultApplicationConfig()
	config.Shaders = paths
	config.LogLevel = ""

	gl := mock.NewContext()
	e, err := engine.New(config, gl, &frames{fns: map[uint64]func(){}})
	require.NoError(t, err)
	require.NoError(t, e.Init())

	g := NewTestGame(e, root)
	require.NoError(t, e.Start(context.Background(), g))
	t.Cleanup(e.CleanUp)
	return g, e, gl
}

// step samples input and runs one fixed update, as the loop does.
func step(t *testing.T, e *engine.Engine, g *TestGame) {
	t.Helper()
	e.Input().Update()
	require.NoError(t, g.Update(engine.MPF))
}

func TestGameInit(t *testing.T) {
	g, _, gl := startGame(t)

	hero := g.hero.Sprite().UVRect()
	assert.InDelta(t, 0, hero.Left, 1e-6)
	assert.InDelta(t, 120.0/1024, hero.Right, 1e-6)
	assert.InDelta(t, 0, hero.Bottom, 1e-6)
	assert.InDelta(t, 180.0/512, hero.Top, 1e-6)

	portal := g.portal.Sprite().UVRect()
	assert.InDelta(t, 130.0/1024, portal.Left, 1e-6)
	assert.InDelta(t, 310.0/1024, portal.Right, 1e-6)

	assert.Equal(t, components.AnimateForward, g.rightMinion.Animation().Type())
	assert.Equal(t, 50, g.rightMinion.Animation().UpdateInterval())
	assert.Equal(t, 5, g.rightMinion.Animation().NumElements())
	// sprite sheet, font image and the status font page
	assert.Equal(t, 3, gl.LiveTextures())
}

func TestGameHeroMovesAndWraps(t *testing.T) {
	g, e, _ := startGame(t)

	e.Input().ProcessKey(core.KEY_RIGHT, true)
	step(t, e, g)
	assert.InDelta(t, 20.05, g.hero.Transform().XPos(), 1e-4)

	g.hero.Transform().SetXPos(30)
	step(t, e, g)
	assert.Equal(t, float32(12), g.hero.Transform().XPos())
	e.Input().ProcessKey(core.KEY_RIGHT, false)

	e.Input().ProcessKey(core.KEY_LEFT, true)
	g.hero.Transform().SetXPos(11)
	step(t, e, g)
	assert.Equal(t, float32(20), g.hero.Transform().XPos())
}

func TestGamePortalTintCycles(t *testing.T) {
	g, e, _ := startGame(t)
	assert.InDelta(t, 0.2, g.portal.Color()[3], 1e-6)

	prev := g.portal.Color()[3]
	for i := 0; i < 17 && g.portal.Color()[3] > 0; i++ {
		prev = g.portal.Color()[3]
		step(t, e, g)
	}
	// the tint grows until it passes fully opaque, then starts over
	assert.Equal(t, float32(0), g.portal.Color()[3])
	assert.InDelta(t, 0.95, prev, 1e-4)
}

func TestGameZoomsTextureCoordinates(t *testing.T) {
	g, e, _ := startGame(t)
	step(t, e, g)

	font := g.fontImage.Sprite().UVRect()
	assert.InDelta(t, 0.001, font.Bottom, 1e-6)
	assert.InDelta(t, 0.999, font.Right, 1e-6)

	minion := g.minion.Sprite().UVRect()
	assert.InDelta(t, 0.001, minion.Left, 1e-6)
	assert.InDelta(t, 0.999, minion.Top, 1e-6)
}

func TestGameAnimationKeys(t *testing.T) {
	g, e, _ := startGame(t)
	anim := g.rightMinion.Animation()

	e.Input().ProcessKey(core.KEY_4, true)
	step(t, e, g)
	assert.Equal(t, 48, anim.UpdateInterval())
	// held keys click once
	step(t, e, g)
	assert.Equal(t, 48, anim.UpdateInterval())
	e.Input().ProcessKey(core.KEY_4, false)

	e.Input().ProcessKey(core.KEY_1, true)
	step(t, e, g)
	assert.Equal(t, components.AnimateBackward, anim.Type())
	assert.Equal(t, 4, anim.CurrentElement())
}

func TestGameDraw(t *testing.T) {
	g, _, gl := startGame(t)
	gl.ResetCalls()
	require.NoError(t, g.Draw())

	// six sprites plus "FPS 0" without the space
	assert.Equal(t, 10, gl.CountCalls("DrawArrays"))
	names := gl.CallNames()
	assert.Equal(t, []string{"ClearColor", "Clear", "Viewport"}, names[:3])
	assert.Equal(t, "FPS 0", g.status.Text())
}

func TestGameUnloadReleasesTextures(t *testing.T) {
	_, e, gl := startGame(t)
	e.CleanUp()
	assert.Equal(t, 0, gl.LiveTextures())
	assert.Equal(t, 0, gl.LiveBuffers())
}

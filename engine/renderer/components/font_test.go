package components

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima2d/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const glyphFont = `info face="Glyphs" size=16 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=1,1 outline=0
common lineHeight=16 base=12 scaleW=32 scaleH=32 pages=1 packed=0 alphaChnl=0 redChnl=4 greenChnl=4 blueChnl=4
page id=0 file="glyphs_0.png"
chars count=3
char id=32   x=0     y=0     width=0     height=0     xoffset=0     yoffset=0     xadvance=4     page=0  chnl=15
char id=72   x=0     y=0     width=8     height=12    xoffset=0     yoffset=2     xadvance=8     page=0  chnl=15
char id=105  x=8     y=0     width=4     height=12    xoffset=0     yoffset=2     xadvance=4     page=0  chnl=15
kernings count=0
`

func loadGlyphFont(t *testing.T, ctx *testContext) (*resources.FontLoader, *resources.Font) {
	t.Helper()
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "glyphs_0.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 32, 32))))
	require.NoError(t, f.Close())

	path := filepath.Join(dir, "glyphs.fnt")
	require.NoError(t, os.WriteFile(path, []byte(glyphFont), 0o644))

	loads := resources.NewSynchronizer()
	fonts := resources.NewFontLoader(resources.NewTextureLoader(ctx.gl, loads), loads)
	fonts.Load(path)
	require.NoError(t, loads.WaitOnPromises(context.Background()))

	font, ok := fonts.Get(path)
	require.True(t, ok)
	return fonts, font
}

func TestFontRenderableDrawsOneQuadPerVisibleGlyph(t *testing.T) {
	ctx := newTestContext(t)
	fonts, font := loadGlyphFont(t, ctx)

	text, err := NewFontRenderable(ctx, fonts, font, "Hi H")
	require.NoError(t, err)
	text.Transform().SetPosition(0, 0)
	text.Transform().SetSize(0, 2)

	ctx.gl.ResetCalls()
	require.NoError(t, text.Draw(NewCamera(mgl32.Vec2{0, 0}, 10, [4]int32{0, 0, 100, 100})))

	// the space has no quad
	assert.Equal(t, 3, ctx.gl.CountCalls("DrawArrays"))
	// (8 + 4 + 4 + 8) pixels at 2/16 world units per pixel
	assert.InDelta(t, 3, text.Width(), 1e-6)
	text.CleanUp()
}

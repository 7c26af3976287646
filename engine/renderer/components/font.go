package components

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/resources"
)

/**
 * @brief A line of text drawn with a bitmap font, one sprite quad per glyph.
 * The transform's position is the left end of the line's vertical center and
 * its height is the line height in world units.
 */
type FontRenderable struct {
	id    uuid.UUID
	font  *resources.Font
	text  string
	xform *math.Transform
	color [4]float32

	// one quad per font page, repositioned for each glyph
	pages []*Renderable
}

// NewFontRenderable needs every page texture of font to be loaded.
func NewFontRenderable(ctx RenderContext, fonts *resources.FontLoader, font *resources.Font, text string) (*FontRenderable, error) {
	if font == nil || font.LineHeight <= 0 {
		return nil, fmt.Errorf("font renderable needs a loaded font: %w", core.ErrConfiguration)
	}
	f := &FontRenderable{
		id:    uuid.New(),
		font:  font,
		text:  text,
		xform: math.NewTransform(),
		color: [4]float32{0, 0, 0, 1},
		pages: make([]*Renderable, len(font.Pages)),
	}
	for i := range font.Pages {
		tex, ok := fonts.PageTexture(font, i)
		if !ok {
			continue
		}
		quad, err := NewSpriteRenderable(ctx, tex)
		if err != nil {
			f.CleanUp()
			return nil, err
		}
		f.pages[i] = quad
	}
	return f, nil
}

func (f *FontRenderable) Draw(camera *Camera) error {
	scale := f.xform.Height() / float32(f.font.LineHeight)
	x := f.xform.XPos()
	lineTop := f.xform.YPos() + f.xform.Height()/2

	var prev rune
	for i, r := range f.text {
		g, ok := f.font.Glyph(r)
		if !ok {
			continue
		}
		if i > 0 {
			x += float32(f.font.Kerning(prev, r)) * scale
		}
		prev = r

		if g.Width > 0 && g.Height > 0 && g.Page < len(f.pages) && f.pages[g.Page] != nil {
			quad := f.pages[g.Page]
			_, texH := quad.Sprite().TextureSize()
			w, h := float32(g.Width), float32(g.Height)

			quad.Sprite().SetElementPixelPositions(texH-float32(g.Y), float32(g.X), w, h)
			quad.Transform().SetSize(w*scale, h*scale)
			quad.Transform().SetPosition(
				x+(float32(g.XOffset)+w/2)*scale,
				lineTop-(float32(g.YOffset)+h/2)*scale,
			)
			quad.SetColor(f.color)
			if err := quad.Draw(camera); err != nil {
				return err
			}
		}
		x += float32(g.XAdvance) * scale
	}
	return nil
}

// Width is the advance of the whole text in world units.
func (f *FontRenderable) Width() float32 {
	scale := f.xform.Height() / float32(f.font.LineHeight)
	var width float32
	var prev rune
	for i, r := range f.text {
		g, ok := f.font.Glyph(r)
		if !ok {
			continue
		}
		if i > 0 {
			width += float32(f.font.Kerning(prev, r)) * scale
		}
		width += float32(g.XAdvance) * scale
		prev = r
	}
	return width
}

func (f *FontRenderable) CleanUp() {
	for _, quad := range f.pages {
		if quad != nil {
			quad.CleanUp()
		}
	}
}

func (f *FontRenderable) SetText(text string) { f.text = text }
func (f *FontRenderable) Text() string { return f.text }
func (f *FontRenderable) ID() uuid.UUID { return f.id }
func (f *FontRenderable) Transform() *math.Transform { return f.xform }
func (f *FontRenderable) SetColor(color [4]float32) { f.color = math.ClampColor(color) }
func (f *FontRenderable) Color() [4]float32 { return f.color }

package components

import (
	"fmt"

	"github.com/spaghettifunk/anima2d/engine/core"
)

// Indices into the 8-float UV array. The array follows the unit quad's vertex
// order: right-top, left-top, right-bottom, left-bottom.
const (
	UVRight  = 0
	UVTop    = 1
	UVLeft   = 2
	UVBottom = 5
)

// UVRect is the rectangle view of a UV array.
type UVRect struct {
	Left   float32
	Right  float32
	Bottom float32
	Top    float32
}

/** @brief The sub-rectangle of a texture a sprite samples from. */
type SpriteElement struct {
	uv            [8]float32
	textureWidth  float32
	textureHeight float32
}

// NewSpriteElement covers the full texture. Pixel conversions use the given
// texture size, which must be positive.
func NewSpriteElement(textureWidth, textureHeight int) (*SpriteElement, error) {
	if textureWidth <= 0 || textureHeight <= 0 {
		return nil, fmt.Errorf("sprite element needs a sized texture, got %dx%d: %w", textureWidth, textureHeight, core.ErrConfiguration)
	}
	e := &SpriteElement{
		textureWidth:  float32(textureWidth),
		textureHeight: float32(textureHeight),
	}
	e.SetElementUVCoordinate(0, 1, 0, 1)
	return e, nil
}

func (e *SpriteElement) SetElementUVCoordinate(left, right, bottom, top float32) {
	e.uv = [8]float32{
		right, top,
		left, top,
		right, bottom,
		left, bottom,
	}
}

// SetElementPixelPositions selects the element whose top-left corner is at
// (left, top) in pixels, with top measured from the bottom of the image.
func (e *SpriteElement) SetElementPixelPositions(top, left, width, height float32) {
	e.SetElementUVCoordinate(
		left/e.textureWidth,
		(left+width)/e.textureWidth,
		(top-height)/e.textureHeight,
		top/e.textureHeight,
	)
}

// ElementUVCoordinateArray exposes the live array. Changes show on the next draw.
func (e *SpriteElement) ElementUVCoordinateArray() *[8]float32 {
	return &e.uv
}

func (e *SpriteElement) UVRect() UVRect {
	return UVRect{
		Left:   e.uv[UVLeft],
		Right:  e.uv[UVRight],
		Bottom: e.uv[UVBottom],
		Top:    e.uv[UVTop],
	}
}

func (e *SpriteElement) TextureSize() (float32, float32) {
	return e.textureWidth, e.textureHeight
}

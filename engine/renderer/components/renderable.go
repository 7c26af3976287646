package components

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/resources"
)

// RenderContext is what renderables need from the engine to draw.
type RenderContext interface {
	GL() renderer.Context
	Buffers() *renderer.Buffers
	Shaders() *renderer.ShaderResources
}

/**
 * @brief A quad drawn with a transform and a color. Optional components add
 * a texture, a sprite element (sub-rectangle of the texture) and a sprite
 * animation driving that element.
 */
type Renderable struct {
	id     uuid.UUID
	ctx    RenderContext
	shader *renderer.ShaderProgram
	xform  *math.Transform
	color  [4]float32

	texture   *resources.Texture
	sprite    *SpriteElement
	animation *SpriteAnimation
	uvBuffer  renderer.Buffer
}

func newRenderable(ctx RenderContext, shader *renderer.ShaderProgram) (*Renderable, error) {
	if shader == nil {
		return nil, fmt.Errorf("renderable created before shaders are ready: %w", core.ErrConfiguration)
	}
	return &Renderable{
		id:     uuid.New(),
		ctx:    ctx,
		shader: shader,
		xform:  math.NewTransform(),
		color:  [4]float32{1, 1, 1, 1},
	}, nil
}

// NewRenderable is a flat colored quad.
func NewRenderable(ctx RenderContext) (*Renderable, error) {
	return newRenderable(ctx, ctx.Shaders().ConstColorShader())
}

// NewTextureRenderable maps the whole texture on the quad. The color's alpha
// is the tint amount.
func NewTextureRenderable(ctx RenderContext, texture *resources.Texture) (*Renderable, error) {
	if err := checkTexture(texture); err != nil {
		return nil, err
	}
	r, err := newRenderable(ctx, ctx.Shaders().TextureShader())
	if err != nil {
		return nil, err
	}
	r.texture = texture
	r.color = [4]float32{1, 1, 1, 0}
	return r, nil
}

// NewSpriteRenderable samples a sub-rectangle of the texture, initially all of it.
func NewSpriteRenderable(ctx RenderContext, texture *resources.Texture) (*Renderable, error) {
	if err := checkTexture(texture); err != nil {
		return nil, err
	}
	r, err := newRenderable(ctx, ctx.Shaders().SpriteShader())
	if err != nil {
		return nil, err
	}
	r.texture = texture
	r.color = [4]float32{1, 1, 1, 0}

	sprite, err := NewSpriteElement(texture.Width, texture.Height)
	if err != nil {
		return nil, err
	}
	buf, err := ctx.Buffers().CreateDynamicBuffer(sprite.ElementUVCoordinateArray()[:])
	if err != nil {
		return nil, err
	}
	r.sprite = sprite
	r.uvBuffer = buf
	return r, nil
}

// NewSpriteAnimateRenderable is a sprite whose element is driven by an animation.
func NewSpriteAnimateRenderable(ctx RenderContext, texture *resources.Texture) (*Renderable, error) {
	r, err := NewSpriteRenderable(ctx, texture)
	if err != nil {
		return nil, err
	}
	r.animation = NewSpriteAnimation(r.sprite, r.id)
	return r, nil
}

func checkTexture(texture *resources.Texture) error {
	if texture == nil {
		return fmt.Errorf("textured renderable without a texture: %w", core.ErrConfiguration)
	}
	if texture.Width <= 0 || texture.Height <= 0 {
		return fmt.Errorf("texture %s is not loaded: %w", texture.Path, core.ErrConfiguration)
	}
	return nil
}

// Draw renders the quad through camera. The camera must have been activated
// for this frame with SetViewAndCameraMatrix.
func (r *Renderable) Draw(camera *Camera) error {
	gl := r.ctx.GL()
	if r.texture != nil {
		if err := r.texture.Activate(gl); err != nil {
			return err
		}
	}

	model := r.xform.ModelMatrix()
	view := camera.CameraMatrix()
	if r.sprite != nil {
		r.ctx.Buffers().UpdateDynamicBuffer(r.uvBuffer, r.sprite.ElementUVCoordinateArray()[:])
		r.shader.ActivateWithTexCoords(r.color, model, view, r.uvBuffer)
	} else {
		r.shader.Activate(r.color, model, view)
	}
	gl.DrawArrays(renderer.DrawModeTriangleStrip, 0, renderer.SquareVertexCount)
	return nil
}

// UpdateAnimation advances the sprite animation, if there is one.
func (r *Renderable) UpdateAnimation() {
	if r.animation != nil {
		r.animation.UpdateAnimation()
	}
}

// CleanUp releases the per-instance texture coordinate buffer.
func (r *Renderable) CleanUp() {
	if r.uvBuffer != 0 {
		r.ctx.Buffers().DeleteBuffer(r.uvBuffer)
		r.uvBuffer = 0
	}
}

func (r *Renderable) ID() uuid.UUID { return r.id }

func (r *Renderable) Transform() *math.Transform { return r.xform }

// SetColor clamps every channel to [0, 1].
func (r *Renderable) SetColor(color [4]float32) {
	r.color = math.ClampColor(color)
}

func (r *Renderable) Color() [4]float32 { return r.color }

func (r *Renderable) Shader() *renderer.ShaderProgram { return r.shader }

func (r *Renderable) Texture() *resources.Texture { return r.texture }

// Sprite is nil unless the renderable was created as a sprite.
func (r *Renderable) Sprite() *SpriteElement { return r.sprite }

// Animation is nil unless the renderable was created as an animated sprite.
func (r *Renderable) Animation() *SpriteAnimation { return r.animation }

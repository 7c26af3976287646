package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer"
)

// Viewport indices.
const (
	ViewportOrgX = iota
	ViewportOrgY
	ViewportWidth
	ViewportHeight
)

const (
	cameraEyeZ = 10
	cameraNear = 0
	cameraFar  = 1000
)

/**
 * @brief An orthographic camera mapping a rectangle of the world onto a
 * viewport of the canvas. The world height follows from the viewport's
 * aspect ratio.
 */
type Camera struct {
	/** @brief World coordinate at the center of the view. */
	wcCenter mgl32.Vec2
	/** @brief Width of the visible world region. */
	wcWidth float32
	/** @brief Pixel rectangle: origin x, origin y, width, height. */
	viewport [4]int32
	/** @brief Color the viewport is cleared to. */
	backgroundColor [4]float32

	/** @brief Internal flag used to determine when the matrices need to be rebuilt. */
	isDirty      bool
	viewMatrix   mgl32.Mat4
	cameraMatrix mgl32.Mat4
}

func NewCamera(wcCenter mgl32.Vec2, wcWidth float32, viewport [4]int32) *Camera {
	return &Camera{
		wcCenter:        wcCenter,
		wcWidth:         wcWidth,
		viewport:        viewport,
		backgroundColor: [4]float32{0.8, 0.8, 0.8, 1},
		isDirty:         true,
	}
}

func (c *Camera) SetWCCenter(x, y float32) {
	c.wcCenter = mgl32.Vec2{x, y}
	c.isDirty = true
}

func (c *Camera) WCCenter() mgl32.Vec2 {
	return c.wcCenter
}

func (c *Camera) SetWCWidth(width float32) {
	c.wcWidth = width
	c.isDirty = true
}

func (c *Camera) WCWidth() float32 {
	return c.wcWidth
}

func (c *Camera) WCHeight() float32 {
	if c.viewport[ViewportWidth] == 0 {
		return 0
	}
	ratio := float32(c.viewport[ViewportHeight]) / float32(c.viewport[ViewportWidth])
	return c.wcWidth * ratio
}

func (c *Camera) SetViewport(viewport [4]int32) {
	c.viewport = viewport
	c.isDirty = true
}

func (c *Camera) Viewport() [4]int32 {
	return c.viewport
}

func (c *Camera) SetBackgroundColor(color [4]float32) {
	c.backgroundColor = math.ClampColor(color)
}

func (c *Camera) BackgroundColor() [4]float32 {
	return c.backgroundColor
}

// SetViewAndCameraMatrix restricts drawing to the viewport, clears it to the
// background color and prepares the matrices for this frame's draws.
func (c *Camera) SetViewAndCameraMatrix(gl renderer.Context) {
	vp := c.viewport
	gl.Viewport(vp[ViewportOrgX], vp[ViewportOrgY], vp[ViewportWidth], vp[ViewportHeight])
	gl.Scissor(vp[ViewportOrgX], vp[ViewportOrgY], vp[ViewportWidth], vp[ViewportHeight])

	bg := c.backgroundColor
	gl.ClearColor(bg[0], bg[1], bg[2], bg[3])
	// only the scissored area is cleared
	gl.Enable(renderer.CapabilityScissorTest)
	gl.Clear()
	gl.Disable(renderer.CapabilityScissorTest)

	c.update()
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	c.update()
	return c.viewMatrix
}

// CameraMatrix is projection * view, mapping world coordinates to clip space.
func (c *Camera) CameraMatrix() mgl32.Mat4 {
	c.update()
	return c.cameraMatrix
}

func (c *Camera) update() {
	if !c.isDirty {
		return
	}
	center := c.wcCenter
	c.viewMatrix = mgl32.LookAtV(
		mgl32.Vec3{center.X(), center.Y(), cameraEyeZ},
		mgl32.Vec3{center.X(), center.Y(), 0},
		mgl32.Vec3{0, 1, 0},
	)

	halfW := c.wcWidth / 2
	halfH := c.WCHeight() / 2
	projection := mgl32.Ortho(-halfW, halfW, -halfH, halfH, cameraNear, cameraFar)

	c.cameraMatrix = projection.Mul4(c.viewMatrix)
	c.isDirty = false
}

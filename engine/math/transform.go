package math

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
)

/**
 * @brief The 2D transform of a renderable: position, size and rotation
 * around the z axis. NOTE: The properties should not be edited directly,
 * but done via the setters to ensure proper matrix generation.
 */
type Transform struct {
	position mgl32.Vec2
	size     mgl32.Vec2
	// rotation in radians, kept in [0, 2π)
	rotation float32

	isDirty bool
	model   mgl32.Mat4
}

// NewTransform returns a unit-sized transform at the origin.
func NewTransform() *Transform {
	return &Transform{
		size:    mgl32.Vec2{1, 1},
		isDirty: true,
	}
}

func (t *Transform) SetPosition(x, y float32) {
	t.position = mgl32.Vec2{x, y}
	t.isDirty = true
}

func (t *Transform) Position() mgl32.Vec2 {
	return t.position
}

func (t *Transform) XPos() float32 { return t.position.X() }
func (t *Transform) YPos() float32 { return t.position.Y() }

func (t *Transform) SetXPos(x float32) {
	t.position[0] = x
	t.isDirty = true
}

func (t *Transform) SetYPos(y float32) {
	t.position[1] = y
	t.isDirty = true
}

func (t *Transform) IncXPosBy(delta float32) {
	t.position[0] += delta
	t.isDirty = true
}

func (t *Transform) IncYPosBy(delta float32) {
	t.position[1] += delta
	t.isDirty = true
}

func (t *Transform) SetSize(width, height float32) {
	t.size = mgl32.Vec2{width, height}
	t.isDirty = true
}

func (t *Transform) Size() mgl32.Vec2 {
	return t.size
}

func (t *Transform) Width() float32 { return t.size.X() }
func (t *Transform) Height() float32 { return t.size.Y() }

func (t *Transform) IncSizeBy(delta float32) {
	t.size[0] += delta
	t.size[1] += delta
	t.isDirty = true
}

func (t *Transform) SetRotationInRad(radians float32) {
	twoPi := float32(2 * stdmath.Pi)
	r := float32(stdmath.Mod(float64(radians), float64(twoPi)))
	if r < 0 {
		r += twoPi
	}
	t.rotation = r
	t.isDirty = true
}

func (t *Transform) SetRotationInDegree(degrees float32) {
	t.SetRotationInRad(mgl32.DegToRad(degrees))
}

func (t *Transform) IncRotationByDegree(deltaDegrees float32) {
	t.SetRotationInRad(t.rotation + mgl32.DegToRad(deltaDegrees))
}

func (t *Transform) RotationInRad() float32 {
	return t.rotation
}

func (t *Transform) RotationInDegree() float32 {
	return mgl32.RadToDeg(t.rotation)
}

// ModelMatrix returns translate * rotate * scale, recomputed only when dirty.
func (t *Transform) ModelMatrix() mgl32.Mat4 {
	if t == nil {
		return mgl32.Ident4()
	}
	if t.isDirty {
		translation := mgl32.Translate3D(t.position.X(), t.position.Y(), 0)
		rotation := mgl32.HomogRotate3DZ(t.rotation)
		scale := mgl32.Scale3D(t.size.X(), t.size.Y(), 1)
		t.model = translation.Mul4(rotation).Mul4(scale)
		t.isDirty = false
	}
	return t.model
}

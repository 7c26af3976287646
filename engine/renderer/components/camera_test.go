package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/mock"
	"github.com/stretchr/testify/assert"
)

func TestCameraMapsVisibleRegionToClipSpace(t *testing.T) {
	camera := NewCamera(mgl32.Vec2{20, 60}, 20, [4]int32{20, 40, 600, 300})
	assert.InDelta(t, 10, camera.WCHeight(), 1e-6)

	m := camera.CameraMatrix()
	center := m.Mul4x1(mgl32.Vec4{20, 60, 0, 1})
	assert.InDelta(t, 0, center.X(), 1e-5)
	assert.InDelta(t, 0, center.Y(), 1e-5)

	corner := m.Mul4x1(mgl32.Vec4{30, 65, 0, 1})
	assert.InDelta(t, 1, corner.X(), 1e-5)
	assert.InDelta(t, 1, corner.Y(), 1e-5)

	camera.SetWCCenter(0, 0)
	corner = camera.CameraMatrix().Mul4x1(mgl32.Vec4{-10, -5, 0, 1})
	assert.InDelta(t, -1, corner.X(), 1e-5)
	assert.InDelta(t, -1, corner.Y(), 1e-5)
}

func TestCameraClearsOnlyItsViewport(t *testing.T) {
	gl := mock.NewContext()
	camera := NewCamera(mgl32.Vec2{0, 0}, 10, [4]int32{20, 40, 600, 300})
	camera.SetBackgroundColor([4]float32{0.8, 0.8, 0.8, 1})
	camera.SetViewAndCameraMatrix(gl)

	assert.Equal(t, []string{"Viewport", "Scissor", "ClearColor", "Enable", "Clear", "Disable"}, gl.CallNames())
	calls := gl.Calls()
	assert.Equal(t, []interface{}{int32(20), int32(40), int32(600), int32(300)}, calls[0].Args)
	assert.Equal(t, []interface{}{renderer.CapabilityScissorTest}, calls[3].Args)
	assert.False(t, gl.IsEnabled(renderer.CapabilityScissorTest))
}

package platform

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/anima2d/engine/core"
)

var specialKeys = map[glfw.Key]core.KeyCode{
	glfw.KeyBackspace: core.KEY_BACKSPACE,
	glfw.KeyTab:       core.KEY_TAB,
	glfw.KeyEnter:     core.KEY_ENTER,
	glfw.KeyLeftShift: core.KEY_SHIFT,
	glfw.KeyEscape:    core.KEY_ESCAPE,
	glfw.KeySpace:     core.KEY_SPACE,
	glfw.KeyEnd:       core.KEY_END,
	glfw.KeyHome:      core.KEY_HOME,
	glfw.KeyLeft:      core.KEY_LEFT,
	glfw.KeyUp:        core.KEY_UP,
	glfw.KeyRight:     core.KEY_RIGHT,
	glfw.KeyDown:      core.KEY_DOWN,
	glfw.KeyDelete:    core.KEY_DELETE,
	glfw.KeyF1:        core.KEY_F1,
	glfw.KeyF2:        core.KEY_F2,
	glfw.KeyF3:        core.KEY_F3,
	glfw.KeyF4:        core.KEY_F4,
	glfw.KeyF5:        core.KEY_F5,
}

// translateKey maps a glfw key to the engine key code. Letters and digits
// share their ASCII value in both tables.
func translateKey(key glfw.Key) (core.KeyCode, bool) {
	switch {
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return core.KEY_A + core.KeyCode(key-glfw.KeyA), true
	case key >= glfw.Key0 && key <= glfw.Key9:
		return core.KEY_0 + core.KeyCode(key-glfw.Key0), true
	case key >= glfw.KeyKP0 && key <= glfw.KeyKP9:
		return core.KEY_0 + core.KeyCode(key-glfw.KeyKP0), true
	}
	code, ok := specialKeys[key]
	return code, ok
}

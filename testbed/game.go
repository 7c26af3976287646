package testbed

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/anima2d/engine"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer/components"
)

const (
	// hero movement per update, also the portal tint step
	deltaX float32 = 0.05
	// texture coordinate zoom per update
	deltaT float32 = 0.001
)

// TestGame shows the hero and its support objects cut from one sprite sheet,
// an animated minion and two images zooming into their textures.
type TestGame struct {
	engine *engine.Engine

	fontImagePath    string
	minionSpritePath string
	statusFontPath   string

	camera      *components.Camera
	hero        *components.Renderable
	portal      *components.Renderable
	collector   *components.Renderable
	fontImage   *components.Renderable
	minion      *components.Renderable
	rightMinion *components.Renderable
	status      *components.FontRenderable
}

// NewTestGame reads its textures from assetRoot.
func NewTestGame(e *engine.Engine, assetRoot string) *TestGame {
	return &TestGame{
		engine:           e,
		fontImagePath:    filepath.Join(assetRoot, "consolas-72.png"),
		minionSpritePath: filepath.Join(assetRoot, "minion_sprite.png"),
		statusFontPath:   filepath.Join(assetRoot, "fonts", "status.fnt"),
	}
}

func (g *TestGame) Load() error {
	g.engine.Textures().Load(g.fontImagePath)
	g.engine.Textures().Load(g.minionSpritePath)
	g.engine.Fonts().Load(g.statusFontPath)
	return nil
}

func (g *TestGame) Unload() error {
	for _, r := range []*components.Renderable{g.portal, g.collector, g.hero, g.fontImage, g.minion, g.rightMinion} {
		if r != nil {
			r.CleanUp()
		}
	}
	if g.status != nil {
		g.status.CleanUp()
	}
	g.engine.Textures().Unload(g.fontImagePath)
	g.engine.Textures().Unload(g.minionSpritePath)
	g.engine.Fonts().Unload(g.statusFontPath)
	return nil
}

func (g *TestGame) Init() error {
	g.camera = components.NewCamera(
		mgl32.Vec2{20, 60},         // position of the camera
		20,                         // width of camera
		[4]int32{20, 40, 600, 300}, // viewport (orgX, orgY, width, height)
	)
	g.camera.SetBackgroundColor([4]float32{0.8, 0.8, 0.8, 1})

	sheet, ok := g.engine.Textures().Get(g.minionSpritePath)
	if !ok {
		return fmt.Errorf("texture %s not loaded: %w", g.minionSpritePath, core.ErrConfiguration)
	}
	fontSheet, ok := g.engine.Textures().Get(g.fontImagePath)
	if !ok {
		return fmt.Errorf("texture %s not loaded: %w", g.fontImagePath, core.ErrConfiguration)
	}

	var err error
	if g.portal, err = components.NewSpriteRenderable(g.engine, sheet); err != nil {
		return err
	}
	g.portal.SetColor([4]float32{1, 0, 0, 0.2}) // tints red
	g.portal.Transform().SetPosition(25, 60)
	g.portal.Transform().SetSize(3, 3)
	g.portal.Sprite().SetElementPixelPositions(180, 130, 180, 180)

	if g.collector, err = components.NewSpriteRenderable(g.engine, sheet); err != nil {
		return err
	}
	g.collector.SetColor([4]float32{0, 0, 0, 0})
	g.collector.Transform().SetPosition(15, 60)
	g.collector.Transform().SetSize(3, 3)
	g.collector.Sprite().SetElementUVCoordinate(0.308, 0.483, 0, 0.352)

	if g.fontImage, err = components.NewSpriteRenderable(g.engine, fontSheet); err != nil {
		return err
	}
	g.fontImage.SetColor([4]float32{1, 1, 1, 0})
	g.fontImage.Transform().SetPosition(13, 62)
	g.fontImage.Transform().SetSize(4, 4)

	if g.minion, err = components.NewSpriteRenderable(g.engine, sheet); err != nil {
		return err
	}
	g.minion.SetColor([4]float32{1, 1, 1, 0})
	g.minion.Transform().SetPosition(26, 56)
	g.minion.Transform().SetSize(5, 2.5)

	// the hero comes from the lower-left corner of the sheet
	if g.hero, err = components.NewSpriteRenderable(g.engine, sheet); err != nil {
		return err
	}
	g.hero.SetColor([4]float32{1, 1, 1, 0})
	g.hero.Transform().SetPosition(20, 60)
	g.hero.Transform().SetSize(2, 3)
	g.hero.Sprite().SetElementPixelPositions(180, 0, 120, 180)

	if g.rightMinion, err = components.NewSpriteAnimateRenderable(g.engine, sheet); err != nil {
		return err
	}
	g.rightMinion.SetColor([4]float32{1, 1, 1, 0})
	g.rightMinion.Transform().SetPosition(26, 56.5)
	g.rightMinion.Transform().SetSize(4, 3.2)
	// five 204x164 elements starting at the top-left corner of the sheet
	if err := g.rightMinion.Animation().SetSpriteSequence(512, 0, 204, 164, 5, 0); err != nil {
		return err
	}
	g.rightMinion.Animation().SetAnimationType(components.AnimateForward)
	// show each element for 50 updates
	g.rightMinion.Animation().SetAnimationSpeed(50)

	font, ok := g.engine.Fonts().Get(g.statusFontPath)
	if !ok {
		return fmt.Errorf("font %s not loaded: %w", g.statusFontPath, core.ErrConfiguration)
	}
	if g.status, err = components.NewFontRenderable(g.engine, g.engine.Fonts(), font, ""); err != nil {
		return err
	}
	g.status.Transform().SetPosition(10.5, 64.2)
	g.status.Transform().SetSize(0, 0.8)
	g.status.SetColor([4]float32{0, 0, 0, 1})

	core.LogInfo("testbed ready")
	return nil
}

// Update moves the hero and advances every animation by one step. Nothing is
// drawn here.
func (g *TestGame) Update(deltaTime float64) error {
	input := g.engine.Input()

	xform := g.hero.Transform()
	if input.IsKeyPressed(core.KEY_RIGHT) {
		xform.IncXPosBy(deltaX)
		// right bound of the window
		if xform.XPos() > 30 {
			xform.SetPosition(12, 60)
		}
	}
	if input.IsKeyPressed(core.KEY_LEFT) {
		xform.IncXPosBy(-deltaX)
		// left bound of the window
		if xform.XPos() < 11 {
			xform.SetXPos(20)
		}
	}

	// continuously change the portal tint
	c := g.portal.Color()
	c[3] += deltaX
	if c[3] > 1 {
		c[3] = 0
	}
	g.portal.SetColor(c)

	// font image: zoom to the upper left corner by moving bottom and right
	uv := g.fontImage.Sprite().ElementUVCoordinateArray()
	b := uv[components.UVBottom] + deltaT
	r := uv[components.UVRight] - deltaT
	if b > 1.0 {
		b = 0
	}
	if r < 0 {
		r = 1.0
	}
	g.fontImage.Sprite().SetElementUVCoordinate(uv[components.UVLeft], r, b, uv[components.UVTop])

	// minion image: zoom to the bottom right corner by moving top and left
	uv = g.minion.Sprite().ElementUVCoordinateArray()
	t := uv[components.UVTop] - deltaT
	l := uv[components.UVLeft] + deltaT
	if l > 0.5 {
		l = 0
	}
	if t < 0.5 {
		t = 1.0
	}
	g.minion.Sprite().SetElementUVCoordinate(l, uv[components.UVRight], uv[components.UVBottom], t)

	g.rightMinion.UpdateAnimation()

	anim := g.rightMinion.Animation()
	if input.IsKeyClicked(core.KEY_1) {
		anim.SetAnimationType(components.AnimateBackward)
	}
	if input.IsKeyClicked(core.KEY_2) {
		anim.SetAnimationType(components.AnimatePingPong)
	}
	if input.IsKeyClicked(core.KEY_3) {
		anim.SetAnimationType(components.AnimateForward)
	}
	// shorter interval, faster animation
	if input.IsKeyClicked(core.KEY_4) {
		anim.IncAnimationSpeed(-2)
	}
	if input.IsKeyClicked(core.KEY_5) {
		anim.IncAnimationSpeed(2)
	}
	return nil
}

// Draw renders the scene. It must not change any state but the status text.
func (g *TestGame) Draw() error {
	gl := g.engine.GL()
	gl.ClearColor(0.9, 0.9, 0.9, 1.0)
	gl.Clear()

	g.camera.SetViewAndCameraMatrix(gl)

	for _, r := range []*components.Renderable{g.portal, g.collector, g.hero, g.fontImage, g.minion, g.rightMinion} {
		if err := r.Draw(g.camera); err != nil {
			return err
		}
	}

	g.status.SetText(fmt.Sprintf("FPS %d", int(g.engine.Loop().FPS())))
	return g.status.Draw(g.camera)
}

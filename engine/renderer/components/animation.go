package components

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/anima2d/engine/core"
)

type AnimationType int

const (
	// from the first (left-most) element rightwards, restarting at the first
	AnimateForward AnimationType = iota
	// from the last element leftwards, restarting at the last
	AnimateBackward
	// forward to the last element, then backward to the first, and so on
	AnimatePingPong
)

func (t AnimationType) String() string {
	switch t {
	case AnimateForward:
		return "forward"
	case AnimateBackward:
		return "backward"
	case AnimatePingPong:
		return "ping-pong"
	default:
		return "unknown"
	}
}

// ElementTrace describes the element an animation just switched to.
type ElementTrace struct {
	RenderableID uuid.UUID
	Element      int
	NumElements  int
	Rect         UVRect
}

/**
 * @brief Steps a sprite element through a horizontal strip of equally sized
 * frames. The first element is always the left-most one.
 */
type SpriteAnimation struct {
	element *SpriteElement
	owner   uuid.UUID

	// all in UV space
	firstElementLeft float32
	elementTop       float32
	elementWidth     float32
	elementHeight    float32
	widthPadding     float32
	numElements      int

	animationType  AnimationType
	updateInterval int
	currentTick    int
	currentElement int
	currentAdvance int

	trace func(ElementTrace)
}

// NewSpriteAnimation starts with a single element covering the whole texture.
func NewSpriteAnimation(element *SpriteElement, owner uuid.UUID) *SpriteAnimation {
	a := &SpriteAnimation{
		element:        element,
		owner:          owner,
		elementTop:     1,
		elementWidth:   1,
		elementHeight:  1,
		numElements:    1,
		animationType:  AnimateForward,
		updateInterval: 1,
	}
	a.reset()
	return a
}

// SetSpriteSequence defines the strip in pixels and restarts the animation.
// top and left locate the first element's top-left corner, top measured from
// the bottom of the image.
func (a *SpriteAnimation) SetSpriteSequence(top, left, width, height float32, numElements int, widthPadding float32) error {
	if numElements <= 0 {
		return fmt.Errorf("sprite sequence needs at least one element, got %d: %w", numElements, core.ErrConfiguration)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("sprite sequence element size %vx%v: %w", width, height, core.ErrConfiguration)
	}
	imageW, imageH := a.element.TextureSize()

	a.numElements = numElements
	a.firstElementLeft = left / imageW
	a.elementTop = top / imageH
	a.elementWidth = width / imageW
	a.elementHeight = height / imageH
	a.widthPadding = widthPadding / imageW
	a.reset()
	return nil
}

// SetAnimationType switches policy and restarts from the policy's first element.
func (a *SpriteAnimation) SetAnimationType(t AnimationType) {
	a.animationType = t
	a.reset()
}

// SetAnimationSpeed sets how many updates each element is shown for.
func (a *SpriteAnimation) SetAnimationSpeed(tickInterval int) {
	a.updateInterval = tickInterval
}

func (a *SpriteAnimation) IncAnimationSpeed(deltaInterval int) {
	a.updateInterval += deltaInterval
}

func (a *SpriteAnimation) SetTrace(fn func(ElementTrace)) {
	a.trace = fn
}

// UpdateAnimation is called once per scene update.
func (a *SpriteAnimation) UpdateAnimation() {
	a.currentTick++
	if a.currentTick < a.updateInterval {
		return
	}
	a.currentTick = 0
	a.currentElement += a.currentAdvance
	if a.currentElement >= 0 && a.currentElement < a.numElements {
		a.setSpriteElement()
		return
	}
	a.reinit()
}

// reset restarts the animation from scratch.
func (a *SpriteAnimation) reset() {
	a.currentTick = 0
	switch a.animationType {
	case AnimateBackward:
		a.currentElement = a.numElements - 1
		a.currentAdvance = -1
	default:
		a.currentElement = 0
		a.currentAdvance = 1
	}
	a.setSpriteElement()
}

// reinit handles an element index that ran off either end of the strip.
func (a *SpriteAnimation) reinit() {
	a.currentTick = 0
	switch a.animationType {
	case AnimateForward:
		a.currentElement = 0
		a.currentAdvance = 1
	case AnimateBackward:
		a.currentElement = a.numElements - 1
		a.currentAdvance = -1
	case AnimatePingPong:
		a.currentAdvance = -a.currentAdvance
		a.currentElement += 2 * a.currentAdvance
		if a.currentElement < 0 || a.currentElement >= a.numElements {
			// strips of a single element have nowhere to bounce to
			a.currentElement = 0
		}
	}
	a.setSpriteElement()
}

func (a *SpriteAnimation) setSpriteElement() {
	left := a.firstElementLeft + float32(a.currentElement)*(a.elementWidth+a.widthPadding)
	a.element.SetElementUVCoordinate(left, left+a.elementWidth, a.elementTop-a.elementHeight, a.elementTop)

	if a.trace != nil {
		a.trace(ElementTrace{
			RenderableID: a.owner,
			Element:      a.currentElement,
			NumElements:  a.numElements,
			Rect:         a.element.UVRect(),
		})
	}
}

func (a *SpriteAnimation) CurrentElement() int { return a.currentElement }
func (a *SpriteAnimation) StepDirection() int { return a.currentAdvance }
func (a *SpriteAnimation) Tick() int { return a.currentTick }
func (a *SpriteAnimation) UpdateInterval() int { return a.updateInterval }
func (a *SpriteAnimation) Type() AnimationType { return a.animationType }
func (a *SpriteAnimation) NumElements() int { return a.numElements }

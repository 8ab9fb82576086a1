package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/canopy"
)

// InputSource is the per-frame device state the host polls. The default
// source reads Ebitengine; tests substitute their own.
type InputSource interface {
	CursorPosition() (x, y int)
	IsMouseButtonPressed(button ebiten.MouseButton) bool
	Wheel() (dx, dy float64)
	AppendPressedKeys(keys []ebiten.Key) []ebiten.Key
	AppendInputChars(chars []rune) []rune
}

type ebitenInput struct{}

func (ebitenInput) CursorPosition() (int, int) { return ebiten.CursorPosition() }

func (ebitenInput) IsMouseButtonPressed(b ebiten.MouseButton) bool {
	return ebiten.IsMouseButtonPressed(b)
}

func (ebitenInput) Wheel() (float64, float64) { return ebiten.Wheel() }

func (ebitenInput) AppendPressedKeys(keys []ebiten.Key) []ebiten.Key {
	return ebiten.AppendPressedKeys(keys)
}

func (ebitenInput) AppendInputChars(chars []rune) []rune { return ebiten.AppendInputChars(chars) }

var mouseButtons = [...]struct {
	ebiten ebiten.MouseButton
	canopy canopy.MouseButton
}{
	{ebiten.MouseButtonLeft, canopy.MouseButtonLeft},
	{ebiten.MouseButtonRight, canopy.MouseButtonRight},
	{ebiten.MouseButtonMiddle, canopy.MouseButtonMiddle},
}

// modifiers folds the held keys into a modifier mask.
func modifiers(keys []ebiten.Key) canopy.KeyModifiers {
	var mods canopy.KeyModifiers
	for _, k := range keys {
		switch k {
		case ebiten.KeyShift, ebiten.KeyShiftLeft, ebiten.KeyShiftRight:
			mods |= canopy.ModShift
		case ebiten.KeyControl, ebiten.KeyControlLeft, ebiten.KeyControlRight:
			mods |= canopy.ModCtrl
		case ebiten.KeyAlt, ebiten.KeyAltLeft, ebiten.KeyAltRight:
			mods |= canopy.ModAlt
		case ebiten.KeyMeta, ebiten.KeyMetaLeft, ebiten.KeyMetaRight:
			mods |= canopy.ModMeta
		}
	}
	return mods
}

// isAlias reports whether k is a side-neutral modifier. Ebitengine
// reports these alongside the sided keys, so they are skipped to keep one
// KeyDown per press.
func isAlias(k ebiten.Key) bool {
	switch k {
	case ebiten.KeyShift, ebiten.KeyControl, ebiten.KeyAlt, ebiten.KeyMeta:
		return true
	}
	return false
}

// keyName maps an Ebitengine key to its W3C code name.
func keyName(k ebiten.Key) canopy.Key {
	switch k {
	case ebiten.KeyTab:
		return canopy.KeyTab
	case ebiten.KeyEnter, ebiten.KeyNumpadEnter:
		return canopy.KeyEnter
	case ebiten.KeyEscape:
		return canopy.KeyEscape
	case ebiten.KeySpace:
		return canopy.KeySpace
	case ebiten.KeyBackspace:
		return canopy.KeyBackspace
	case ebiten.KeyArrowLeft:
		return canopy.KeyArrowLeft
	case ebiten.KeyArrowRight:
		return canopy.KeyArrowRight
	case ebiten.KeyArrowUp:
		return canopy.KeyArrowUp
	case ebiten.KeyArrowDown:
		return canopy.KeyArrowDown
	}
	name := k.String()
	if len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z' {
		return canopy.Key("Key" + name)
	}
	return canopy.Key(name)
}

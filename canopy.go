package canopy

import (
	"fmt"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

var (
	// ColorTransparent is the zero color.
	ColorTransparent = Color{}
	// ColorBlack is opaque black.
	ColorBlack = Color{0, 0, 0, 1}
	// ColorWhite is opaque white.
	ColorWhite = Color{1, 1, 1, 1}
)

// RGBA8 returns the color as 8-bit channels.
func (c Color) RGBA8() (r, g, b, a uint8) {
	conv := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return conv(c.R), conv(c.G), conv(c.B), conv(c.A)
}

func (c Color) String() string {
	r, g, b, a := c.RGBA8()
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, a)
}

// Bounds is an axis-aligned box in window coordinates. The origin is at the
// top-left, with Y increasing downward.
type Bounds struct {
	X, Y, W, H float64
}

// Contains reports whether the point (x, y) lies inside the box.
// Points on the edge are considered inside.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.W &&
		y >= b.Y && y <= b.Y+b.H
}

// Intersects reports whether b and other overlap.
// Adjacent boxes (sharing only an edge) are considered intersecting.
func (b Bounds) Intersects(other Bounds) bool {
	return b.X <= other.X+other.W &&
		b.X+b.W >= other.X &&
		b.Y <= other.Y+other.H &&
		b.Y+b.H >= other.Y
}

func (b Bounds) String() string {
	return fmt.Sprintf("(%g, %g, %g x %g)", b.X, b.Y, b.W, b.H)
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

func (b MouseButton) String() string {
	switch b {
	case MouseButtonLeft:
		return "left"
	case MouseButtonRight:
		return "right"
	case MouseButtonMiddle:
		return "middle"
	default:
		return fmt.Sprintf("MouseButton(%d)", int(b))
	}
}

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Key names a keyboard key. Names follow the W3C UI Events "code" values
// (e.g. "Enter", "ArrowLeft", "KeyA").
type Key string

const (
	KeyTab        Key = "Tab"
	KeyEnter      Key = "Enter"
	KeyEscape     Key = "Escape"
	KeySpace      Key = "Space"
	KeyBackspace  Key = "Backspace"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowDown  Key = "ArrowDown"
)

// PseudoClass is a set of interaction state flags read by selectors.
type PseudoClass uint8

const (
	PseudoHover PseudoClass = 1 << iota
	PseudoActive
	PseudoFocus
	PseudoFocusVisible
	PseudoChecked
	PseudoDisabled
	PseudoOver
)

var pseudoNames = []struct {
	flag PseudoClass
	name string
}{
	{PseudoHover, "hover"},
	{PseudoActive, "active"},
	{PseudoFocus, "focus"},
	{PseudoFocusVisible, "focus-visible"},
	{PseudoChecked, "checked"},
	{PseudoDisabled, "disabled"},
	{PseudoOver, "over"},
}

// ParsePseudoClass returns the flag for a pseudo-class name.
func ParsePseudoClass(name string) (PseudoClass, bool) {
	for _, p := range pseudoNames {
		if p.name == name {
			return p.flag, true
		}
	}
	return 0, false
}

func (p PseudoClass) String() string {
	s := ""
	for _, n := range pseudoNames {
		if p&n.flag != 0 {
			s += ":" + n.name
		}
	}
	return s
}

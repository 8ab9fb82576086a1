// Package ebitenhost runs a canopy Context inside an Ebitengine window.
//
// The host polls mouse and keyboard state each tick, feeds it to the
// Context, advances one Update cycle, and paints every entity's box with
// its resolved colors. The painter is a debug view, not a renderer.
//
//	cx := canopy.New()
//	// build the tree...
//	if err := ebitenhost.Run(cx, ebitenhost.WithTitle("demo")); err != nil {
//		log.Fatal(err)
//	}
package ebitenhost

import (
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/canopy"
)

// Host adapts a Context to ebiten.Game.
type Host struct {
	cx      *canopy.Context
	input   InputSource
	painter *Painter

	title         string
	width, height int
	onUpdate      func(cx *canopy.Context) error

	lastX, lastY int
	moved        bool
	buttons      [len(mouseButtons)]bool
	held         []ebiten.Key
	keys         []ebiten.Key
	chars        []rune
	repeat       map[ebiten.Key]int
}

// Option configures a Host.
type Option func(*Host)

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(h *Host) { h.title = title }
}

// WithWindowSize sets the initial window size in device-independent pixels.
func WithWindowSize(width, height int) Option {
	return func(h *Host) { h.width, h.height = width, height }
}

// WithInput replaces the Ebitengine input source.
func WithInput(in InputSource) Option {
	return func(h *Host) { h.input = in }
}

// WithUpdateFunc registers a callback run before every cycle. A non-nil
// error stops the game loop.
func WithUpdateFunc(fn func(cx *canopy.Context) error) Option {
	return func(h *Host) { h.onUpdate = fn }
}

// WithPainter replaces the default painter.
func WithPainter(p *Painter) Option {
	return func(h *Host) { h.painter = p }
}

// New creates a host for cx.
func New(cx *canopy.Context, opts ...Option) *Host {
	h := &Host{
		cx:     cx,
		input:  ebitenInput{},
		title:  "canopy",
		width:  800,
		height: 600,
		repeat: make(map[ebiten.Key]int),
	}
	if vp := cx.Config().Viewport; vp.Width > 0 && vp.Height > 0 {
		h.width, h.height = int(vp.Width), int(vp.Height)
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.painter == nil {
		h.painter = NewPainter(cx)
	}
	return h
}

// Context returns the hosted Context.
func (h *Host) Context() *canopy.Context { return h.cx }

// Update implements ebiten.Game.
func (h *Host) Update() error {
	return h.Step(time.Second / time.Duration(ebiten.TPS()))
}

// Step polls input and runs one cycle advanced by dt.
func (h *Host) Step(dt time.Duration) error {
	if h.onUpdate != nil {
		if err := h.onUpdate(h.cx); err != nil {
			return err
		}
	}
	h.pollKeys()
	h.pollPointer()
	h.cx.Update(dt)
	return nil
}

// Key repeat, in ticks.
const (
	repeatDelay    = 30
	repeatInterval = 4
)

func (h *Host) pollKeys() {
	h.keys = h.input.AppendPressedKeys(h.keys[:0])
	h.cx.SetModifiers(modifiers(h.keys))

	for _, k := range h.held {
		if !slices.Contains(h.keys, k) && !isAlias(k) {
			delete(h.repeat, k)
			h.cx.KeyUp(keyName(k))
		}
	}
	for _, k := range h.keys {
		if isAlias(k) {
			continue
		}
		if !slices.Contains(h.held, k) {
			h.repeat[k] = 0
			h.cx.KeyDown(keyName(k), false)
			continue
		}
		h.repeat[k]++
		if n := h.repeat[k]; n >= repeatDelay && (n-repeatDelay)%repeatInterval == 0 {
			h.cx.KeyDown(keyName(k), true)
		}
	}
	h.held = append(h.held[:0], h.keys...)

	h.chars = h.input.AppendInputChars(h.chars[:0])
	for _, r := range h.chars {
		h.cx.CharInput(r)
	}
}

func (h *Host) pollPointer() {
	x, y := h.input.CursorPosition()
	if !h.moved || x != h.lastX || y != h.lastY {
		h.moved = true
		h.lastX, h.lastY = x, y
		h.cx.PointerMove(float64(x), float64(y))
	}
	for i, b := range mouseButtons {
		down := h.input.IsMouseButtonPressed(b.ebiten)
		switch {
		case down && !h.buttons[i]:
			h.cx.PointerDown(b.canopy)
		case !down && h.buttons[i]:
			h.cx.PointerUp(b.canopy)
		}
		h.buttons[i] = down
	}
	if dx, dy := h.input.Wheel(); dx != 0 || dy != 0 {
		h.cx.Scroll(dx, dy)
	}
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	h.painter.Draw(screen)
}

// Layout implements ebiten.Game. The viewport follows the window size.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	h.cx.SetViewport(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Run opens a window and hosts cx until it is closed or the update
// callback returns an error.
func Run(cx *canopy.Context, opts ...Option) error {
	return RunHost(New(cx, opts...))
}

// RunHost opens a window for an existing host.
func RunHost(h *Host) error {
	ebiten.SetWindowTitle(h.title)
	ebiten.SetWindowSize(h.width, h.height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(h)
}

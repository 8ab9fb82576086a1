package ebitenhost

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/canopy"
)

var whitePixel *ebiten.Image

func init() {
	whitePixel = ebiten.NewImage(1, 1)
	whitePixel.Fill(color.White)
}

// Box is one painted entity: its bounds and resolved colors with the
// accumulated opacity already applied to alpha.
type Box struct {
	Entity      canopy.Entity
	Bounds      canopy.Bounds
	Background  canopy.Color
	Border      canopy.Color
	BorderWidth float64
	Label       string
}

// Painter draws entity boxes back to front.
type Painter struct {
	cx *canopy.Context

	// Outline strokes every box, including transparent ones.
	Outline bool
	// Labels prints each entity's id (or element name) at its origin.
	Labels bool

	boxes []Box
}

// NewPainter creates a painter for cx.
func NewPainter(cx *canopy.Context) *Painter {
	return &Painter{cx: cx}
}

// Collect returns the boxes of the current frame in paint order. The slice
// is reused by the next call.
func (p *Painter) Collect() []Box {
	p.boxes = p.boxes[:0]
	p.collect(canopy.Root, 1)
	return p.boxes
}

func (p *Painter) collect(e canopy.Entity, opacity float64) {
	st := p.cx.Style()
	if st.Display.Get(e) == canopy.DisplayNone {
		return
	}
	opacity *= st.Opacity.Get(e)
	if opacity <= 0 {
		return
	}
	if b, ok := p.cx.Bounds(e); ok && st.Visibility.Get(e) != canopy.Hidden {
		box := Box{
			Entity:     e,
			Bounds:     b,
			Background: fade(st.BackgroundColor.Get(e), opacity),
			Border:     fade(st.BorderColor.Get(e), opacity),
		}
		box.BorderWidth = st.BorderWidth.Get(e).Resolve(min(b.W, b.H), 0)
		if p.Labels {
			box.Label = st.ID(e)
			if box.Label == "" {
				box.Label = st.Element(e)
			}
		}
		p.boxes = append(p.boxes, box)
	}
	for _, c := range p.cx.PaintOrder(e) {
		p.collect(c, opacity)
	}
}

func fade(c canopy.Color, opacity float64) canopy.Color {
	c.A *= opacity
	return c
}

// Draw paints the current frame onto screen.
func (p *Painter) Draw(screen *ebiten.Image) {
	outline := canopy.Color{R: 1, G: 0, B: 1, A: 0.6}
	for _, box := range p.Collect() {
		b := box.Bounds
		if box.Background.A > 0 {
			fillRect(screen, b.X, b.Y, b.W, b.H, box.Background)
		}
		switch {
		case box.BorderWidth > 0 && box.Border.A > 0:
			strokeRect(screen, b, box.BorderWidth, box.Border)
		case p.Outline:
			strokeRect(screen, b, 1, outline)
		}
		if box.Label != "" {
			ebitenutil.DebugPrintAt(screen, box.Label, int(b.X)+2, int(b.Y)+2)
		}
	}
}

func fillRect(dst *ebiten.Image, x, y, w, h float64, c canopy.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.Scale(float32(c.R*c.A), float32(c.G*c.A), float32(c.B*c.A), float32(c.A))
	dst.DrawImage(whitePixel, &op)
}

func strokeRect(dst *ebiten.Image, b canopy.Bounds, width float64, c canopy.Color) {
	width = min(width, b.W/2, b.H/2)
	fillRect(dst, b.X, b.Y, b.W, width, c)
	fillRect(dst, b.X, b.Y+b.H-width, b.W, width, c)
	fillRect(dst, b.X, b.Y+width, width, b.H-2*width, c)
	fillRect(dst, b.X+b.W-width, b.Y+width, width, b.H-2*width, c)
}

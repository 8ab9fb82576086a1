package canopy

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor parses CSS color syntax: "#rgb", "#rgba", "#rrggbb",
// "#rrggbbaa", "rgb(r, g, b)", "rgba(r, g, b, a)", "transparent" and the
// SVG 1.1 color keywords.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "transparent":
		return ColorTransparent, nil
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s[1:])
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return Color{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
			A: float64(c.A) / 255,
		}, nil
	}
	return Color{}, fmt.Errorf("invalid color %q", s)
}

func parseHexColor(hex string) (Color, error) {
	if len(hex) == 3 || len(hex) == 4 {
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color #%s", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color #%s", hex)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

func parseRGBFunc(s string) (Color, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	parts := strings.Split(s[open+1:len(s)-1], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	var ch [4]float64
	ch[3] = 1
	for i, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q", s)
		}
		switch {
		case strings.HasSuffix(p, "%"):
			v /= 100
		case i < 3:
			v /= 255
		}
		ch[i] = v
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

package canopy

import (
	"fmt"
	"strconv"
	"strings"
)

// UnitsKind selects how a Units value is interpreted.
type UnitsKind uint8

const (
	UnitsAuto       UnitsKind = iota // size determined by the layout algorithm
	UnitsPixels                      // absolute value
	UnitsPercentage                  // percent of the parent's content length
	UnitsStretch                     // share of free space, weighted by Value
)

// Units is a length used by sizing, spacing and grid track properties.
type Units struct {
	Kind  UnitsKind
	Value float64
}

// Auto is the algorithm-determined length.
var Auto = Units{}

// Pixels returns an absolute length.
func Pixels(v float64) Units { return Units{Kind: UnitsPixels, Value: v} }

// Percentage returns a length of v percent of the parent's content length.
// v is on the 0-100 scale: Percentage(50) is half the parent, not
// Percentage(0.5).
func Percentage(v float64) Units { return Units{Kind: UnitsPercentage, Value: v} }

// Stretch returns a flexible length with weight v.
func Stretch(v float64) Units { return Units{Kind: UnitsStretch, Value: v} }

// IsAuto reports whether u is Auto.
func (u Units) IsAuto() bool { return u.Kind == UnitsAuto }

// IsStretch reports whether u is a Stretch length.
func (u Units) IsStretch() bool { return u.Kind == UnitsStretch }

// Resolve converts u to pixels against the parent length. Auto and Stretch
// return def.
func (u Units) Resolve(parent, def float64) float64 {
	switch u.Kind {
	case UnitsPixels:
		return u.Value
	case UnitsPercentage:
		return u.Value / 100 * parent
	default:
		return def
	}
}

func (u Units) String() string {
	switch u.Kind {
	case UnitsPixels:
		return strconv.FormatFloat(u.Value, 'g', -1, 64) + "px"
	case UnitsPercentage:
		return strconv.FormatFloat(u.Value, 'g', -1, 64) + "%"
	case UnitsStretch:
		return strconv.FormatFloat(u.Value, 'g', -1, 64) + "s"
	default:
		return "auto"
	}
}

// ParseUnits parses "auto", "12px", "12", "50%" and "1s" (stretch).
func ParseUnits(s string) (Units, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "auto" {
		return Auto, nil
	}
	kind := UnitsPixels
	num := s
	switch {
	case strings.HasSuffix(s, "px"):
		num = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "%"):
		kind, num = UnitsPercentage, strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "s"):
		kind, num = UnitsStretch, strings.TrimSuffix(s, "s")
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Auto, fmt.Errorf("invalid length %q", s)
	}
	return Units{Kind: kind, Value: v}, nil
}

// ParseUnitsList parses a whitespace separated list of lengths, as used by
// grid track templates.
func ParseUnitsList(s string) ([]Units, error) {
	fields := strings.Fields(s)
	out := make([]Units, 0, len(fields))
	for _, f := range fields {
		u, err := ParseUnits(f)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

package canopy

import (
	"fmt"
	"strings"
	"time"
)

// Display controls whether an entity takes part in layout at all.
type Display uint8

const (
	DisplayFlex Display = iota
	DisplayNone
)

func (d Display) String() string {
	if d == DisplayNone {
		return "none"
	}
	return "flex"
}

// Visibility hides an entity without removing it from layout.
type Visibility uint8

const (
	Visible Visibility = iota
	Hidden
)

func (v Visibility) String() string {
	if v == Hidden {
		return "hidden"
	}
	return "visible"
}

// LayoutType selects how an entity arranges its children.
type LayoutType uint8

const (
	LayoutColumn LayoutType = iota
	LayoutRow
	LayoutGrid
)

func (l LayoutType) String() string {
	switch l {
	case LayoutRow:
		return "row"
	case LayoutGrid:
		return "grid"
	default:
		return "column"
	}
}

// PositionType selects whether the parent arranges an entity or the entity
// positions itself inside the parent's content box.
type PositionType uint8

const (
	ParentDirected PositionType = iota
	SelfDirected
)

func (p PositionType) String() string {
	if p == SelfDirected {
		return "self-directed"
	}
	return "parent-directed"
}

// Alignment positions children along the main or cross axis.
type Alignment uint8

const (
	AlignStart Alignment = iota
	AlignEnd
	AlignCenter
	AlignSpaceBetween
	AlignSpaceAround
	AlignSpaceEvenly
	AlignStretch
)

var alignmentNames = [...]string{"start", "end", "center", "space-between", "space-around", "space-evenly", "stretch"}

func (a Alignment) String() string {
	if int(a) < len(alignmentNames) {
		return alignmentNames[a]
	}
	return fmt.Sprintf("Alignment(%d)", int(a))
}

// Transition describes an implicit animation of one property.
type Transition struct {
	Property PropertyID
	Duration time.Duration
	Delay    time.Duration
	Easing   string
}

func parseEnum[T ~uint8](s string, names map[string]T) (T, error) {
	v, ok := names[strings.TrimSpace(strings.ToLower(s))]
	if !ok {
		return 0, fmt.Errorf("invalid keyword %q", s)
	}
	return v, nil
}

var (
	displayNames    = map[string]Display{"flex": DisplayFlex, "block": DisplayFlex, "none": DisplayNone}
	visibilityNames = map[string]Visibility{"visible": Visible, "hidden": Hidden}
	layoutNames     = map[string]LayoutType{"column": LayoutColumn, "row": LayoutRow, "grid": LayoutGrid}
	positionNames   = map[string]PositionType{"parent-directed": ParentDirected, "self-directed": SelfDirected}
	alignNames      = map[string]Alignment{
		"start": AlignStart, "end": AlignEnd, "center": AlignCenter,
		"space-between": AlignSpaceBetween, "space-around": AlignSpaceAround,
		"space-evenly": AlignSpaceEvenly, "stretch": AlignStretch,
	}
)

// ParseTransitions parses a comma separated transition list, e.g.
// "background-color 200ms ease-in, width 1s 100ms".
func ParseTransitions(s string) ([]Transition, error) {
	var out []Transition
	for _, part := range strings.Split(s, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		id, ok := LookupProperty(fields[0])
		if !ok {
			return nil, fmt.Errorf("transition: unknown property %q", fields[0])
		}
		tr := Transition{Property: id, Easing: "linear"}
		durations := 0
		for _, f := range fields[1:] {
			if d, err := parseCSSDuration(f); err == nil {
				if durations == 0 {
					tr.Duration = d
				} else {
					tr.Delay = d
				}
				durations++
				continue
			}
			if _, ok := LookupEasing(f); !ok {
				return nil, fmt.Errorf("transition: invalid token %q", f)
			}
			tr.Easing = f
		}
		out = append(out, tr)
	}
	return out, nil
}

func parseCSSDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "s") {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.ParseDuration(s)
}

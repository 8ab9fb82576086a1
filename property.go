package canopy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PropertyID names a style property.
type PropertyID uint8

const (
	PropDisplay PropertyID = iota
	PropVisibility
	PropOpacity
	PropBackgroundColor
	PropBorderColor
	PropBorderWidth
	PropBorderRadius
	PropColor
	PropFontSize
	PropLayoutType
	PropPositionType
	PropLeft
	PropRight
	PropTop
	PropBottom
	PropWidth
	PropHeight
	PropMinWidth
	PropMaxWidth
	PropMinHeight
	PropMaxHeight
	PropChildLeft
	PropChildRight
	PropChildTop
	PropChildBottom
	PropRowBetween
	PropColBetween
	PropMainAlignment
	PropCrossAlignment
	PropGridRows
	PropGridCols
	PropRowIndex
	PropColIndex
	PropRowSpan
	PropColSpan
	PropTransition
	PropZIndex

	propCount
)

var propertyNames = [propCount]string{
	PropDisplay:         "display",
	PropVisibility:      "visibility",
	PropOpacity:         "opacity",
	PropBackgroundColor: "background-color",
	PropBorderColor:     "border-color",
	PropBorderWidth:     "border-width",
	PropBorderRadius:    "border-radius",
	PropColor:           "color",
	PropFontSize:        "font-size",
	PropLayoutType:      "layout-type",
	PropPositionType:    "position-type",
	PropLeft:            "left",
	PropRight:           "right",
	PropTop:             "top",
	PropBottom:          "bottom",
	PropWidth:           "width",
	PropHeight:          "height",
	PropMinWidth:        "min-width",
	PropMaxWidth:        "max-width",
	PropMinHeight:       "min-height",
	PropMaxHeight:       "max-height",
	PropChildLeft:       "child-left",
	PropChildRight:      "child-right",
	PropChildTop:        "child-top",
	PropChildBottom:     "child-bottom",
	PropRowBetween:      "row-between",
	PropColBetween:      "col-between",
	PropMainAlignment:   "main-alignment",
	PropCrossAlignment:  "cross-alignment",
	PropGridRows:        "grid-rows",
	PropGridCols:        "grid-cols",
	PropRowIndex:        "row-index",
	PropColIndex:        "col-index",
	PropRowSpan:         "row-span",
	PropColSpan:         "col-span",
	PropTransition:      "transition",
	PropZIndex:          "z-index",
}

var propertyByName = func() map[string]PropertyID {
	m := make(map[string]PropertyID, propCount)
	for id, name := range propertyNames {
		m[name] = PropertyID(id)
	}
	return m
}()

// LookupProperty returns the property with the given CSS name.
func LookupProperty(name string) (PropertyID, bool) {
	id, ok := propertyByName[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

func (p PropertyID) String() string {
	if p < propCount {
		return propertyNames[p]
	}
	return fmt.Sprintf("PropertyID(%d)", int(p))
}

// Declaration is one property assignment of a rule or inline style. Value
// holds the property's Go type (Units, Color, float64, Display, ...).
type Declaration struct {
	Property PropertyID
	Value    any
}

func (d Declaration) String() string {
	return fmt.Sprintf("%s: %v", d.Property, d.Value)
}

// ErrUnknownProperty is returned by ParseDeclaration for names that are
// neither a property nor a shorthand.
var ErrUnknownProperty = errors.New("canopy: unknown property")

var shorthands = map[string][]PropertyID{
	"space":       {PropTop, PropRight, PropBottom, PropLeft},
	"child-space": {PropChildTop, PropChildRight, PropChildBottom, PropChildLeft},
	"size":        {PropWidth, PropHeight},
}

// ParseDeclaration parses the text value of a property or shorthand into
// typed declarations. Box shorthands accept one, two or four lengths in
// top/right/bottom/left order; size accepts one or two.
func ParseDeclaration(name, value string) ([]Declaration, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	value = strings.TrimSpace(value)
	if targets, ok := shorthands[name]; ok {
		return parseShorthand(name, targets, value)
	}
	id, ok := LookupProperty(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownProperty, name)
	}
	v, err := parseValue(id, value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return []Declaration{{Property: id, Value: v}}, nil
}

func parseShorthand(name string, targets []PropertyID, value string) ([]Declaration, error) {
	units, err := ParseUnitsList(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var vals []Units
	switch {
	case len(targets) == 2 && len(units) == 1:
		vals = []Units{units[0], units[0]}
	case len(targets) == 2 && len(units) == 2:
		vals = units
	case len(targets) == 4 && len(units) == 1:
		vals = []Units{units[0], units[0], units[0], units[0]}
	case len(targets) == 4 && len(units) == 2:
		vals = []Units{units[0], units[1], units[0], units[1]}
	case len(targets) == 4 && len(units) == 4:
		vals = units
	default:
		return nil, fmt.Errorf("%s: unexpected value count %d", name, len(units))
	}
	out := make([]Declaration, len(targets))
	for i, id := range targets {
		out[i] = Declaration{Property: id, Value: vals[i]}
	}
	return out, nil
}

func parseValue(id PropertyID, s string) (any, error) {
	switch id {
	case PropDisplay:
		return parseEnum(s, displayNames)
	case PropVisibility:
		return parseEnum(s, visibilityNames)
	case PropLayoutType:
		return parseEnum(s, layoutNames)
	case PropPositionType:
		return parseEnum(s, positionNames)
	case PropMainAlignment, PropCrossAlignment:
		return parseEnum(s, alignNames)
	case PropOpacity, PropFontSize:
		return strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
	case PropBackgroundColor, PropBorderColor, PropColor:
		return ParseColor(s)
	case PropGridRows, PropGridCols:
		return ParseUnitsList(s)
	case PropRowIndex, PropColIndex, PropRowSpan, PropColSpan, PropZIndex:
		return strconv.Atoi(s)
	case PropTransition:
		return ParseTransitions(s)
	default:
		return ParseUnits(s)
	}
}

// ParseInlineStyle parses "name: value; name: value" into declarations.
func ParseInlineStyle(text string) ([]Declaration, error) {
	var out []Declaration
	for _, part := range strings.Split(text, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("malformed declaration %q", strings.TrimSpace(part))
		}
		decls, err := ParseDeclaration(name, value)
		if err != nil {
			return nil, err
		}
		out = append(out, decls...)
	}
	return out, nil
}

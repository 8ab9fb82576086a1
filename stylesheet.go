package canopy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// StyleSheetError reports a stylesheet that could not be applied. The
// whole sheet is rejected when one is returned.
type StyleSheetError struct {
	Selector string
	Property string
	Err      error
}

func (e *StyleSheetError) Error() string {
	switch {
	case e.Property != "":
		return fmt.Sprintf("canopy: stylesheet: %s { %s }: %v", e.Selector, e.Property, e.Err)
	case e.Selector != "":
		return fmt.Sprintf("canopy: stylesheet: %s: %v", e.Selector, e.Err)
	default:
		return fmt.Sprintf("canopy: stylesheet: %v", e.Err)
	}
}

func (e *StyleSheetError) Unwrap() error { return e.Err }

// StyleSheet is a parsed stylesheet: its rules in source order and the
// keyframe lists of its @keyframes blocks.
type StyleSheet struct {
	Rules     []*Rule
	Keyframes map[string][]Keyframe
	// Skipped lists declarations with unknown property names.
	Skipped []string
}

// ParseStyleSheet parses CSS text. Selector lists produce one rule per
// selector. Unknown properties are skipped and reported in Skipped;
// invalid values and selectors fail the whole sheet.
func ParseStyleSheet(text string) (*StyleSheet, error) {
	parsed, err := parser.Parse(text)
	if err != nil {
		return nil, &StyleSheetError{Err: err}
	}
	sheet := &StyleSheet{Keyframes: map[string][]Keyframe{}}
	for _, r := range parsed.Rules {
		if r.Kind == css.AtRule {
			if err := sheet.addAtRule(r); err != nil {
				return nil, err
			}
			continue
		}
		decls, err := sheet.declarations(r)
		if err != nil {
			return nil, err
		}
		for _, text := range r.Selectors {
			sel, err := ParseSelector(text)
			if err != nil {
				return nil, &StyleSheetError{Selector: text, Err: err}
			}
			sheet.Rules = append(sheet.Rules, &Rule{Selector: sel, Declarations: decls})
		}
	}
	return sheet, nil
}

func (s *StyleSheet) declarations(r *css.Rule) ([]Declaration, error) {
	var out []Declaration
	for _, d := range r.Declarations {
		decls, err := ParseDeclaration(d.Property, d.Value)
		if errors.Is(err, ErrUnknownProperty) {
			s.Skipped = append(s.Skipped, d.Property)
			continue
		}
		if err != nil {
			return nil, &StyleSheetError{Selector: strings.Join(r.Selectors, ", "), Property: d.Property, Err: err}
		}
		out = append(out, decls...)
	}
	return out, nil
}

func (s *StyleSheet) addAtRule(r *css.Rule) error {
	if r.Name != "@keyframes" {
		return nil
	}
	name := strings.TrimSpace(r.Prelude)
	if name == "" {
		return &StyleSheetError{Selector: r.Name, Err: errors.New("missing animation name")}
	}
	var frames []Keyframe
	for _, kr := range r.Rules {
		decls, err := s.declarations(kr)
		if err != nil {
			return err
		}
		sels := kr.Selectors
		if len(sels) == 0 {
			sels = strings.Split(kr.Prelude, ",")
		}
		for _, sel := range sels {
			t, err := parseKeyframeTime(sel)
			if err != nil {
				return &StyleSheetError{Selector: name + " " + sel, Err: err}
			}
			frames = append(frames, Keyframe{Time: t, Values: decls})
		}
	}
	s.Keyframes[name] = frames
	return nil
}

func parseKeyframeTime(s string) (float64, error) {
	switch s = strings.TrimSpace(s); s {
	case "from":
		return 0, nil
	case "to":
		return 1, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || !strings.HasSuffix(s, "%") || v < 0 || v > 100 {
		return 0, fmt.Errorf("invalid keyframe selector %q", s)
	}
	return v / 100, nil
}

// AddStyleSheet parses text and appends its rules after every existing
// rule. On error nothing is applied.
func (s *StyleStore) AddStyleSheet(text string) (*StyleSheet, error) {
	sheet, err := ParseStyleSheet(text)
	if err != nil {
		return nil, err
	}
	for _, name := range sheet.Skipped {
		if s.warn != nil {
			s.warn("stylesheet: unknown property %q skipped", name)
		}
	}
	s.addRules(sheet.Rules)
	return sheet, nil
}

package canopy

import (
	"fmt"
	"math/bits"
	"strings"
)

// Combinator relates a compound selector to its parent selector.
type Combinator uint8

const (
	CombinatorNone       Combinator = iota
	CombinatorDescendant            // "a b"
	CombinatorChild                 // "a > b"
)

// Selector is one compound selector (element, id, classes, pseudo-classes)
// plus an optional parent selector joined by a combinator. The chain is
// stored right to left: the receiver matches the subject entity.
type Selector struct {
	Element    string // "" or "*" matches any element
	ID         string
	Classes    []string
	Pseudo     PseudoClass
	Combinator Combinator
	Parent     *Selector
}

// Specificity orders rules by (ids, classes+pseudo-classes, elements).
type Specificity [3]int

// Less compares two specificities lexicographically.
func (s Specificity) Less(o Specificity) bool {
	for i := range s {
		if s[i] != o[i] {
			return s[i] < o[i]
		}
	}
	return false
}

// Specificity sums the specificity of every compound in the chain.
func (s *Selector) Specificity() Specificity {
	var sp Specificity
	for c := s; c != nil; c = c.Parent {
		if c.ID != "" {
			sp[0]++
		}
		sp[1] += len(c.Classes) + bits.OnesCount8(uint8(c.Pseudo))
		if c.Element != "" && c.Element != "*" {
			sp[2]++
		}
	}
	return sp
}

func (s *Selector) String() string {
	var b strings.Builder
	if s.Parent != nil {
		b.WriteString(s.Parent.String())
		if s.Combinator == CombinatorChild {
			b.WriteString(" > ")
		} else {
			b.WriteString(" ")
		}
	}
	b.WriteString(s.Element)
	if s.ID != "" {
		b.WriteString("#" + s.ID)
	}
	for _, c := range s.Classes {
		b.WriteString("." + c)
	}
	b.WriteString(s.Pseudo.String())
	if b.Len() == 0 {
		return "*"
	}
	return b.String()
}

// ParseSelector parses a single selector such as "button.primary:hover",
// "#list > .item" or "panel label".
func ParseSelector(text string) (*Selector, error) {
	fields := strings.Fields(strings.ReplaceAll(text, ">", " > "))
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty selector")
	}
	var cur *Selector
	comb := CombinatorNone
	for _, f := range fields {
		if f == ">" {
			if cur == nil || comb == CombinatorChild {
				return nil, fmt.Errorf("selector %q: misplaced '>'", text)
			}
			comb = CombinatorChild
			continue
		}
		c, err := parseCompound(f)
		if err != nil {
			return nil, fmt.Errorf("selector %q: %w", text, err)
		}
		if cur != nil {
			if comb == CombinatorNone {
				comb = CombinatorDescendant
			}
			c.Parent, c.Combinator = cur, comb
		}
		cur, comb = c, CombinatorNone
	}
	if comb == CombinatorChild {
		return nil, fmt.Errorf("selector %q: trailing '>'", text)
	}
	return cur, nil
}

func parseCompound(s string) (*Selector, error) {
	c := &Selector{}
	i := strings.IndexAny(s, ".#:")
	if i < 0 {
		i = len(s)
	}
	c.Element = s[:i]
	for i < len(s) {
		kind := s[i]
		j := strings.IndexAny(s[i+1:], ".#:")
		end := len(s)
		if j >= 0 {
			end = i + 1 + j
		}
		name := s[i+1 : end]
		if name == "" {
			return nil, fmt.Errorf("empty name after %q", kind)
		}
		switch kind {
		case '.':
			c.Classes = append(c.Classes, name)
		case '#':
			if c.ID != "" {
				return nil, fmt.Errorf("multiple ids")
			}
			c.ID = name
		case ':':
			p, ok := ParsePseudoClass(name)
			if !ok {
				return nil, fmt.Errorf("unknown pseudo-class %q", name)
			}
			c.Pseudo |= p
		}
		i = end
	}
	return c, nil
}

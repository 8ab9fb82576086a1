package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/canopy"
)

// Scene is a scene document: context settings, an optional embedded
// stylesheet and the element tree under the root.
type Scene struct {
	Config canopy.Config `yaml:"config"`
	Style  string        `yaml:"style"`
	Root   Element       `yaml:"root"`

	path    string
	pending []pendingAnimation
}

type pendingAnimation struct {
	entity canopy.Entity
	name   string
	path   string
}

// Element is one entity of a scene document.
type Element struct {
	Element   string    `yaml:"element"`
	ID        string    `yaml:"id"`
	Class     []string  `yaml:"class"`
	Style     string    `yaml:"style"`
	Focusable bool      `yaml:"focusable"`
	Disabled  bool      `yaml:"disabled"`
	Animate   string    `yaml:"animate"`
	Children  []Element `yaml:"children"`
}

// loadScene reads a scene document. Stylesheet paths are resolved against
// the document's directory.
func loadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	sc, err := parseScene(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.path = path
	dir := filepath.Dir(path)
	for i, p := range sc.Config.StyleSheets {
		if !filepath.IsAbs(p) {
			sc.Config.StyleSheets[i] = filepath.Join(dir, p)
		}
	}
	return sc, nil
}

func parseScene(data []byte) (*Scene, error) {
	sc := &Scene{Config: canopy.DefaultConfig()}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if err := sc.Config.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Build creates a Context holding the scene. Root settings in the document
// apply to canopy.Root.
func (sc *Scene) Build(opts ...canopy.Option) (*canopy.Context, error) {
	cx, err := canopy.NewFromConfig(sc.Config, opts...)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sc.Style) != "" {
		if _, err := cx.AddStyleSheet(sc.Style); err != nil {
			return nil, fmt.Errorf("embedded style: %w", err)
		}
	}
	sc.pending = sc.pending[:0]
	if err := sc.build(cx, canopy.Root, &sc.Root, "root"); err != nil {
		return nil, err
	}
	if len(sc.pending) > 0 {
		// Animations start from resolved values.
		cx.Update(0)
		for _, p := range sc.pending {
			if !cx.PlayAnimation(p.entity, p.name) {
				return nil, fmt.Errorf("%s: unknown animation %q", p.path, p.name)
			}
		}
	}
	return cx, nil
}

func (sc *Scene) build(cx *canopy.Context, e canopy.Entity, el *Element, path string) error {
	h := cx.Entity(e)
	if el.Element != "" {
		h.Element(el.Element)
	}
	if el.ID != "" {
		if _, taken := cx.Style().FindByID(el.ID); taken {
			return fmt.Errorf("%s: duplicate id %q", path, el.ID)
		}
		h.ID(el.ID)
	}
	h.Class(el.Class...)
	if el.Style != "" {
		if err := cx.Style().SetInlineStyle(e, el.Style); err != nil {
			return fmt.Errorf("%s: style: %w", path, err)
		}
	}
	h.Focusable(el.Focusable).Disabled(el.Disabled)
	if el.Animate != "" {
		sc.pending = append(sc.pending, pendingAnimation{e, el.Animate, path})
	}
	for i := range el.Children {
		child, err := cx.AddChild(e)
		if err != nil {
			return err
		}
		if err := sc.build(cx, child, &el.Children[i], fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// label names an entity the way a selector would: element#id.class.
func label(cx *canopy.Context, e canopy.Entity) string {
	st := cx.Style()
	var b strings.Builder
	if e == canopy.Root {
		b.WriteString("root")
	} else if name := st.Element(e); name != "" {
		b.WriteString(name)
	} else {
		b.WriteString("*")
	}
	if id := st.ID(e); id != "" {
		b.WriteString("#" + id)
	}
	for _, c := range st.Classes(e) {
		b.WriteString("." + c)
	}
	return b.String()
}

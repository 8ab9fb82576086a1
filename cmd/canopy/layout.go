package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/canopy"
)

func layoutCmd() *cobra.Command {
	var (
		width, height float64
		output        string
		advance       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "layout <scene.yaml>",
		Short: "Print the computed geometry of a scene",
		Long: `Resolve styles, run one layout pass and print every entity with its
bounds. --advance runs a second cycle that far into the future, so running
animations and transitions show their in-flight geometry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadScene(args[0])
			if err != nil {
				return err
			}
			if width > 0 {
				sc.Config.Viewport.Width = width
			}
			if height > 0 {
				sc.Config.Viewport.Height = height
			}
			cx, err := sc.Build()
			if err != nil {
				return err
			}
			cx.Update(0)
			if advance > 0 {
				cx.Update(advance)
			}

			out := cmd.OutOrStdout()
			switch output {
			case "tree":
				fmt.Fprintln(out, renderTree(cx, newTheme(out)))
				return nil
			case "yaml":
				return writeGeometry(out, cx)
			default:
				return fmt.Errorf("unknown output format %q (want tree or yaml)", output)
			}
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "Override the viewport width")
	cmd.Flags().Float64Var(&height, "height", 0, "Override the viewport height")
	cmd.Flags().StringVarP(&output, "output", "o", "tree", "Output format: tree or yaml")
	cmd.Flags().DurationVar(&advance, "advance", 0, "Advance animations by this much before printing")

	return cmd
}

func renderTree(cx *canopy.Context, th theme) string {
	t := tree.Root(nodeLabel(cx, canopy.Root, th))
	addChildren(t, cx, canopy.Root, th)
	return t.String()
}

func addChildren(t *tree.Tree, cx *canopy.Context, e canopy.Entity, th theme) {
	for _, c := range cx.Tree().Children(e) {
		if cx.Tree().NumChildren(c) == 0 {
			t.Child(nodeLabel(cx, c, th))
			continue
		}
		sub := tree.Root(nodeLabel(cx, c, th))
		addChildren(sub, cx, c, th)
		t.Child(sub)
	}
}

func nodeLabel(cx *canopy.Context, e canopy.Entity, th theme) string {
	s := th.element.Render(label(cx, e))
	b, _ := cx.Bounds(e)
	s += " " + th.geometry.Render(b.String())
	st := cx.Style()
	switch {
	case st.Display.Get(e) == canopy.DisplayNone:
		s += " " + th.dim.Render("display: none")
	case st.Visibility.Get(e) == canopy.Hidden:
		s += " " + th.dim.Render("hidden")
	}
	if cx.Focused() == e {
		s += " " + th.selector.Render(":focus")
	}
	return s
}

type geometryEntry struct {
	Entity string  `yaml:"entity"`
	Depth  int     `yaml:"depth"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

func writeGeometry(w io.Writer, cx *canopy.Context) error {
	var entries []geometryEntry
	for e := range cx.Tree().Down(canopy.Root) {
		b, _ := cx.Bounds(e)
		entries = append(entries, geometryEntry{
			Entity: label(cx, e),
			Depth:  cx.Tree().Depth(e),
			X:      b.X,
			Y:      b.Y,
			Width:  b.W,
			Height: b.H,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}

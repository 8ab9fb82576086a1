package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// theme holds the output styles bound to one writer, so colors are dropped
// when the writer is not a terminal.
type theme struct {
	title    lipgloss.Style
	element  lipgloss.Style
	selector lipgloss.Style
	geometry lipgloss.Style
	dim      lipgloss.Style
	ok       lipgloss.Style
	warn     lipgloss.Style
	fail     lipgloss.Style
}

func newTheme(w io.Writer) theme {
	r := lipgloss.NewRenderer(w)
	return theme{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		element:  r.NewStyle().Foreground(lipgloss.Color("252")).Bold(true),
		selector: r.NewStyle().Foreground(lipgloss.Color("205")),
		geometry: r.NewStyle().Foreground(lipgloss.Color("241")),
		dim:      r.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		ok:       r.NewStyle().Foreground(lipgloss.Color("42")),
		warn:     r.NewStyle().Foreground(lipgloss.Color("214")),
		fail:     r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

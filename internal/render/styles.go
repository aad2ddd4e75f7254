// Package render draws classified results, history and errors for the terminal.
package render

import (
	"io"

	"agriwise-client/internal/classify"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorTop    = lipgloss.Color("#2E7D32")
	colorHigh   = lipgloss.Color("#8BC34A")
	colorMedium = lipgloss.Color("#FFC107")
	colorLow    = lipgloss.Color("#E53935")
	colorMuted  = lipgloss.Color("#8A8F98")
	colorInfo   = lipgloss.Color("#2196F3")
)

// Styles is bound to one output so colour is dropped when it is not a terminal.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Body   lipgloss.Style
	Muted  lipgloss.Style
	Bold   lipgloss.Style
	Banner lipgloss.Style
	Field  lipgloss.Style
	Card   lipgloss.Style

	tiers map[classify.Tier]lipgloss.Style
}

func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	tier := func(c lipgloss.Color) lipgloss.Style {
		return r.NewStyle().Foreground(c).Bold(true)
	}
	return Styles{
		Title:  r.NewStyle().Bold(true).Foreground(colorInfo).MarginBottom(1),
		Header: r.NewStyle().Bold(true).Underline(true),
		Body:   r.NewStyle(),
		Muted:  r.NewStyle().Foreground(colorMuted),
		Bold:   r.NewStyle().Bold(true),
		Banner: r.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(colorLow).Padding(0, 1),
		Field:  r.NewStyle().Foreground(colorLow),
		Card:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1),
		tiers: map[classify.Tier]lipgloss.Style{
			classify.TierTop:    tier(colorTop),
			classify.TierHigh:   tier(colorHigh),
			classify.TierMedium: tier(colorMedium),
			classify.TierLow:    tier(colorLow),
		},
	}
}

// Tier returns the colour style for a tier; unknown tiers render plain.
func (s Styles) Tier(t classify.Tier) lipgloss.Style {
	if st, ok := s.tiers[t]; ok {
		return st
	}
	return s.Body
}

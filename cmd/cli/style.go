package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	positiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	boxStyle      = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// keyValues prints aligned "label  value" lines.
func keyValues(w io.Writer, pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	for _, p := range pairs {
		fmt.Fprintf(w, "%s  %s\n", labelStyle.Render(p[0]+strings.Repeat(" ", width-len(p[0]))), p[1])
	}
}

// bar renders a proportional bar of at most width cells.
func bar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return strings.Repeat("█", int(fraction*float64(width)+0.5))
}

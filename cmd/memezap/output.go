package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

// field prints an aligned "name  value" line.
func field(w io.Writer, name string, value any) {
	fmt.Fprintf(w, "  %s %v\n", dimStyle.Render(fmt.Sprintf("%-12s", name)), value)
}

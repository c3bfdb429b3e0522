// Package ui provides terminal rendering helpers for CLI output.
//
// Styles degrade to plain text when the terminal does not support color
// or when NO_COLOR is set.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// colorEnabled reflects the terminal's color capability at startup.
var colorEnabled = termenv.EnvColorProfile() != termenv.Ascii

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

func render(style lipgloss.Style, s string) string {
	if !colorEnabled {
		return s
	}
	return style.Render(s)
}

// RenderPass renders s in the success style (green).
func RenderPass(s string) string { return render(passStyle, s) }

// RenderWarn renders s in the warning style (yellow).
func RenderWarn(s string) string { return render(warnStyle, s) }

// RenderError renders s in the error style (bold red).
func RenderError(s string) string { return render(errorStyle, s) }

// RenderAccent renders s in the accent style (cyan).
func RenderAccent(s string) string { return render(accentStyle, s) }

// RenderMuted renders s in the muted style (gray).
func RenderMuted(s string) string { return render(mutedStyle, s) }

// RenderBold renders s in bold.
func RenderBold(s string) string { return render(boldStyle, s) }

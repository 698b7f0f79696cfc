// Package color holds the terminal palette.
package color

import "github.com/charmbracelet/lipgloss"

// New initializes a lipgloss.Color from a string value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI colors follow the user's terminal theme. Used for feedback lines.
var (
	Red      = New("1")
	Green    = New("2")
	Yellow   = New("3")
	Blue     = New("4")
	Purple   = New("5")
	Cyan     = New("6")
	HiPurple = New("13")
)

// Fixed colors tag statuses and media types so they look the same everywhere.
var (
	Overlay  = New("#6c7086")
	Mauve    = New("#cba6f7")
	Rose     = New("#f38ba8")
	Peach    = New("#fab387")
	Sand     = New("#f9e2af")
	Mint     = New("#a6e3a1")
	Sky      = New("#89dceb")
	Sapphire = New("#89b4fa")
	Lavender = New("#b4befe")
)

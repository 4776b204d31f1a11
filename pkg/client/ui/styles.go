package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#5EEAD4")
	muted  = lipgloss.Color("#9CA3AF")
	alert  = lipgloss.Color("#F87171")
	gold   = lipgloss.Color("#EAB308")
	violet = lipgloss.Color("#A78BFA")

	headerStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	stateStyle = lipgloss.NewStyle().
			Foreground(muted)

	statusStyle = lipgloss.NewStyle().
			Foreground(muted)

	errorStyle = lipgloss.NewStyle().
			Foreground(alert)

	timeStyle = lipgloss.NewStyle().
			Foreground(muted)

	senderStyle = lipgloss.NewStyle().
			Foreground(gold)

	privateStyle = lipgloss.NewStyle().
			Foreground(violet).
			Bold(true)

	targetStyle = lipgloss.NewStyle().
			Foreground(accent)

	echoStyle = lipgloss.NewStyle().
			Foreground(muted).
			Italic(true)
)

package main

import "github.com/charmbracelet/lipgloss"

var (
	baseStyle    = lipgloss.NewStyle().Margin(1, 2)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	clockStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 2).Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

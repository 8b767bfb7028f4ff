package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Program is an alias for tea.Program so callers don't need to import
// bubbletea directly.
type Program = tea.Program

// NewProgram wraps the model in a full-screen program.
func NewProgram(m Model, opts ...tea.ProgramOption) *Program {
	allOpts := append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return tea.NewProgram(m, allOpts...)
}

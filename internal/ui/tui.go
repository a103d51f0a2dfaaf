// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program and the command channels for the looper UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// CommandKind identifies a user action
type CommandKind int

const (
	CommandLoad CommandKind = iota
	CommandClear
	CommandGain
)

// Command is a user action forwarded to the player
type Command struct {
	Kind CommandKind
	Path string
	Gain float32
}

// QuitMsg signals that the user asked to quit
type QuitMsg struct{}

// Controls holds channels for UI to player communication
type Controls struct {
	Commands chan Command
	Quit     chan QuitMsg
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Commands: make(chan Command, 10),
		Quit:     make(chan QuitMsg, 1),
	}
}

// Run creates the TUI program; the caller starts it
func Run(name string, initialGain float32, ctrl *Controls) *tea.Program {
	return tea.NewProgram(NewModel(name, initialGain, ctrl), tea.WithAltScreen())
}

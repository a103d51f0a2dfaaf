// ABOUTME: Bubbletea model for the looper TUI
// ABOUTME: Defines application state, key handling and rendering
package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Resonate-Protocol/resonate-loop/internal/protocol"
	"github.com/Resonate-Protocol/resonate-loop/internal/version"
)

const (
	gainStep   = 0.05
	maxNotices = 5
	barWidth   = 20
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

var (
	defaultHomeDir = os.UserHomeDir
	userHomeDir    = defaultHomeDir
)

// Model represents the TUI state
type Model struct {
	name   string
	status protocol.PlayerStatus

	// Gain target requested from the UI
	gain float32

	// Path entry
	editing bool
	input   string

	notices []protocol.Notice

	controls *Controls
	quitting bool

	width  int
	height int
}

// StatusMsg carries a fresh player status snapshot
type StatusMsg struct {
	Status protocol.PlayerStatus
}

// NoticeMsg carries a loader or remote notice
type NoticeMsg protocol.Notice

// NewModel creates a new TUI model
func NewModel(name string, initialGain float32, ctrl *Controls) Model {
	return Model{
		name:     name,
		gain:     initialGain,
		controls: ctrl,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.handleInput(msg)
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case NoticeMsg:
		m.addNotice(protocol.Notice(msg))
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s: %s", version.Product, version.Version, m.name)))
	b.WriteString("\n")
	b.WriteString(m.renderBuffer())
	b.WriteString("\n")
	b.WriteString(m.renderGain())
	b.WriteString("\n")

	if m.editing {
		b.WriteString(inputStyle.Render(fmt.Sprintf("Open file: %s_", m.input)))
		b.WriteString("\n\n")
	}

	if len(m.notices) > 0 {
		b.WriteString(m.renderNotices())
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderBuffer() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Output"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Device:  %s\n", valueStyle.Render(
		fmt.Sprintf("%dHz %s", m.status.SampleRate, channelName(m.status.Channels)))))

	mode := m.status.Mode
	if mode == "" {
		mode = "loop"
	}
	b.WriteString(fmt.Sprintf("  Mode:    %s\n", valueStyle.Render(mode)))

	if mode != "loop" {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Sample"))
	b.WriteString("\n")

	buf := m.status.Buffer
	if buf == nil || !m.status.Playing {
		b.WriteString("  " + valueStyle.Render("No sample loaded (silence)") + "\n")
	} else {
		seconds := 0.0
		if buf.SampleRate > 0 {
			seconds = float64(buf.Frames) / float64(buf.SampleRate)
		}
		b.WriteString(fmt.Sprintf("  File:    %s\n", valueStyle.Render(truncate(buf.Name, 48))))
		b.WriteString(fmt.Sprintf("  Format:  %s\n", valueStyle.Render(
			fmt.Sprintf("%dHz %s, %d frames (%.3fs)", buf.SampleRate, channelName(buf.Channels), buf.Frames, seconds))))
		b.WriteString(fmt.Sprintf("  Cursor:  %s\n", valueStyle.Render(fmt.Sprintf("%d", buf.Cursor))))
	}
	b.WriteString(fmt.Sprintf("  Buffers: %s\n", valueStyle.Render(fmt.Sprintf("%d live", m.status.LiveBuffers))))

	return b.String()
}

func (m Model) renderGain() string {
	ceiling := m.status.GainMax
	if ceiling <= 0 {
		ceiling = 1
	}

	label := "Gain"
	if m.status.Mode == "noise" {
		label = "Level"
	}

	return fmt.Sprintf("%s [%s] %.2f (target %.2f)\n",
		headerStyle.Render(fmt.Sprintf("%-6s", label)),
		renderBar(m.status.Gain, ceiling, barWidth),
		m.status.Gain, m.gain)
}

func (m Model) renderNotices() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Notices"))
	b.WriteString("\n")
	for _, n := range m.notices {
		line := "  " + truncate(n.Message, 70)
		switch n.Level {
		case protocol.LevelError:
			line = errorStyle.Render(line)
		case protocol.LevelWarning:
			line = warnStyle.Render(line)
		default:
			line = valueStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}

func (m Model) renderHelp() string {
	if m.editing {
		return helpStyle.Render("enter:Load  esc:Cancel")
	}
	return helpStyle.Render("o:Open  c:Clear  ↑/↓:Gain  q:Quit")
}

// handleKey handles keyboard input outside path entry
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m.quit()
	case "o":
		m.editing = true
		m.input = ""
	case "c":
		m.send(Command{Kind: CommandClear})
	case "up", "+", "k":
		m.setGain(m.gain + gainStep)
	case "down", "-", "j":
		m.setGain(m.gain - gainStep)
	}

	return m, nil
}

// handleInput handles keyboard input while entering a path
func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()
	case tea.KeyEsc:
		m.editing = false
		m.input = ""
	case tea.KeyEnter:
		path := expandHome(strings.TrimSpace(m.input))
		m.editing = false
		m.input = ""
		if path != "" {
			m.send(Command{Kind: CommandLoad, Path: path})
		}
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			r := []rune(m.input)
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.controls != nil {
		select {
		case m.controls.Quit <- QuitMsg{}:
		default:
		}
	}
	return m, tea.Quit
}

func (m *Model) setGain(v float32) {
	ceiling := m.status.GainMax
	if ceiling <= 0 {
		ceiling = 1
	}
	if v < 0 {
		v = 0
	}
	if v > ceiling {
		v = ceiling
	}
	m.gain = v
	m.send(Command{Kind: CommandGain, Gain: v})
}

// send never blocks the UI loop
func (m Model) send(cmd Command) {
	if m.controls == nil {
		return
	}
	select {
	case m.controls.Commands <- cmd:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	m.status = msg.Status
	if !m.editing && m.status.GainTarget != m.gain {
		m.gain = m.status.GainTarget
	}
}

func (m *Model) addNotice(n protocol.Notice) {
	m.notices = append(m.notices, n)
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
}

// Utility functions
func renderBar(value, ceiling float32, width int) string {
	if ceiling <= 0 {
		return strings.Repeat("░", width)
	}
	filled := int(value / ceiling * float32(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	switch channels {
	case 0:
		return "-"
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := userHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

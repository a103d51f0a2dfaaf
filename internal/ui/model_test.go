// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests key handling, path entry, status updates and rendering
package ui

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/resonate-loop/internal/protocol"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model
}

func drain(ctrl *Controls) []Command {
	var cmds []Command
	for {
		select {
		case c := <-ctrl.Commands:
			cmds = append(cmds, c)
		default:
			return cmds
		}
	}
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestNewModel(t *testing.T) {
	model := NewModel("studio", 1, nil)

	if model.name != "studio" {
		t.Errorf("expected name studio, got %s", model.name)
	}
	if model.gain != 1 {
		t.Errorf("expected initial gain 1, got %f", model.gain)
	}
	if model.editing {
		t.Error("expected editing to be false initially")
	}
}

func TestOpenAndLoad(t *testing.T) {
	ctrl := NewControls()
	model := NewModel("test", 1, ctrl)

	model = update(t, model, runes("o"))
	if !model.editing {
		t.Fatal("expected 'o' to enter path entry")
	}

	model = update(t, model, runes("/tmp/lo"))
	model = update(t, model, runes("opx"))
	model = update(t, model, tea.KeyMsg{Type: tea.KeyBackspace})
	model = update(t, model, runes(".wav"))
	if model.input != "/tmp/loop.wav" {
		t.Fatalf("unexpected input %q", model.input)
	}

	model = update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if model.editing {
		t.Error("expected enter to leave path entry")
	}

	cmds := drain(ctrl)
	if len(cmds) != 1 || cmds[0].Kind != CommandLoad || cmds[0].Path != "/tmp/loop.wav" {
		t.Errorf("unexpected commands %+v", cmds)
	}
}

func TestPathEntryKeysDoNotTriggerActions(t *testing.T) {
	ctrl := NewControls()
	model := NewModel("test", 1, ctrl)

	model = update(t, model, runes("o"))
	model = update(t, model, runes("c"))
	model = update(t, model, runes("q"))

	if len(drain(ctrl)) != 0 {
		t.Error("keys typed into the path should not send commands")
	}
	if model.input != "cq" {
		t.Errorf("expected input cq, got %q", model.input)
	}
}

func TestCancelAndEmptyPath(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
	}{
		{"escape", []tea.KeyMsg{runes("o"), runes("a.wav"), {Type: tea.KeyEsc}}},
		{"empty enter", []tea.KeyMsg{runes("o"), {Type: tea.KeyEnter}}},
		{"blank enter", []tea.KeyMsg{runes("o"), {Type: tea.KeySpace}, {Type: tea.KeyEnter}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewControls()
			model := NewModel("test", 1, ctrl)
			for _, k := range tt.keys {
				model = update(t, model, k)
			}

			if model.editing {
				t.Error("expected path entry to be closed")
			}
			if cmds := drain(ctrl); len(cmds) != 0 {
				t.Errorf("expected no commands, got %+v", cmds)
			}
		})
	}
}

func TestClearKey(t *testing.T) {
	ctrl := NewControls()
	model := NewModel("test", 1, ctrl)

	update(t, model, runes("c"))

	cmds := drain(ctrl)
	if len(cmds) != 1 || cmds[0].Kind != CommandClear {
		t.Errorf("expected clear command, got %+v", cmds)
	}
}

func TestGainKeys(t *testing.T) {
	tests := []struct {
		name    string
		initial float32
		gainMax float32
		key     tea.KeyMsg
		want    float32
	}{
		{"down", 1, 1, tea.KeyMsg{Type: tea.KeyDown}, 0.95},
		{"up clamps", 1, 1, tea.KeyMsg{Type: tea.KeyUp}, 1},
		{"down clamps", 0.02, 1, tea.KeyMsg{Type: tea.KeyDown}, 0},
		{"noise range", 0.5, 0.5, tea.KeyMsg{Type: tea.KeyUp}, 0.5},
		{"plus", 0.5, 1, runes("+"), 0.55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewControls()
			model := NewModel("test", tt.initial, ctrl)
			model.status.GainMax = tt.gainMax

			model = update(t, model, tt.key)

			if !near(model.gain, tt.want) {
				t.Errorf("expected gain %f, got %f", tt.want, model.gain)
			}
			cmds := drain(ctrl)
			if len(cmds) != 1 || cmds[0].Kind != CommandGain || !near(cmds[0].Gain, tt.want) {
				t.Errorf("unexpected commands %+v", cmds)
			}
		})
	}
}

func TestQuit(t *testing.T) {
	ctrl := NewControls()
	model := NewModel("test", 1, ctrl)

	next, cmd := model.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !next.(Model).quitting {
		t.Error("expected quitting state")
	}

	select {
	case <-ctrl.Quit:
	default:
		t.Error("expected quit signal on controls")
	}
}

func TestSendWithoutControls(t *testing.T) {
	model := NewModel("test", 1, nil)

	model = update(t, model, runes("c"))
	model = update(t, model, tea.KeyMsg{Type: tea.KeyDown})
	if _, cmd := model.Update(runes("q")); cmd == nil {
		t.Error("expected quit without controls")
	}
}

func TestStatusMsg(t *testing.T) {
	model := NewModel("test", 1, nil)

	model = update(t, model, StatusMsg{Status: protocol.PlayerStatus{
		Mode:       "loop",
		SampleRate: 48000,
		Channels:   2,
		Playing:    true,
		Gain:       0.5,
		GainTarget: 0.5,
		GainMax:    1,
		Buffer: &protocol.BufferStatus{
			Name:       "kick.wav",
			Channels:   1,
			Frames:     22050,
			SampleRate: 44100,
		},
	}})

	if model.gain != 0.5 {
		t.Errorf("expected gain target 0.5 from status, got %f", model.gain)
	}

	view := model.View()
	for _, want := range []string{"kick.wav", "48000Hz Stereo", "44100Hz Mono", "0.500s"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestViewSilence(t *testing.T) {
	model := NewModel("test", 1, nil)

	if !strings.Contains(model.View(), "silence") {
		t.Error("expected silence in empty view")
	}
}

func TestViewNoiseMode(t *testing.T) {
	model := NewModel("test", 0.125, nil)
	model = update(t, model, StatusMsg{Status: protocol.PlayerStatus{Mode: "noise", GainMax: 0.5}})

	view := model.View()
	if !strings.Contains(view, "Level") {
		t.Errorf("expected level label in noise mode:\n%s", view)
	}
	if strings.Contains(view, "Sample") {
		t.Errorf("noise mode should not show sample info:\n%s", view)
	}
}

func TestNoticesAreBounded(t *testing.T) {
	model := NewModel("test", 1, nil)

	for i := 0; i < maxNotices+3; i++ {
		model = update(t, model, NoticeMsg{Level: protocol.LevelWarning, Message: "rejected"})
	}
	model = update(t, model, NoticeMsg{Level: protocol.LevelError, Message: "last one"})

	if len(model.notices) != maxNotices {
		t.Errorf("expected %d notices, got %d", maxNotices, len(model.notices))
	}
	if !strings.Contains(model.View(), "last one") {
		t.Error("expected newest notice in view")
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, ceiling float32
		width          int
		filled         int
	}{
		{0, 1, 10, 0},
		{0.5, 1, 10, 5},
		{1, 1, 10, 10},
		{2, 1, 10, 10},
		{0.25, 0.5, 8, 4},
		{1, 0, 4, 0},
	}

	for _, tt := range tests {
		bar := renderBar(tt.value, tt.ceiling, tt.width)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("renderBar(%v, %v, %d) filled %d, want %d", tt.value, tt.ceiling, tt.width, got, tt.filled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != tt.width {
			t.Errorf("renderBar width %d, want %d", got, tt.width)
		}
	}
}

func TestExpandHome(t *testing.T) {
	userHomeDir = func() (string, error) { return "/home/test", nil }
	t.Cleanup(func() { userHomeDir = defaultHomeDir })

	tests := map[string]string{
		"~/loops/a.wav": "/home/test/loops/a.wav",
		"~":             "/home/test",
		"/abs/b.wav":    "/abs/b.wav",
		"rel~/c.wav":    "rel~/c.wav",
	}
	for in, want := range tests {
		if got := expandHome(in); got != want {
			t.Errorf("expandHome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestChannelName(t *testing.T) {
	tests := map[int]string{0: "-", 1: "Mono", 2: "Stereo", 6: "6ch"}
	for ch, want := range tests {
		if got := channelName(ch); got != want {
			t.Errorf("channelName(%d) = %q, want %q", ch, got, want)
		}
	}
}

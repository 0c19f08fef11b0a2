package console

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mgoltzsche/dialogue-player/internal/model"
	"github.com/mgoltzsche/dialogue-player/internal/player"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	calls   []string
	status  model.Status
	playErr error
}

func (p *fakePlayer) Play() error {
	p.calls = append(p.calls, "play")
	return p.playErr
}

func (p *fakePlayer) Pause() {
	p.calls = append(p.calls, "pause")
}

func (p *fakePlayer) Stop() {
	p.calls = append(p.calls, "stop")
}

func (p *fakePlayer) Next() {
	p.calls = append(p.calls, "next")
}

func (p *fakePlayer) Previous() {
	p.calls = append(p.calls, "previous")
}

func (p *fakePlayer) Seek(percent float64) {
	p.calls = append(p.calls, fmt.Sprintf("seek %.1f", percent))
}

func (p *fakePlayer) SetVoices(voiceA, voiceB model.VoiceID) {
	p.calls = append(p.calls, fmt.Sprintf("voices %s %s", voiceA, voiceB))
}

func (p *fakePlayer) Status() model.Status {
	return p.status
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "alt+left":
		return tea.KeyMsg{Type: tea.KeyLeft, Alt: true}
	case "alt+right":
		return tea.KeyMsg{Type: tea.KeyRight, Alt: true}
	}

	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()

	var cmd tea.Cmd

	for _, key := range keys {
		var updated tea.Model
		updated, cmd = m.Update(keyMsg(key))
		m = updated.(Model)
	}

	return m, cmd
}

func requireQuit(t *testing.T, cmd tea.Cmd) {
	t.Helper()

	require.NotNil(t, cmd, "command")
	require.IsType(t, tea.QuitMsg{}, cmd(), "message")
}

func TestKeyBindings(t *testing.T) {
	progress := model.Status{State: model.StatePlaying, Duration: time.Second, Progress: 45}

	for _, c := range []struct {
		name   string
		keys   []string
		status model.Status
		expect []string
	}{
		{"space plays when stopped", []string{" "}, model.Status{State: model.StateStopped}, []string{"play"}},
		{"space pauses when playing", []string{" "}, model.Status{State: model.StatePlaying}, []string{"pause"}},
		{"p resumes when paused", []string{"p"}, model.Status{State: model.StatePaused}, []string{"play"}},
		{"enter toggles", []string{"enter"}, model.Status{State: model.StateStopped}, []string{"play"}},
		{"stop", []string{"s"}, progress, []string{"stop"}},
		{"next", []string{"n", "right", "alt+right"}, progress, []string{"next", "next", "next"}},
		{"previous", []string{"b", "left", "alt+left"}, progress, []string{"previous", "previous", "previous"}},
		{"seek backward", []string{"["}, progress, []string{"seek 35.0"}},
		{"seek forward", []string{"]"}, progress, []string{"seek 55.0"}},
		{"seek backward clamped", []string{"["}, model.Status{State: model.StatePlaying, Progress: 5}, []string{"seek 0.0"}},
		{"seek forward clamped", []string{"]"}, model.Status{State: model.StatePlaying, Progress: 95}, []string{"seek 100.0"}},
		{"jump to percentage", []string{"0", "7"}, progress, []string{"seek 0.0", "seek 70.0"}},
		{"unbound key", []string{"x"}, progress, nil},
	} {
		t.Run(c.name, func(t *testing.T) {
			p := &fakePlayer{status: c.status}

			_, cmd := press(t, New(p, nil), c.keys...)
			require.Nil(t, cmd, "command")
			require.Equal(t, c.expect, p.calls)
		})
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c", "esc"} {
		t.Run(key, func(t *testing.T) {
			p := &fakePlayer{}

			_, cmd := press(t, New(p, nil), key)
			requireQuit(t, cmd)
			require.Empty(t, p.calls)
		})
	}
}

func TestPlayErrorIsShown(t *testing.T) {
	p := &fakePlayer{playErr: player.ErrQueueEmpty}

	m, _ := press(t, New(p, nil), " ")
	require.Contains(t, m.View(), "error: "+player.ErrQueueEmpty.Error())

	p.playErr = nil
	m, _ = press(t, m, " ")
	require.NotContains(t, m.View(), "error:", "error should be cleared by the next key")
}

func TestCommandLine(t *testing.T) {
	p := &fakePlayer{}

	m, _ := press(t, New(p, nil), ":")
	require.Contains(t, m.View(), ":")

	m, _ = press(t, m, "v", "o", "i", "c", "e", "s", " ", "L", "e", "a", " ", "C", "a", "m", "i", "x", "backspace", "l", "a", "enter")
	require.Equal(t, []string{"voices Lea Camila"}, p.calls)
	require.Contains(t, m.View(), keyHelp, "command line should be closed")

	m, _ = press(t, m, ":", "s", "t", "o", "p", "esc")
	require.Equal(t, []string{"voices Lea Camila"}, p.calls, "cancelled command should not run")

	m, _ = press(t, m, ":", "r", "e", "w", "enter")
	require.Contains(t, m.View(), `unknown command "rew"`)

	_, cmd := press(t, m, ":", "q", "enter")
	requireQuit(t, cmd)
}

func TestStatusEvents(t *testing.T) {
	events := make(chan model.Status, 2)
	p := &fakePlayer{status: model.Status{State: model.StateStopped, DialogueCount: 3}}
	m := New(p, events)

	require.Contains(t, m.View(), "[stopped] dialogue 1/3", "initial status")

	events <- model.Status{State: model.StatePlaying, DialogueIndex: 1, DialogueCount: 3, Speaker: model.SpeakerB, Text: "Soy de Lima."}
	msg := m.Init()()
	updated, cmd := m.Update(msg)
	m = updated.(Model)
	require.Contains(t, m.View(), "[playing] dialogue 2/3 B: Soy de Lima.")
	require.NotNil(t, cmd, "should wait for the next status")

	close(events)
	_, cmd = m.Update(cmd())
	requireQuit(t, cmd)
}

func TestExecute(t *testing.T) {
	for _, c := range []struct {
		input  string
		state  model.PlaybackState
		expect []string
	}{
		{"", model.StateStopped, []string{"play"}},
		{"p", model.StatePaused, []string{"play"}},
		{"  ", model.StatePlaying, []string{"pause"}},
		{"PLAY", model.StateStopped, []string{"play"}},
		{"pause", model.StatePlaying, []string{"pause"}},
		{"s", model.StatePlaying, []string{"stop"}},
		{"next", model.StatePlaying, []string{"next"}},
		{"back", model.StatePlaying, []string{"previous"}},
		{"seek 42.5%", model.StatePlaying, []string{"seek 42.5"}},
		{"voices Lea Camila", model.StateStopped, []string{"voices Lea Camila"}},
		{"status", model.StateStopped, nil},
	} {
		t.Run(c.input, func(t *testing.T) {
			p := &fakePlayer{status: model.Status{State: c.state}}

			_, err := Execute(p, c.input)
			require.NoError(t, err)
			require.Equal(t, c.expect, p.calls)
		})
	}
}

func TestExecuteOutput(t *testing.T) {
	p := &fakePlayer{status: model.Status{State: model.StatePaused, DialogueCount: 2}}

	out, err := Execute(p, "status")
	require.NoError(t, err)
	require.Equal(t, "[paused] dialogue 1/2", out)

	out, err = Execute(p, "help")
	require.NoError(t, err)
	require.Equal(t, usage, out)
}

func TestExecuteErrors(t *testing.T) {
	p := &fakePlayer{playErr: player.ErrQueueEmpty}

	_, err := Execute(p, "play")
	require.ErrorIs(t, err, player.ErrQueueEmpty)

	for _, c := range []struct {
		input  string
		expect string
	}{
		{"seek", "usage"},
		{"seek half", "invalid seek percentage"},
		{"seek NaN", "invalid seek percentage"},
		{"seek -Inf%", "invalid seek percentage"},
		{"voices Lea", "usage"},
		{"rewind", "unknown command"},
	} {
		_, err := Execute(p, c.input)
		require.ErrorContains(t, err, c.expect, c.input)
	}

	_, err = Execute(p, "quit")
	require.ErrorIs(t, err, ErrQuit)
	require.Equal(t, []string{"play"}, p.calls)
}

func TestFormatStatus(t *testing.T) {
	s := model.Status{
		State:         model.StatePaused,
		DialogueIndex: 1,
		DialogueCount: 3,
		Speaker:       model.SpeakerB,
		Text:          "Soy de Sevilla.",
		Duration:      2 * time.Second,
		Progress:      25,
	}

	require.Equal(t, "[paused] dialogue 2/3 B: Soy de Sevilla. (25%)", FormatStatus(s))
	require.Equal(t, "[stopped] dialogue 0/0", FormatStatus(model.Status{}))
}

package console

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mgoltzsche/dialogue-player/internal/model"
	"github.com/mgoltzsche/dialogue-player/internal/player"
)

const seekStep = 10

const keyHelp = "space play/pause • s stop • ←/→ dialogue • [/] seek • 0-9 jump • : command • ? help • q quit"

var (
	stateStyles = map[model.PlaybackState]lipgloss.Style{
		model.StatePlaying: lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		model.StatePaused:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		model.StateStopped: lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

type Player interface {
	Play() error
	Pause()
	Stop()
	Next()
	Previous()
	Seek(percent float64)
	SetVoices(voiceA, voiceB model.VoiceID)
	Status() model.Status
}

var _ Player = &player.Controller{}

type statusMsg model.Status

type eventsClosedMsg struct{}

// Model is an inline terminal UI that controls a player with key presses
// and renders the player status it receives from events.
type Model struct {
	player  Player
	events  <-chan model.Status
	status  model.Status
	editing bool
	input   string
	message string
	err     error
}

func New(p Player, events <-chan model.Status) Model {
	return Model{
		player: p,
		events: events,
		status: p.Status(),
	}
}

func (m Model) Init() tea.Cmd {
	return waitForStatus(m.events)
}

func waitForStatus(events <-chan model.Status) tea.Cmd {
	if events == nil {
		return nil
	}

	return func() tea.Msg {
		s, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}

		return statusMsg(s)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		m.status = model.Status(msg)
		return m, waitForStatus(m.events)
	case eventsClosedMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if m.editing {
			return m.updateCommandLine(msg)
		}

		return m.handleKey(msg.String())
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	m.message = ""
	m.err = nil

	switch key {
	case " ", "p", "enter":
		m.err = toggle(m.player)
	case "s":
		m.player.Stop()
	case "n", "right", "alt+right":
		m.player.Next()
	case "b", "left", "alt+left":
		m.player.Previous()
	case "[":
		m.player.Seek(max(0, m.status.Progress-seekStep))
	case "]":
		m.player.Seek(min(100, m.status.Progress+seekStep))
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.player.Seek(float64(key[0]-'0') * seekStep)
	case ":":
		m.editing = true
		m.input = ""
		return m, nil
	case "?":
		m.message = usage
		return m, nil
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	default:
		return m, nil
	}

	m.status = m.player.Status()

	return m, nil
}

func (m Model) updateCommandLine(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.editing = false
		m.input = ""
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
	case tea.KeyEnter:
		line := m.input
		m.editing = false
		m.input = ""

		out, err := Execute(m.player, line)
		if errors.Is(err, ErrQuit) {
			return m, tea.Quit
		}

		m.message = out
		m.err = err
		m.status = m.player.Status()
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(msg.Runes)
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	style, ok := stateStyles[m.status.State]
	if !ok {
		style = lipgloss.NewStyle()
	}

	b.WriteString(style.Render(FormatStatus(m.status)))
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(m.message)
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %s", m.err)))
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString(":" + m.input)
	} else {
		b.WriteString(helpStyle.Render(keyHelp))
	}

	b.WriteString("\n")

	return b.String()
}

func toggle(p Player) error {
	if p.Status().State == model.StatePlaying {
		p.Pause()
		return nil
	}

	return p.Play()
}

func FormatStatus(s model.Status) string {
	current := 0
	if s.DialogueCount > 0 {
		current = min(s.DialogueIndex+1, s.DialogueCount)
	}

	line := fmt.Sprintf("[%s] dialogue %d/%d", s.State, current, s.DialogueCount)

	if s.Text != "" {
		line += fmt.Sprintf(" %s: %s", s.Speaker, s.Text)
	}

	if s.Duration > 0 {
		line += fmt.Sprintf(" (%.0f%%)", s.Progress)
	}

	if s.Error != "" {
		line += " error: " + s.Error
	}

	return line
}

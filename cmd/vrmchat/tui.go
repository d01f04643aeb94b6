package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	orchestration "github.com/jimli1231/eletron-vrm/core"
	"github.com/jimli1231/eletron-vrm/core/events"
	"github.com/jimli1231/eletron-vrm/core/llms"
	"github.com/jimli1231/eletron-vrm/core/reply"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FDF2F8")).
			Background(lipgloss.Color("#9D174D")).
			Padding(0, 1)
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#60A5FA"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F472B6"))
	noticeStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#9CA3AF"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FB7185"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	emotionColors = map[reply.Emotion]lipgloss.Color{
		reply.EmotionNeutral: "#6B7280",
		reply.EmotionJoy:     "#F59E0B",
		reply.EmotionAngry:   "#DC2626",
		reply.EmotionSorrow:  "#2563EB",
		reply.EmotionFun:     "#16A34A",
	}
)

func runChat(ctx context.Context, config Config) error {
	updates := make(chan events.Event, 256)
	done := make(chan struct{})
	defer close(done)

	session := orchestration.NewSession(config.APIKey, append(config.sessionOptions(),
		orchestration.WithEventHandler(func(event events.Event) {
			select {
			case updates <- event:
			case <-done:
			}
		}),
	)...)
	defer session.Cancel()

	program := tea.NewProgram(newChatModel(ctx, session, updates), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entryNotice
	entryError
)

type entry struct {
	kind entryKind
	text string
}

type eventMsg struct{ event events.Event }

type callDoneMsg struct{ err error }

type chatModel struct {
	ctx     context.Context
	session *orchestration.Session
	updates <-chan events.Event

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	ready    bool
	width    int

	streaming  bool
	emotion    reply.Emotion
	transcript []entry
	speech     strings.Builder
}

func newChatModel(ctx context.Context, session *orchestration.Session, updates <-chan events.Event) *chatModel {
	input := textinput.New()
	input.Placeholder = "Say something, or /clear, /history, /cancel, /quit"
	input.CharLimit = 2000
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &chatModel{
		ctx:      ctx,
		session:  session,
		updates:  updates,
		input:    input,
		spinner:  s,
		emotion:  reply.EmotionNeutral,
		viewport: viewport.New(80, 20),
	}
}

func (m *chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForEvent(m.updates))
}

func waitForEvent(updates <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{event: <-updates}
	}
}

func (m *chatModel) startCall(text string) tea.Cmd {
	return func() tea.Msg {
		return callDoneMsg{err: m.session.StartCall(m.ctx, text)}
	}
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.session.Cancel()
			return m, tea.Quit
		case tea.KeyEsc:
			m.session.Cancel()
		case tea.KeyEnter:
			if cmd := m.submit(strings.TrimSpace(m.input.Value())); cmd != nil {
				cmds = append(cmds, cmd)
			}
			m.input.Reset()
		}

	case eventMsg:
		m.apply(msg.event)
		cmds = append(cmds, waitForEvent(m.updates))

	case callDoneMsg:
		m.streaming = false
		// Failures of accepted calls arrive as CallFailed events.
		if errors.Is(msg.err, orchestration.ErrCallInFlight) {
			m.notice(entryError, msg.err.Error())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *chatModel) submit(text string) tea.Cmd {
	switch text {
	case "":
		return nil
	case "/quit":
		m.session.Cancel()
		return tea.Quit
	case "/cancel":
		m.session.Cancel()
		return nil
	case "/clear":
		m.session.ClearHistory()
		m.transcript = nil
		m.notice(entryNotice, "history cleared")
		return nil
	case "/history":
		m.notice(entryNotice, formatHistory(m.session.History()))
		return nil
	}

	if m.streaming {
		m.notice(entryNotice, "still replying, press esc to cancel")
		return nil
	}
	m.streaming = true
	m.transcript = append(m.transcript, entry{kind: entryUser, text: text})
	m.refresh()
	return m.startCall(text)
}

func (m *chatModel) apply(event events.Event) {
	switch e := event.(type) {
	case events.CallStarted:
		m.speech.Reset()
	case events.SpeechDelta:
		m.speech.WriteString(e.Text)
	case events.EmotionChanged:
		m.emotion = reply.Emotion(e.Emotion)
	case events.ActionRequested:
		m.notice(entryNotice, fmt.Sprintf("action %s %v", e.Tool, e.Args))
	case events.CallFailed:
		m.flushSpeech()
		m.notice(entryError, e.Reason)
	case events.CallEnded:
		m.flushSpeech()
	}
	m.refresh()
}

func (m *chatModel) flushSpeech() {
	if m.speech.Len() > 0 {
		m.transcript = append(m.transcript, entry{kind: entryAssistant, text: m.speech.String()})
		m.speech.Reset()
	}
}

func (m *chatModel) notice(kind entryKind, text string) {
	m.transcript = append(m.transcript, entry{kind: kind, text: text})
	m.refresh()
}

func (m *chatModel) refresh() {
	if !m.ready {
		return
	}
	entries := m.transcript
	if m.speech.Len() > 0 {
		entries = append(entries[:len(entries):len(entries)], entry{kind: entryAssistant, text: m.speech.String()})
	}
	m.viewport.SetContent(renderTranscript(entries, m.width))
	m.viewport.GotoBottom()
}

func renderTranscript(entries []entry, width int) string {
	wrap := max(width-2, 20)
	var sb strings.Builder
	for _, e := range entries {
		switch e.kind {
		case entryUser:
			sb.WriteString(userStyle.Render("you") + "\n")
			sb.WriteString(wordwrap.String(e.text, wrap))
		case entryAssistant:
			sb.WriteString(assistantStyle.Render("avatar") + "\n")
			sb.WriteString(wordwrap.String(e.text, wrap))
		case entryNotice:
			sb.WriteString(noticeStyle.Render(wordwrap.String(e.text, wrap)))
		case entryError:
			sb.WriteString(errorStyle.Render(wordwrap.String("error: "+e.text, wrap)))
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func formatHistory(turns []llms.Turn) string {
	if len(turns) == 0 {
		return "history is empty"
	}
	lines := make([]string, 0, len(turns))
	for i, turn := range turns {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, turn.Role, turn.Text))
	}
	return strings.Join(lines, "\n")
}

func (m *chatModel) View() string {
	if !m.ready {
		return "starting..."
	}

	color, ok := emotionColors[m.emotion]
	if !ok {
		color = emotionColors[reply.EmotionNeutral]
	}
	badge := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(color).
		Padding(0, 1).
		Render(string(m.emotion))

	status := footerStyle.Render("enter: send  esc: cancel  ctrl+c: quit")
	if m.streaming {
		status = m.spinner.View() + " " + footerStyle.Render("replying...  esc: cancel")
	}

	return strings.Join([]string{
		titleStyle.Render("vrmchat") + " " + badge,
		m.viewport.View(),
		m.input.View(),
		status,
	}, "\n")
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/ircling/ircling/pkg/client"
)

// Options configures the frontend.
type Options struct {
	ShowTimestamps  bool
	NotifyOnPrivate bool
}

// eventMsg wraps a client event for the bubbletea loop.
type eventMsg struct {
	ev client.Event
}

// Model is the terminal frontend. It renders client events and feeds
// operator input back; all protocol behavior lives in the client.
type Model struct {
	client *client.Client
	events <-chan client.Event
	opts   Options

	input    textinput.Model
	viewport viewport.Model
	lines    []string

	connState client.ConnState
	attempt   int

	width  int
	height int
	ready  bool
}

// NewModel creates the frontend for an already-connected client.
func NewModel(c *client.Client, opts Options) Model {
	input := textinput.New()
	input.Placeholder = "message or /command"
	input.Prompt = "> "
	input.Focus()

	return Model{
		client:    c,
		events:    c.Events(),
		opts:      opts,
		input:     input,
		connState: client.StateConnecting,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvent(m.events))
}

// waitForEvent delivers the next client event into the update loop.
func waitForEvent(events <-chan client.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventMsg{ev: client.QuitEvent{}}
		}
		return eventMsg{ev: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chatHeight := msg.Height - 3
		if chatHeight < 1 {
			chatHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, chatHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = chatHeight
		}
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.client.Quit()
			return m, nil
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			m.client.HandleInput(line)
			return m, nil
		}

	case eventMsg:
		return m.handleEvent(msg.ev)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleEvent(ev client.Event) (tea.Model, tea.Cmd) {
	switch ev := ev.(type) {
	case client.QuitEvent:
		return m, tea.Quit

	case client.StateEvent:
		m.connState = ev.State
		m.attempt = ev.Attempt
		text := "Connection " + ev.State.String()
		if ev.Attempt > 0 {
			text = fmt.Sprintf("%s (attempt %d)", text, ev.Attempt)
		}
		if ev.Err != nil {
			text = fmt.Sprintf("%s: %v", text, ev.Err)
		}
		m.appendLine(statusStyle.Render("* " + text))

	case client.LineEvent:
		m.appendLine(m.formatLine(ev))
		if ev.Kind == client.KindPrivate && m.opts.NotifyOnPrivate {
			// Best effort; notification failures are not the
			// operator's problem.
			_ = beeep.Notify("Private message from "+ev.From, ev.Text, "")
		}
	}

	return m, waitForEvent(m.events)
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) formatLine(ev client.LineEvent) string {
	prefix := ""
	if m.opts.ShowTimestamps && !ev.Time.IsZero() {
		prefix = timeStyle.Render(ev.Time.Format("15:04")) + " "
	}

	switch ev.Kind {
	case client.KindError:
		return prefix + errorStyle.Render(ev.Text)
	case client.KindChannel:
		return fmt.Sprintf("%s%s %s %s",
			prefix,
			targetStyle.Render("["+ev.Target+"]"),
			senderStyle.Render("<"+ev.From+">"),
			ev.Text)
	case client.KindPrivate:
		return fmt.Sprintf("%s%s %s %s",
			prefix,
			privateStyle.Render("[PM]"),
			senderStyle.Render("<"+ev.From+">"),
			ev.Text)
	case client.KindEcho:
		return prefix + echoStyle.Render(fmt.Sprintf("[to %s] %s", ev.Target, ev.Text))
	default:
		return prefix + statusStyle.Render("* "+ev.Text)
	}
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	target := "no target"
	if t, ok := m.client.Session().Target(); ok {
		target = t
	}

	header := fmt.Sprintf("%s  %s  %s",
		headerStyle.Render("ircling"),
		stateStyle.Render(m.connState.String()),
		targetStyle.Render(target))

	return header + "\n" + m.viewport.View() + "\n" + m.input.View()
}

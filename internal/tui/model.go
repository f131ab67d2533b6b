package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PabloGalante/agent-chat/internal/app/chat"
	"github.com/PabloGalante/agent-chat/internal/observability"
)

// ChangeMsg carries a session change notification into the update loop.
type ChangeMsg chat.Change

type Model struct {
	ctx      context.Context
	session  *chat.Session
	changes  chan chat.Change
	exchange *chat.Exchange

	viewport viewport.Model
	input    textinput.Model
	width    int
	height   int
	quitting bool
}

// NewModel subscribes to the session; build one Model per session.
func NewModel(ctx context.Context, session *chat.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "type a message and press enter..."
	ti.CharLimit = 2000
	ti.Focus()

	// At most one exchange is in flight, so only a few changes are pending.
	changes := make(chan chat.Change, 8)
	session.OnChange(func(c chat.Change) { changes <- c })

	m := Model{
		ctx:      ctx,
		session:  session,
		changes:  changes,
		viewport: viewport.New(80, 20),
		input:    ti,
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		return ChangeMsg(<-m.changes)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refresh()
		return m, nil

	case ChangeMsg:
		if msg.State == chat.StateIdle && msg.Exchange == m.exchange {
			m.exchange = nil
		}
		m.refresh()
		return m, m.waitForChange()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.exchange != nil {
				m.exchange.Cancel()
			}
			m.quitting = true
			return m, tea.Quit

		case "ctrl+x":
			if m.exchange != nil {
				m.exchange.Cancel()
			}
			return m, nil

		case "enter":
			return m.submit()

		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	ex, err := m.session.Submit(m.ctx, m.input.Value())
	switch {
	case errors.Is(err, chat.ErrEmptyInput), errors.Is(err, chat.ErrBusy):
		return m, nil
	case err != nil:
		observability.Logger().Error("submit failed", "error", err)
		return m, nil
	}

	m.exchange = ex
	m.input.SetValue("")
	return m, nil
}

// refresh re-renders the timeline and scrolls to the latest message.
func (m *Model) refresh() {
	m.viewport.SetContent(renderMessages(m.session.Messages(), m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m *Model) layout() {
	// title + status + input lines
	const chrome = 3
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chrome, 3)
	m.input.Width = max(m.width-4, 10)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	title := titleStyle.Render("agent chat · " + string(m.session.Context().ID))

	status := statusBarStyle.Render("idle · enter send · ctrl+x cancel · esc quit")
	if m.session.State() == chat.StateAwaitingResponse {
		status = busyStyle.Render("waiting for agent... · ctrl+x cancel")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.viewport.View(),
		status,
		m.input.View(),
	)
}

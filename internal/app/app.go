package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sclottery/lottery-tui/internal/notify"
	"github.com/sclottery/lottery-tui/internal/present"
	"github.com/sclottery/lottery-tui/internal/session"
	"github.com/sclottery/lottery-tui/internal/theme"
	"github.com/sclottery/lottery-tui/internal/views/about"
	"github.com/sclottery/lottery-tui/internal/views/action"
	"github.com/sclottery/lottery-tui/internal/views/debug"
	"github.com/sclottery/lottery-tui/internal/views/progress"
	"github.com/sclottery/lottery-tui/internal/views/status"
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayAbout
	OverlayDebug
)

// Info describes what the session is pointed at.
type Info struct {
	Network  string
	Contract string
}

// Model is the root Bubble Tea model.
type Model struct {
	sess    session.Model
	notices *notify.Queue

	keys    KeyMap
	width   int
	height  int
	overlay Overlay

	// Most recent user-facing notice.
	notice *notify.Msg

	// Sub-views.
	statusBar status.Model
	control   action.Model
	bar       progress.Model
	about     about.Model
	debug     debug.Model
}

// New creates the root model. notices must be the queue the session and
// its network guard notify.
func New(sess session.Model, notices *notify.Queue, info Info) Model {
	return Model{
		sess:      sess,
		notices:   notices,
		keys:      DefaultKeyMap(),
		statusBar: status.New(info.Network),
		control:   action.New(),
		bar:       progress.New(),
		about:     about.Model{Network: info.Network, Contract: info.Contract},
		debug:     debug.New(),
	}
}

// Init starts listening for notices and connects the wallet right away.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.notices.Wait(), m.control.Init(), m.sess.Connect())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case notify.Msg:
		m.notice = &msg
		m.debug.Add("note", msg.Text)
		return m, m.notices.Wait()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.control, cmd = m.control.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.bar, cmd = m.bar.Update(msg)
		return m, cmd
	}

	m.debug.Record(session.Describe(msg))
	cmd := m.sess.Update(msg)
	return m, tea.Batch(cmd, m.sync())
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.sess.Close()
		return m, tea.Quit
	}

	if m.overlay != OverlayNone {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.overlay = OverlayNone
		case m.overlay == OverlayDebug && key.Matches(msg, m.keys.Up):
			m.debug.ScrollUp(1)
		case m.overlay == OverlayDebug && key.Matches(msg, m.keys.Down):
			m.debug.ScrollDown(1)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Primary):
		return m, m.primary()

	case key.Matches(msg, m.keys.Connect):
		return m, m.sess.Connect()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.sess.Refresh(session.FactPhase, session.FactEntryCount, session.FactMinEntryCount)

	case key.Matches(msg, m.keys.About):
		m.overlay = OverlayAbout
		return m, nil

	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.notice = nil
		return m, nil
	}

	return m, nil
}

// primary runs whatever the resolved action offers. Passive actions do
// nothing.
func (m *Model) primary() tea.Cmd {
	act := present.Resolve(m.sess.State())
	if act == present.ConnectAction {
		return m.sess.Connect()
	}
	op := act.Op()
	if op == session.OpNone {
		return nil
	}
	m.notice = nil
	cmd := m.sess.Submit(op)
	return tea.Batch(cmd, m.sync())
}

// sync pushes the session state into the views.
func (m *Model) sync() tea.Cmd {
	st := m.sess.State()
	m.statusBar.Connected = st.Connected
	m.statusBar.Account = st.Account
	m.statusBar.Phase = st.Phase
	m.statusBar.EntryCount = st.EntryCount
	m.control.Action = present.Resolve(st)

	var cmd tea.Cmd
	m.bar, cmd = m.bar.Set(st.EntryCount, st.MinEntryCount)
	return cmd
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	switch m.overlay {
	case OverlayAbout:
		return m.place(m.about.View(m.width))
	case OverlayDebug:
		return m.place(m.debug.View(m.width, m.height))
	}

	sections := []string{
		m.statusBar.View(),
		"",
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, theme.StyleHeader.Render("Welcome to the Lottery!")),
		"",
		m.control.View(m.width),
		"",
	}
	if m.sess.State().Connected {
		sections = append(sections, m.bar.View(m.width), "")
	}
	if m.notice != nil {
		sections = append(sections, m.renderNotice(*m.notice), "")
	}
	sections = append(sections,
		theme.StyleDimmed.Render("  enter:action  c:connect  r:refresh  a:about  d:debug  q:quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) place(panel string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

func (m Model) renderNotice(n notify.Msg) string {
	color := theme.ColorConn
	switch n.Level {
	case notify.Success:
		color = theme.ColorHealthy
	case notify.Warn:
		color = theme.ColorWarning
	}
	text := lipgloss.NewStyle().Foreground(color).Bold(true).Render(n.Text)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, text)
}

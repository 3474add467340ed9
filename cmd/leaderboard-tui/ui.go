package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"leadersync/analytics"
	"leadersync/core"
	"leadersync/session"
)

type viewMode int

const (
	browseMode viewMode = iota
	searchMode
)

// how close to the end of the list the cursor gets before the next page is requested
const loadMoreThreshold = 5

const (
	msgSimulated       = "Updated! 50 users have been updated with new scores."
	msgSimulateFailed  = "Failed to simulate gameplay"
	msgSearchPrompt    = "Enter a username to find players and see their global rank"
	msgNoResults       = "No results found. Try searching with a different username"
	msgRetryHint       = "press r to retry"
	defaultVisibleRows = 15
)

var (
	colorGold   = lipgloss.Color("#FFD700")
	colorSilver = lipgloss.Color("#C0C0C0")
	colorBronze = lipgloss.Color("#CD7F32")
	colorMuted  = lipgloss.Color("#666666")
	colorAccent = lipgloss.Color("#6366F1")
	colorError  = lipgloss.Color("#EF4444")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	ratingStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

func rankStyle(rank int) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true).Width(7)
	switch rank {
	case 1:
		return s.Foreground(colorGold)
	case 2:
		return s.Foreground(colorSilver)
	case 3:
		return s.Foreground(colorBronze)
	}
	return s.Foreground(colorMuted).Bold(false)
}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Search   key.Binding
	Back     key.Binding
	Submit   key.Binding
	Refresh  key.Binding
	Simulate key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Search, k.Refresh, k.Simulate, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Search, k.Back, k.Submit},
		{k.Refresh, k.Simulate, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search now")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Simulate: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "simulate")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// stateChangedMsg tells the model to pull fresh snapshots from the controllers.
type stateChangedMsg struct{}

type opDoneMsg struct {
	op  string
	err error
}

type simulateDoneMsg struct {
	ack core.SimulationAck
	err error
}

// Model is the root Bubble Tea model. It renders controller snapshots and
// forwards key presses to the controllers; it never mutates list state itself.
type Model struct {
	ctx    context.Context
	sess   *session.Session
	stats  *analytics.SessionStats
	notify chan struct{}

	list   core.ListState
	search core.SearchState

	mode    viewMode
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	cursor int
	width  int
	height int
	status string
}

// NewModel subscribes to the session and returns a model ready to run.
func NewModel(ctx context.Context, sess *session.Session, stats *analytics.SessionStats) Model {
	ti := textinput.New()
	ti.Placeholder = "Search by username..."
	ti.CharLimit = 64
	ti.Width = 40

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	notify := make(chan struct{}, 1)
	sess.Subscribe(func(context.Context, core.Event) {
		select {
		case notify <- struct{}{}:
		default: // a wake-up is already pending
		}
	})

	return Model{
		ctx:     ctx,
		sess:    sess,
		stats:   stats,
		notify:  notify,
		list:    sess.List.State(),
		search:  sess.Search.State(),
		input:   ti,
		spinner: s,
		help:    help.New(),
		keys:    keys,
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return stateChangedMsg{}
	}
}

func (m Model) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) simulate() tea.Cmd {
	ctx, list := m.ctx, m.sess.List
	return func() tea.Msg {
		ack, err := list.Simulate(ctx)
		return simulateDoneMsg{ack: ack, err: err}
	}
}

// Init starts the initial leaderboard fetch
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForChange(m.notify), m.run("load", m.sess.List.Load))
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case stateChangedMsg:
		m.pull()
		return m, waitForChange(m.notify)

	case opDoneMsg:
		// failures are already reflected in the list state
		m.pull()
		return m, nil

	case simulateDoneMsg:
		m.pull()
		switch {
		case errors.Is(msg.err, core.ErrBusy), errors.Is(msg.err, core.ErrDeactivated):
		case msg.err != nil:
			m.status = msgSimulateFailed
		default:
			m.status = msgSimulated
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode == searchMode {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.list.Entries)-1 {
			m.cursor++
		}
		return m, m.maybeLoadMore()
	case key.Matches(msg, m.keys.Refresh):
		m.status = ""
		return m, m.run("refresh", m.sess.List.Refresh)
	case key.Matches(msg, m.keys.Simulate):
		m.status = ""
		return m, m.simulate()
	case key.Matches(msg, m.keys.Search):
		m.mode = searchMode
		m.cursor = 0
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.mode = browseMode
		m.cursor = 0
		m.input.Blur()
		m.input.SetValue("")
		m.sess.Search.SetQuery("")
		m.pull()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.sess.Search.Flush()
		return m, nil
	case msg.Type == tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case msg.Type == tea.KeyDown:
		if m.cursor < len(m.search.Results)-1 {
			m.cursor++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.search.Query {
		m.cursor = 0
		m.sess.Search.SetQuery(m.input.Value())
		m.pull()
	}
	return m, cmd
}

// pull copies the controllers' snapshots, ignoring any that are not newer.
func (m *Model) pull() {
	if ls := m.sess.List.State(); ls.Revision >= m.list.Revision {
		m.list = ls
	}
	if ss := m.sess.Search.State(); ss.Revision >= m.search.Revision {
		m.search = ss
	}
	rows := len(m.list.Entries)
	if m.mode == searchMode {
		rows = len(m.search.Results)
	}
	if m.cursor >= rows {
		m.cursor = rows - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// maybeLoadMore requests the next page once the cursor nears the end of the list.
// It only runs in response to navigation, so a failed page is never retried on its own.
func (m Model) maybeLoadMore() tea.Cmd {
	if m.mode != browseMode || m.list.Phase.Active() || !m.list.HasMore() || len(m.list.Entries) == 0 {
		return nil
	}
	if m.cursor < len(m.list.Entries)-loadMoreThreshold {
		return nil
	}
	return m.run("load more", m.sess.List.LoadMore)
}

// View renders the active screen.
func (m Model) View() string {
	var b strings.Builder
	if m.mode == searchMode {
		m.viewSearch(&b)
	} else {
		m.viewBrowse(&b)
	}
	if m.status != "" {
		b.WriteString("\n" + subtitleStyle.Render(m.status) + "\n")
	}
	if m.stats != nil {
		st := m.stats.Snapshot()
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("searches %d · simulations %d · stale %d",
			st.Searches, st.Simulations, st.StaleDiscards)) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) viewBrowse(b *strings.Builder) {
	b.WriteString(titleStyle.Render("🏆 Leaderboard") + "\n")

	switch {
	case m.list.Phase == core.ListInitialLoading:
		b.WriteString(subtitleStyle.Render(m.spinner.View()+" Loading players...") + "\n")
		return
	case m.list.Phase == core.ListFailed:
		b.WriteString(errorStyle.Render(m.list.Err) + "\n")
		b.WriteString(subtitleStyle.Render(msgRetryHint) + "\n")
		return
	}

	sub := fmt.Sprintf("%s players competing", formatCount(m.list.TotalCount))
	if m.list.Phase == core.ListRefreshing {
		sub = m.spinner.View() + " Refreshing..."
	}
	if m.list.Simulating {
		sub += "  " + m.spinner.View() + " Simulating..."
	}
	b.WriteString(subtitleStyle.Render(sub) + "\n")
	if m.list.Err != "" {
		b.WriteString(errorStyle.Render(m.list.Err) + "\n")
	}
	b.WriteString("\n")

	m.renderRows(b, m.list.Entries)

	if m.list.Phase == core.ListLoadingMore {
		b.WriteString(subtitleStyle.Render(m.spinner.View()+" Loading more...") + "\n")
	}
}

func (m Model) viewSearch(b *strings.Builder) {
	b.WriteString(titleStyle.Render("🔍 Search Players") + "\n")
	b.WriteString(m.input.View() + "\n\n")

	switch m.search.Phase {
	case core.SearchEmpty:
		b.WriteString(subtitleStyle.Render(msgSearchPrompt) + "\n")
	case core.SearchDebouncing, core.SearchSearching:
		b.WriteString(subtitleStyle.Render(m.spinner.View()+" Searching...") + "\n")
	case core.SearchFailed:
		b.WriteString(errorStyle.Render(m.search.Err) + "\n")
	case core.SearchDone:
		if len(m.search.Results) == 0 {
			b.WriteString(subtitleStyle.Render(msgNoResults) + "\n")
			return
		}
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("%d found", len(m.search.Results))) + "\n\n")
		m.renderRows(b, m.search.Results)
	}
}

func (m Model) renderRows(b *strings.Builder, entries []core.Entry) {
	visible := m.visibleRows()
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(entries) {
		end = len(entries)
	}
	for i := start; i < end; i++ {
		e := entries[i]
		line := rankStyle(e.Rank).Render(fmt.Sprintf("#%d", e.Rank)) +
			fmt.Sprintf("%-28s", e.Username) +
			ratingStyle.Render(fmt.Sprintf("⭐ %d points", e.Rating))
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
}

func (m Model) visibleRows() int {
	if m.height <= 0 {
		return defaultVisibleRows
	}
	// title, subtitle, blank line, status, stats and help
	rows := m.height - 8
	if rows < 3 {
		rows = 3
	}
	return rows
}

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return s
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}

package main

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadersync/analytics"
	"leadersync/core"
	"leadersync/engine"
	"leadersync/leaderboardtest"
	sdk "leadersync/sdk/go"
	"leadersync/session"
)

func newTestModel(t *testing.T, players int) (Model, *leaderboardtest.Server) {
	t.Helper()
	srv := leaderboardtest.NewServer(players)
	t.Cleanup(srv.Close)
	client, err := sdk.NewClient(srv.URL)
	require.NoError(t, err)

	stats := analytics.NewSessionStats()
	sess := session.New(client,
		session.WithDispatchMode(engine.DispatchSync),
		session.WithDebounce(time.Hour),
		session.WithHooks(stats),
	)
	t.Cleanup(sess.Close)
	return NewModel(context.Background(), sess, stats), srv
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelInit(t *testing.T) {
	m, _ := newTestModel(t, 10)
	assert.NotNil(t, m.Init())
}

func TestModel_RendersLoadedList(t *testing.T) {
	m, srv := newTestModel(t, 1245)
	require.NoError(t, m.sess.List.Load(context.Background()))

	m, _ = update(t, m, stateChangedMsg{})
	view := m.View()

	leader := srv.Board().Page(0, 1)[0]
	assert.Contains(t, view, "1,245 players competing")
	assert.Contains(t, view, "#1")
	assert.Contains(t, view, leader.Username)
}

func TestModel_InitialLoadingAndFailure(t *testing.T) {
	m, srv := newTestModel(t, 30)
	srv.FailNext(leaderboardtest.RouteLeaderboard, 1)

	m.list.Phase = core.ListInitialLoading
	assert.Contains(t, m.View(), "Loading players...")

	next, _ := update(t, m, m.run("load", m.sess.List.Load)())
	view := next.View()
	assert.Contains(t, view, "Failed to load leaderboard. Please try again.")
	assert.Contains(t, view, msgRetryHint)

	next, cmd := update(t, next, runes("r"))
	require.NotNil(t, cmd)
	next, _ = update(t, next, cmd())
	assert.Equal(t, core.ListIdle, next.list.Phase)
	assert.Len(t, next.list.Entries, 30)
	assert.Equal(t, 2, srv.Calls(leaderboardtest.RouteLeaderboard))
}

func TestModel_DownNearEndLoadsMore(t *testing.T) {
	m, _ := newTestModel(t, 300)
	require.NoError(t, m.sess.List.Load(context.Background()))
	m, _ = update(t, m, stateChangedMsg{})

	m.cursor = 40
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Nil(t, cmd)
	assert.Equal(t, 41, m.cursor)

	m.cursor = 44
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Len(t, m.list.Entries, 100)
	assert.Equal(t, 45, m.cursor)
}

func TestModel_SearchModeForwardsQuery(t *testing.T) {
	m, _ := newTestModel(t, 100)

	m, _ = update(t, m, runes("/"))
	require.Equal(t, searchMode, m.mode)
	assert.Contains(t, m.View(), msgSearchPrompt)

	m, _ = update(t, m, runes("a"))
	m, _ = update(t, m, runes("n"))
	st := m.sess.Search.State()
	assert.Equal(t, "an", st.Query)
	assert.Equal(t, core.SearchDebouncing, st.Phase)
	assert.Contains(t, m.View(), "Searching...")

	// q is text while searching
	m, _ = update(t, m, runes("q"))
	assert.Equal(t, searchMode, m.mode)
	assert.Equal(t, "anq", m.sess.Search.State().Query)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, browseMode, m.mode)
	assert.Equal(t, core.SearchEmpty, m.sess.Search.State().Phase)
	assert.Equal(t, "", m.sess.Search.State().Query)
}

func TestModel_SearchResultsRender(t *testing.T) {
	m, _ := newTestModel(t, 10)
	m.mode = searchMode
	m.search = core.SearchState{
		Query:   "zz",
		Phase:   core.SearchDone,
		Results: []core.Entry{},
	}
	assert.Contains(t, m.View(), msgNoResults)

	m.search.Results = []core.Entry{{Username: "zara_das4", Rating: 4200, Rank: 17}}
	view := m.View()
	assert.Contains(t, view, "1 found")
	assert.Contains(t, view, "#17")
	assert.Contains(t, view, "zara_das4")
}

func TestModel_SimulateStatus(t *testing.T) {
	m, _ := newTestModel(t, 10)

	m, _ = update(t, m, simulateDoneMsg{ack: core.SimulationAck{Status: "success"}})
	assert.Equal(t, msgSimulated, m.status)

	m, _ = update(t, m, simulateDoneMsg{err: errors.New("status 500")})
	assert.Equal(t, msgSimulateFailed, m.status)

	m.status = ""
	m, _ = update(t, m, simulateDoneMsg{err: core.ErrBusy})
	assert.Empty(t, m.status)
}

func TestModel_IgnoresOlderSnapshots(t *testing.T) {
	m, _ := newTestModel(t, 10)
	m.list = core.ListState{TotalCount: 99, Revision: 1000}
	m.pull()
	assert.Equal(t, 99, m.list.TotalCount)
}

func TestFormatCount(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1245:    "1,245",
		1234567: "1,234,567",
	}
	for n, want := range tests {
		assert.Equal(t, want, formatCount(n))
	}
}

func TestRankStyleMedals(t *testing.T) {
	assert.Equal(t, colorGold, rankStyle(1).GetForeground())
	assert.Equal(t, colorSilver, rankStyle(2).GetForeground())
	assert.Equal(t, colorBronze, rankStyle(3).GetForeground())
	assert.Equal(t, colorMuted, rankStyle(4).GetForeground())
}

package leaderboardtest

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadersync/core"
	"leadersync/leaderboard"
)

func getJSON(t *testing.T, srv *Server, path string, target any) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if target != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
	}
	return resp.StatusCode
}

func TestServer_LeaderboardPaging(t *testing.T) {
	srv := NewServer(1245)
	defer srv.Close()

	var first, second core.Page
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/leaderboard?limit=50&offset=0", &first))
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/leaderboard?limit=50&offset=50", &second))

	assert.Len(t, first.Entries, 50)
	assert.Equal(t, 1245, first.TotalCount)
	assert.Len(t, second.Entries, 50)
	assert.Equal(t, 1245, second.TotalCount)
	assert.LessOrEqual(t, first.Entries[49].Rank, second.Entries[0].Rank)
	assert.Equal(t, 2, srv.Calls(RouteLeaderboard))
}

func TestServer_DefaultsForBadParams(t *testing.T) {
	srv := NewServer(80)
	defer srv.Close()

	var page core.Page
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/leaderboard?limit=-3&offset=x", &page))
	assert.Equal(t, 50, page.Limit)
	assert.Equal(t, 0, page.Offset)
	assert.Len(t, page.Entries, 50)
}

func TestServer_SearchAndFailures(t *testing.T) {
	srv := NewServer(0, WithPlayers(
		leaderboard.Player{Username: "anna_smith1", Rating: 4000},
		leaderboard.Player{Username: "bob_das2", Rating: 4500},
	))
	defer srv.Close()

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv, "/search?query=", nil))

	var body struct {
		Users []core.Entry `json:"users"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/search?query="+url.QueryEscape("ANN"), &body))
	require.Len(t, body.Users, 1)
	assert.Equal(t, 2, body.Users[0].Rank)
	assert.Equal(t, []string{"ANN"}, srv.Queries())

	srv.FailNext(RouteSearch, 1)
	assert.Equal(t, http.StatusInternalServerError, getJSON(t, srv, "/search?query=bob", nil))
	assert.Equal(t, http.StatusOK, getJSON(t, srv, "/search?query=bob", &body))
}

func TestServer_SimulateBoostsHighScorers(t *testing.T) {
	srv := NewServer(200, WithSeed(42))
	defer srv.Close()

	resp, err := http.Post(srv.URL+RouteSimulate, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ack core.SimulationAck
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.Equal(t, "success", ack.Status)

	top := srv.Board().Page(0, 1)
	require.Len(t, top, 1)
	assert.GreaterOrEqual(t, top[0].Rating, 4800)
	assert.Equal(t, 200, srv.Board().Len())

	assert.Equal(t, http.StatusMethodNotAllowed, getJSON(t, srv, RouteSimulate, nil))
}

// Package leaderboard keeps an in-memory ranked population of players.
// It backs the fake scoring service used by tests and the demo renderer.
package leaderboard

import "leadersync/core"

// Player is a raw score record before ranks are assigned.
type Player struct {
	Username string
	Rating   int
}

// Board abstracts ranked population operations. Ranks are dense:
// players with equal ratings share a rank and the next rating gets rank+1.
type Board interface {
	Update(username string, rating int)
	Remove(username string)
	Len() int
	Page(offset, limit int) []core.Entry
	Search(query string, max int) []core.Entry
	Get(username string) (core.Entry, bool)
}

package core

import (
	"errors"
	"strings"
)

// Entry is one ranked player record as returned by the scoring service.
// Rank is server-assigned (1 = best) and never recomputed locally.
type Entry struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Rank     int    `json:"rank"`
}

// Validate rejects entries a well-behaved service would never send.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Username) == "" {
		return errors.New("entry has empty username")
	}
	if e.Rank < 1 {
		return errors.New("entry rank must be positive")
	}
	return nil
}

// Page is the result of one leaderboard fetch.
type Page struct {
	Entries    []Entry `json:"users"`
	TotalCount int     `json:"total_count"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}

// SimulationAck is the opaque acknowledgement of a simulation trigger.
type SimulationAck struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ListPhase is the lifecycle phase of the paginated list.
type ListPhase string

const (
	ListIdle           ListPhase = "idle"
	ListInitialLoading ListPhase = "initial_loading"
	ListRefreshing     ListPhase = "refreshing"
	ListLoadingMore    ListPhase = "loading_more"
	ListFailed         ListPhase = "failed"
)

// Active reports whether a fetch is outstanding in this phase.
func (p ListPhase) Active() bool {
	return p == ListInitialLoading || p == ListRefreshing || p == ListLoadingMore
}

// ListState is an immutable snapshot of the browsing view.
// Implementations hand out clones so observers never share the backing slice.
type ListState struct {
	Entries    []Entry   `json:"entries"`
	Offset     int       `json:"offset"`
	TotalCount int       `json:"total_count"`
	Phase      ListPhase `json:"phase"`
	Simulating bool      `json:"simulating"`
	Err        string    `json:"error,omitempty"`
	// Revision increases with every transition of the owning controller.
	Revision uint64 `json:"revision"`
}

// HasMore reports whether another page can be requested.
func (s ListState) HasMore() bool {
	return len(s.Entries) < s.TotalCount
}

// Clone returns a deep copy of the state.
func (s ListState) Clone() ListState {
	cp := s
	cp.Entries = cloneEntries(s.Entries)
	return cp
}

// SearchPhase is the lifecycle phase of the search view.
type SearchPhase string

const (
	SearchEmpty      SearchPhase = "empty"
	SearchDebouncing SearchPhase = "debouncing"
	SearchSearching  SearchPhase = "searching"
	SearchDone       SearchPhase = "done"
	SearchFailed     SearchPhase = "failed"
)

// SearchState is an immutable snapshot of the search view.
type SearchState struct {
	Query    string      `json:"query"`
	Results  []Entry     `json:"results"`
	Phase    SearchPhase `json:"phase"`
	Err      string      `json:"error,omitempty"`
	Revision uint64      `json:"revision"`
}

// Searched reports whether the current query has produced an outcome.
func (s SearchState) Searched() bool {
	return s.Phase == SearchDone || s.Phase == SearchFailed
}

// Clone returns a deep copy of the state.
func (s SearchState) Clone() SearchState {
	cp := s
	cp.Results = cloneEntries(s.Results)
	return cp
}

func cloneEntries(in []Entry) []Entry {
	if in == nil {
		return nil
	}
	out := make([]Entry, len(in))
	copy(out, in)
	return out
}

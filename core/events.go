package core

import "time"

// EventType enumerates state notifications emitted by the controllers.
type EventType string

const (
	EventListChanged        EventType = "list_changed"
	EventSearchChanged      EventType = "search_changed"
	EventSearchDiscarded    EventType = "search_discarded"
	EventSimulationComplete EventType = "simulation_completed"
	EventSimulationFailed   EventType = "simulation_failed"
)

// Event is an immutable notification. Exactly one of List, Search or Ack is set
// depending on Type; failure events carry Err instead.
type Event struct {
	Type     EventType      `json:"type"`
	Time     time.Time      `json:"time"`
	List     *ListState     `json:"list,omitempty"`
	Search   *SearchState   `json:"search,omitempty"`
	Ack      *SimulationAck `json:"ack,omitempty"`
	Err      string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Revision returns the snapshot revision carried by the event, or 0.
func (e Event) Revision() uint64 {
	switch {
	case e.List != nil:
		return e.List.Revision
	case e.Search != nil:
		return e.Search.Revision
	}
	return 0
}

func NewListChanged(s ListState) Event {
	cp := s.Clone()
	return Event{Type: EventListChanged, Time: time.Now().UTC(), List: &cp}
}

func NewSearchChanged(s SearchState) Event {
	cp := s.Clone()
	return Event{Type: EventSearchChanged, Time: time.Now().UTC(), Search: &cp}
}

// NewSearchDiscarded records a response that arrived for a superseded query.
func NewSearchDiscarded(query string, token, latest uint64) Event {
	return Event{
		Type: EventSearchDiscarded,
		Time: time.Now().UTC(),
		Metadata: map[string]any{
			"query":  query,
			"token":  token,
			"latest": latest,
		},
	}
}

func NewSimulationComplete(ack SimulationAck) Event {
	return Event{Type: EventSimulationComplete, Time: time.Now().UTC(), Ack: &ack}
}

func NewSimulationFailed(err error) Event {
	return Event{Type: EventSimulationFailed, Time: time.Now().UTC(), Err: err.Error()}
}

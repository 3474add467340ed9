// Package leaderboardtest provides an in-process scoring service that speaks the
// same HTTP contract as the production backend. Tests and the demo renderer use it.
package leaderboardtest

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"leadersync/leaderboard"
)

// Routes served by the fake.
const (
	RouteLeaderboard = "/leaderboard"
	RouteSearch      = "/search"
	RouteSimulate    = "/simulate"
	RouteHealth      = "/health"
)

const (
	defaultLimit   = 50
	searchCap      = 100
	simulateCount  = 50
	highScoreCount = 5
	minRating      = 100
	maxRating      = 5000
	highRatingMin  = 4800
)

var (
	firstNames = []string{"alex", "aaron", "alice", "amy", "andrew", "anna", "anthony", "ashley",
		"zack", "zara", "zane", "zoe", "rahul", "priya", "amit", "neha",
		"john", "jane", "mike", "emma", "david", "lisa", "tom", "sarah"}
	lastNames = []string{"sharma", "kumar", "verma", "patel", "singh", "reddy", "joshi", "das",
		"smith", "johnson", "williams", "brown", "jones", "garcia", "miller", "davis"}
)

// Hook runs before a route handler. Returning false aborts the request with 500.
type Hook func(r *http.Request) bool

// Option configures a Service.
type Option func(*Service)

// WithSeed makes the generated population and simulations reproducible.
func WithSeed(seed int64) Option {
	return func(s *Service) { s.seed = seed }
}

// WithPlayers seeds the board with explicit players instead of generated ones.
func WithPlayers(players ...leaderboard.Player) Option {
	return func(s *Service) { s.fixed = append(s.fixed, players...) }
}

// Service is a fake remote scoring service backed by a ranked skip list.
type Service struct {
	mux   *http.ServeMux
	seed  int64
	fixed []leaderboard.Player
	board *leaderboard.SkipList

	mu       sync.Mutex
	rng      *rand.Rand
	names    []string
	calls    map[string]int
	failures map[string]int
	hooks    map[string]Hook
	queries  []string
}

// Server runs a Service on a loopback httptest listener.
type Server struct {
	*httptest.Server
	*Service
}

// NewServer starts a fake service with the given number of generated players.
func NewServer(players int, opts ...Option) *Server {
	svc := NewService(players, opts...)
	return &Server{Server: httptest.NewServer(svc), Service: svc}
}

// NewService builds the handler without listening, for callers that own the server.
func NewService(players int, opts ...Option) *Service {
	s := &Service{
		seed:     1,
		calls:    map[string]int{},
		failures: map[string]int{},
		hooks:    map[string]Hook{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = rand.New(rand.NewSource(s.seed))
	s.board = leaderboard.NewSeededSkipList(uint64(s.seed))
	s.populate(players)

	mux := http.NewServeMux()
	mux.HandleFunc(RouteLeaderboard, s.instrument(RouteLeaderboard, http.MethodGet, s.handleLeaderboard))
	mux.HandleFunc(RouteSearch, s.instrument(RouteSearch, http.MethodGet, s.handleSearch))
	mux.HandleFunc(RouteSimulate, s.instrument(RouteSimulate, http.MethodPost, s.handleSimulate))
	mux.HandleFunc(RouteHealth, s.instrument(RouteHealth, http.MethodGet, s.handleHealth))
	s.mux = mux
	return s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Service) populate(n int) {
	for _, p := range s.fixed {
		s.board.Update(p.Username, p.Rating)
		s.names = append(s.names, p.Username)
	}
	for i := 0; i < n; i++ {
		first := firstNames[s.rng.Intn(len(firstNames))]
		last := lastNames[s.rng.Intn(len(lastNames))]
		name := fmt.Sprintf("%s_%s%d", first, last, i+1)
		s.board.Update(name, minRating+s.rng.Intn(maxRating-minRating+1))
		s.names = append(s.names, name)
	}
}

// Board exposes the ranked population for assertions.
func (s *Service) Board() *leaderboard.SkipList { return s.board }

// Calls returns how many requests reached route.
func (s *Service) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Queries returns every search query received, in arrival order.
func (s *Service) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// FailNext makes the next n requests to route answer 500.
func (s *Service) FailNext(route string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] += n
}

// SetHook installs a hook for route; nil removes it.
func (s *Service) SetHook(route string, h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h == nil {
		delete(s.hooks, route)
		return
	}
	s.hooks[route] = h
}

func (s *Service) instrument(route, method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		s.mu.Lock()
		s.calls[route]++
		hook := s.hooks[route]
		fail := s.failures[route] > 0
		if fail {
			s.failures[route]--
		}
		s.mu.Unlock()

		if hook != nil && !hook(r) {
			fail = true
		}
		if fail {
			writeError(w, http.StatusInternalServerError, "internal", "injected failure")
			return
		}
		next(w, r)
	}
}

func (s *Service) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", defaultLimit, 1)
	offset := intParam(r, "offset", 0, 0)
	writeJSON(w, map[string]any{
		"users":       s.board.Page(offset, limit),
		"total_count": s.board.Len(),
		"limit":       limit,
		"offset":      offset,
	})
}

func (s *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "invalid_query", "query parameter is required")
		return
	}
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	writeJSON(w, map[string]any{
		"users": s.board.Search(query, searchCap),
		"query": query,
	})
}

func (s *Service) handleSimulate(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	count := simulateCount
	if count > len(s.names) {
		count = len(s.names)
	}
	high := highScoreCount
	if high > count {
		high = count
	}
	for i := 0; i < count; i++ {
		name := s.names[s.rng.Intn(len(s.names))]
		rating := minRating + s.rng.Intn(maxRating-minRating+1)
		if i < high {
			rating = highRatingMin + s.rng.Intn(maxRating-highRatingMin+1)
		}
		s.board.Update(name, rating)
	}
	s.mu.Unlock()

	writeJSON(w, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Updated %d users (%d with high scores)", count, high),
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// intParam parses a query parameter, falling back to def when absent or below min.
func intParam(r *http.Request, name string, def, min int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Code: code, Message: msg})
}

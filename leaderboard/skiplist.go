package leaderboard

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"strings"
	"sync"

	"leadersync/core"
)

// A skip list keyed by (rating desc, username asc) to achieve O(log n) updates.

const maxLevel = 16
const pFactor = 0.25

type node struct {
	p    Player
	next [maxLevel]*node
}

type SkipList struct {
	mu     sync.RWMutex
	head   *node
	lvl    int
	byName map[string]*node
	rng    *rand.Rand
}

func NewSkipList() *SkipList {
	var seed [16]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		seed = [16]byte{}
	}
	return newSkipList(binary.BigEndian.Uint64(seed[:8]), binary.BigEndian.Uint64(seed[8:]))
}

// NewSeededSkipList returns a skip list whose level choices are reproducible.
func NewSeededSkipList(seed uint64) *SkipList {
	return newSkipList(seed, seed^0x9e3779b97f4a7c15)
}

func newSkipList(s1, s2 uint64) *SkipList {
	return &SkipList{
		head:   &node{},
		lvl:    1,
		byName: map[string]*node{},
		rng:    rand.New(rand.NewPCG(s1, s2)),
	}
}

func (s *SkipList) randomLevel() int {
	lvl := 1
	for lvl < maxLevel && s.rng.Float64() < pFactor {
		lvl++
	}
	return lvl
}

func less(a, b Player) bool {
	if a.Rating == b.Rating {
		return a.Username < b.Username
	}
	return a.Rating > b.Rating
}

// Update inserts the player or moves them to a new rating.
func (s *SkipList) Update(username string, rating int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.byName[username]; ok {
		s.removeLocked(old.p)
	}
	p := Player{Username: username, Rating: rating}
	var update [maxLevel]*node
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && less(cur.next[i].p, p) {
			cur = cur.next[i]
		}
		update[i] = cur
	}
	lvl := s.randomLevel()
	if lvl > s.lvl {
		for i := s.lvl; i < lvl; i++ {
			update[i] = s.head
		}
		s.lvl = lvl
	}
	n := &node{p: p}
	for i := 0; i < lvl; i++ {
		n.next[i] = update[i].next[i]
		update[i].next[i] = n
	}
	s.byName[username] = n
}

func (s *SkipList) removeLocked(p Player) {
	var update [maxLevel]*node
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && less(cur.next[i].p, p) {
			cur = cur.next[i]
		}
		update[i] = cur
	}
	target := update[0].next[0]
	if target == nil || target.p.Username != p.Username {
		return
	}
	for i := 0; i < s.lvl; i++ {
		if update[i].next[i] == target {
			update[i].next[i] = target.next[i]
		}
	}
	delete(s.byName, p.Username)
	for s.lvl > 1 && s.head.next[s.lvl-1] == nil {
		s.lvl--
	}
}

func (s *SkipList) Remove(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.byName[username]; ok {
		s.removeLocked(n.p)
	}
}

func (s *SkipList) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName)
}

// Usernames returns every username in rank order.
func (s *SkipList) Usernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byName))
	for cur := s.head.next[0]; cur != nil; cur = cur.next[0] {
		out = append(out, cur.p.Username)
	}
	return out
}

// walk visits players in order with their dense rank until fn returns false.
// Caller must hold at least the read lock.
func (s *SkipList) walk(fn func(idx int, e core.Entry) bool) {
	rank, idx := 0, 0
	prev := 0
	for cur := s.head.next[0]; cur != nil; cur = cur.next[0] {
		if idx == 0 || cur.p.Rating != prev {
			rank++
			prev = cur.p.Rating
		}
		if !fn(idx, core.Entry{Username: cur.p.Username, Rating: cur.p.Rating, Rank: rank}) {
			return
		}
		idx++
	}
}

// Page returns up to limit ranked entries starting at position offset.
func (s *SkipList) Page(offset, limit int) []core.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Entry{}
	if limit <= 0 || offset < 0 {
		return out
	}
	s.walk(func(idx int, e core.Entry) bool {
		if idx >= offset+limit {
			return false
		}
		if idx >= offset {
			out = append(out, e)
		}
		return true
	})
	return out
}

// Search returns up to max players whose username contains query, case-insensitively,
// in rank order with their global rank.
func (s *SkipList) Search(query string, max int) []core.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Entry{}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" || max <= 0 {
		return out
	}
	s.walk(func(_ int, e core.Entry) bool {
		if strings.Contains(strings.ToLower(e.Username), needle) {
			out = append(out, e)
		}
		return len(out) < max
	})
	return out
}

func (s *SkipList) Get(username string) (core.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.byName[username]; !ok {
		return core.Entry{}, false
	}
	var found core.Entry
	s.walk(func(_ int, e core.Entry) bool {
		if e.Username == username {
			found = e
			return false
		}
		return true
	})
	return found, true
}

var _ Board = (*SkipList)(nil)

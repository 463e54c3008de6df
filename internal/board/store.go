package board

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"kanban/internal/domain"
)

// Store holds the current board and applies actions to it.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []func(State)
}

func NewStore() *Store {
	return &Store{}
}

// Dispatch reduces a into the current state and notifies subscribers with
// a copy of the result.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	snapshot := s.state.Clone()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot.Clone())
	}
}

// State returns a deep copy of the current board.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to run after every dispatch.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Resolve finds a card by its full id, its board number (1-based, in column
// order as rendered), or a unique id prefix, in that order.
func (s *Store) Resolve(ref string) (Card, domain.Status, error) {
	st := s.State()
	if c, col, ok := st.Find(ref); ok {
		return c, col, nil
	}
	if ref == "" {
		return Card{}, "", ErrCardNotFound
	}

	// all-digit refs can also be hex id prefixes
	if n, err := strconv.Atoi(ref); err == nil {
		if c, col, err := st.Nth(n); err == nil {
			return c, col, nil
		}
	}

	var (
		match    Card
		matchCol domain.Status
		n        int
	)
	for _, col := range domain.Statuses {
		for _, c := range st.Column(col) {
			if strings.HasPrefix(c.ID, ref) {
				match, matchCol = c, col
				n++
			}
		}
	}
	switch n {
	case 0:
		return Card{}, "", ErrCardNotFound
	case 1:
		return match, matchCol, nil
	}
	return Card{}, "", ErrAmbiguousRef
}

// Package board holds the client-side view of the task board: a pure
// reducer over three columns, a store that applies actions, and a
// controller that pairs each local change with the matching API call.
package board

import "kanban/internal/domain"

// Card is a task as shown on the board.
type Card struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// State is the three board columns. Each card id appears in at most one
// column.
type State struct {
	Todo       []Card `json:"todo"`
	InProgress []Card `json:"inProgress"`
	Done       []Card `json:"done"`
}

// Column returns the cards of column s, or nil for an unknown column.
func (s State) Column(col domain.Status) []Card {
	switch col {
	case domain.StatusTodo:
		return s.Todo
	case domain.StatusInProgress:
		return s.InProgress
	case domain.StatusDone:
		return s.Done
	}
	return nil
}

// Find returns the card with id and the column holding it.
func (s State) Find(id string) (Card, domain.Status, bool) {
	for _, col := range domain.Statuses {
		for _, c := range s.Column(col) {
			if c.ID == id {
				return c, col, true
			}
		}
	}
	return Card{}, "", false
}

// Nth returns the n-th card counting from 1 across todo, inProgress, done.
func (s State) Nth(n int) (Card, domain.Status, error) {
	if n < 1 {
		return Card{}, "", ErrCardNotFound
	}
	for _, col := range domain.Statuses {
		cards := s.Column(col)
		if n <= len(cards) {
			return cards[n-1], col, nil
		}
		n -= len(cards)
	}
	return Card{}, "", ErrCardNotFound
}

// Len is the number of cards on the board.
func (s State) Len() int {
	return len(s.Todo) + len(s.InProgress) + len(s.Done)
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{
		Todo:       cloneCards(s.Todo),
		InProgress: cloneCards(s.InProgress),
		Done:       cloneCards(s.Done),
	}
}

func (s State) withColumn(col domain.Status, cards []Card) State {
	switch col {
	case domain.StatusTodo:
		s.Todo = cards
	case domain.StatusInProgress:
		s.InProgress = cards
	case domain.StatusDone:
		s.Done = cards
	}
	return s
}

type ActionType string

const (
	LoadTasks  ActionType = "LOAD_TASKS"
	AddTask    ActionType = "ADD_TASK"
	MoveTask   ActionType = "MOVE_TASK"
	DeleteTask ActionType = "DELETE_TASK"
)

// Action is a board transition. Which fields are read depends on Type:
// LoadTasks uses Tasks, AddTask uses Card, MoveTask uses Card, From and To,
// DeleteTask uses Card.ID and From.
type Action struct {
	Type  ActionType
	Tasks State
	Card  Card
	From  domain.Status
	To    domain.Status
}

func Load(s State) Action { return Action{Type: LoadTasks, Tasks: s} }

func Add(c Card) Action { return Action{Type: AddTask, Card: c} }

func Move(c Card, from, to domain.Status) Action {
	return Action{Type: MoveTask, Card: c, From: from, To: to}
}

func Delete(id string, from domain.Status) Action {
	return Action{Type: DeleteTask, Card: Card{ID: id}, From: from}
}

// Reduce returns the state after applying a. The input is never modified;
// actions that do not apply return s unchanged.
func Reduce(s State, a Action) State {
	switch a.Type {
	case LoadTasks:
		return a.Tasks.Clone()

	case AddTask:
		if a.Card.ID == "" {
			return s
		}
		if _, _, exists := s.Find(a.Card.ID); exists {
			return s
		}
		return s.withColumn(domain.StatusTodo, appendCard(s.Todo, a.Card))

	case MoveTask:
		if a.Card.ID == "" || !a.From.Valid() || !a.To.Valid() || a.From == a.To {
			return s
		}
		src := s.Column(a.From)
		if indexOf(src, a.Card.ID) < 0 {
			return s
		}
		next := s.withColumn(a.From, without(src, a.Card.ID))
		return next.withColumn(a.To, appendCard(s.Column(a.To), a.Card))

	case DeleteTask:
		if a.Card.ID == "" || !a.From.Valid() {
			return s
		}
		src := s.Column(a.From)
		if indexOf(src, a.Card.ID) < 0 {
			return s
		}
		return s.withColumn(a.From, without(src, a.Card.ID))
	}
	return s
}

// GroupTasks buckets server tasks into columns, keeping server order.
// Tasks with an unknown status are dropped.
func GroupTasks(tasks []domain.Task) State {
	var s State
	for _, t := range tasks {
		if !t.Status.Valid() {
			continue
		}
		s = s.withColumn(t.Status, append(s.Column(t.Status), Card{ID: t.ID, Text: t.Text}))
	}
	return s
}

func indexOf(cards []Card, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// appendCard never writes into the backing array of cards.
func appendCard(cards []Card, c Card) []Card {
	out := make([]Card, 0, len(cards)+1)
	out = append(out, cards...)
	return append(out, c)
}

func without(cards []Card, id string) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	return append([]Card(nil), cards...)
}

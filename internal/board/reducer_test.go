package board

import (
	"fmt"
	"math/rand"
	"testing"

	"kanban/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() State {
	return State{
		Todo:       []Card{{ID: "a", Text: "buy milk"}, {ID: "b", Text: "call mom"}},
		InProgress: []Card{{ID: "c", Text: "write report"}},
		Done:       []Card{{ID: "d", Text: "pay rent"}},
	}
}

func TestReduceLoadReplacesState(t *testing.T) {
	next := Reduce(sample(), Load(State{Done: []Card{{ID: "z", Text: "z"}}}))
	assert.Empty(t, next.Todo)
	assert.Empty(t, next.InProgress)
	assert.Equal(t, []Card{{ID: "z", Text: "z"}}, next.Done)
}

func TestReduceAdd(t *testing.T) {
	s := sample()
	next := Reduce(s, Add(Card{ID: "e", Text: "new"}))
	assert.Equal(t, Card{ID: "e", Text: "new"}, next.Todo[2])
	assert.Len(t, s.Todo, 2, "input must not change")

	assert.Equal(t, s, Reduce(s, Add(Card{Text: "no id"})))
	assert.Equal(t, s, Reduce(s, Add(Card{ID: "c", Text: "dup"})))
}

func TestReduceMove(t *testing.T) {
	s := sample()
	next := Reduce(s, Move(Card{ID: "a", Text: "buy milk"}, domain.StatusTodo, domain.StatusDone))

	assert.Equal(t, []Card{{ID: "b", Text: "call mom"}}, next.Todo)
	assert.Equal(t, []Card{{ID: "d", Text: "pay rent"}, {ID: "a", Text: "buy milk"}}, next.Done)
	assert.Len(t, s.Todo, 2)
	assert.Len(t, s.Done, 1)
}

func TestReduceMoveNoOps(t *testing.T) {
	s := sample()
	cases := map[string]Action{
		"missing card":   Move(Card{ID: "nope"}, domain.StatusTodo, domain.StatusDone),
		"wrong source":   Move(Card{ID: "a"}, domain.StatusDone, domain.StatusInProgress),
		"unknown column": Move(Card{ID: "a"}, domain.StatusTodo, "archive"),
		"same column":    Move(Card{ID: "a"}, domain.StatusTodo, domain.StatusTodo),
		"empty id":       Move(Card{}, domain.StatusTodo, domain.StatusDone),
	}
	for name, a := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, s, Reduce(s, a))
		})
	}
}

func TestReduceDelete(t *testing.T) {
	s := sample()
	next := Reduce(s, Delete("c", domain.StatusInProgress))
	assert.Empty(t, next.InProgress)
	assert.Equal(t, 3, next.Len())

	assert.Equal(t, s, Reduce(s, Delete("c", domain.StatusTodo)))
	assert.Equal(t, s, Reduce(s, Delete("", domain.StatusTodo)))
	assert.Equal(t, s, Reduce(s, Delete("c", "")))
}

func TestReduceUnknownAction(t *testing.T) {
	s := sample()
	assert.Equal(t, s, Reduce(s, Action{Type: "RENAME"}))
}

func TestGroupTasks(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", Text: "one", Status: domain.StatusDone},
		{ID: "2", Text: "two", Status: domain.StatusTodo},
		{ID: "3", Text: "three", Status: "archived"},
		{ID: "4", Text: "four", Status: domain.StatusTodo},
		{ID: "5", Text: "five", Status: domain.StatusInProgress},
	}
	s := GroupTasks(tasks)
	assert.Equal(t, []Card{{ID: "2", Text: "two"}, {ID: "4", Text: "four"}}, s.Todo)
	assert.Equal(t, []Card{{ID: "5", Text: "five"}}, s.InProgress)
	assert.Equal(t, []Card{{ID: "1", Text: "one"}}, s.Done)
}

// Random action sequences never leave a card id in two columns.
func TestReduceKeepsIDsUnique(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cols := append([]domain.Status{}, domain.Statuses...)

	for run := 0; run < 200; run++ {
		var s State
		for step := 0; step < 60; step++ {
			id := fmt.Sprintf("t%d", rng.Intn(12))
			from := cols[rng.Intn(len(cols))]
			to := cols[rng.Intn(len(cols))]

			var a Action
			switch rng.Intn(3) {
			case 0:
				a = Add(Card{ID: id, Text: id})
			case 1:
				a = Move(Card{ID: id, Text: id}, from, to)
			default:
				a = Delete(id, from)
			}
			s = Reduce(s, a)

			seen := map[string]int{}
			for _, col := range cols {
				for _, c := range s.Column(col) {
					seen[c.ID]++
				}
			}
			for cardID, n := range seen {
				require.Equal(t, 1, n, "run %d step %d: %s appears %d times", run, step, cardID, n)
			}
		}
	}
}

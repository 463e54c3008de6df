package domain

import "strings"

// Status is the board column a task sits in.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inProgress"
	StatusDone       Status = "done"
)

// Statuses lists the columns in board order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus accepts the wire names plus a few spellings people type on the
// command line ("in-progress", "doing").
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "todo", "to-do":
		return StatusTodo, nil
	case "inprogress", "in-progress", "in_progress", "doing":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", ErrInvalidStatus
}

// Task is a card on the board. Owners holds user ids; every owner can see
// and share the task.
type Task struct {
	ID     string   `db:"id" json:"_id"`
	Text   string   `db:"text" json:"text"`
	Status Status   `db:"status" json:"status"`
	Owners []string `db:"owners" json:"owners"`
}

func (t *Task) HasOwner(userID string) bool {
	for _, o := range t.Owners {
		if o == userID {
			return true
		}
	}
	return false
}

// TaskPatch carries the fields of an update. Nil fields are left unchanged.
type TaskPatch struct {
	Text   *string
	Status *Status
}

func (p TaskPatch) Empty() bool {
	return p.Text == nil && p.Status == nil
}

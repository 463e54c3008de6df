package domain

// Task event types pushed to connected owners.
const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskDeleted = "task_deleted"
	EventTaskShared  = "task_shared"
)

// TaskEvent tells a client that one of its tasks changed. It carries no
// task state; clients re-fetch.
type TaskEvent struct {
	Type   string `json:"type"`
	TaskID string `json:"taskId"`
}

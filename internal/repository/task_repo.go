package repository

import (
	"context"
	"errors"
	"fmt"

	"kanban/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository stores tasks in PostgreSQL with owners in a TEXT[] column.
type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, text, status, owners FROM tasks
		 WHERE $1 = ANY(owners)
		 ORDER BY created_at, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	res := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}
	return res, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	t.ID = uuid.NewString()
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (id, text, status, owners) VALUES ($1, $2, $3, $4)`,
		t.ID, t.Text, string(t.Status), t.Owners,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT id, text, status, owners FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET text = COALESCE($2, text), status = COALESCE($3, status) WHERE id = $1`,
		id, patch.Text, status,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// AddOwner appends ownerID unless it is already present. The guard and the
// append happen in one statement.
func (r *TaskRepository) AddOwner(ctx context.Context, id, ownerID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET owners = array_append(owners, $2)
		 WHERE id = $1 AND NOT ($2 = ANY(owners))`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("share task: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("share task: %w", err)
	}
	if !exists {
		return domain.ErrTaskNotFound
	}
	return domain.ErrAlreadyShared
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t      domain.Task
		status string
	)
	if err := row.Scan(&t.ID, &t.Text, &status, &t.Owners); err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	if t.Owners == nil {
		t.Owners = []string{}
	}
	return &t, nil
}

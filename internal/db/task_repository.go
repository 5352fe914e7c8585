package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrTaskNotFound = errors.New("task not found")

type Task struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Content   string
	Status    bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// Username of the owning user, populated on reads via join.
	Username string
}

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *Task) error {
	query := `
		INSERT INTO tasks (id, user_id, title, content, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Content, task.Status,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return foreignKeyViolation(err)
	}

	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	query := `
		SELECT t.id, t.user_id, t.title, t.content, t.status, t.created_at, t.updated_at, u.username
		FROM tasks t
		JOIN users u ON u.id = t.user_id
		WHERE t.id = $1
	`

	task := &Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.UserID, &task.Title, &task.Content, &task.Status,
		&task.CreatedAt, &task.UpdatedAt, &task.Username,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}

// List returns every task, newest first, with the owner's username joined in
// a single query.
func (r *TaskRepository) List(ctx context.Context) ([]*Task, error) {
	query := `
		SELECT t.id, t.user_id, t.title, t.content, t.status, t.created_at, t.updated_at, u.username
		FROM tasks t
		JOIN users u ON u.id = t.user_id
		ORDER BY t.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task := &Task{}
		err := rows.Scan(
			&task.ID, &task.UserID, &task.Title, &task.Content, &task.Status,
			&task.CreatedAt, &task.UpdatedAt, &task.Username,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks
		SET user_id = $2, title = $3, content = $4, status = $5, updated_at = $6
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Content, task.Status, time.Now(),
	)
	if err != nil {
		return foreignKeyViolation(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// foreignKeyViolation surfaces a missing owner as ErrUserNotFound so task
// writes against deleted users read as a client error, not a 500.
func foreignKeyViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return ErrUserNotFound
	}
	return err
}

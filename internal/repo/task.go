package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
)

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

const taskColumns = `id, title, description, completed, user_id, list_id, ipfs_cid, pin_status, chain_tx, created_at, updated_at`

func scanTask(row pgx.Row, t *model.Task) error {
	return row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &t.UserID, &t.ListID,
		&t.IPFSCID, &t.PinStatus, &t.ChainTx, &t.CreatedAt, &t.UpdatedAt,
	)
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if t.PinStatus == "" {
		t.PinStatus = model.PinNone
	}
	err := scanTask(r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, user_id, list_id, pin_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+taskColumns,
		t.Title, t.Description, t.UserID, t.ListID, t.PinStatus,
	), &t)
	return t, mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	var t model.Task
	err := scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id), &t)
	return t, mapError(err)
}

func (r *TaskRepo) ListByUser(ctx context.Context, userID int64) ([]model.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *TaskRepo) ListByList(ctx context.Context, listID int64) ([]model.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE list_id = $1 ORDER BY created_at DESC, id DESC`, listID)
}

func (r *TaskRepo) list(ctx context.Context, query string, arg int64) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SetCompleted идемпотентен: повторная отметка не меняет состояние
func (r *TaskRepo) SetCompleted(ctx context.Context, id int64) (model.Task, error) {
	var t model.Task
	err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET completed = TRUE,
		    updated_at = CASE WHEN completed THEN updated_at ELSE now() END
		WHERE id = $1
		RETURNING `+taskColumns,
		id,
	), &t)
	return t, mapError(err)
}

func (r *TaskRepo) SetChainTx(ctx context.Context, id int64, tx string) error {
	_, err := r.pool.Exec(ctx, "UPDATE tasks SET chain_tx = $2 WHERE id = $1", id, tx)
	return err
}

// Ключи идемпотентности принадлежат пользователю: одинаковый ключ у двух пользователей не пересекается
func (r *TaskRepo) SaveIdempotencyKey(ctx context.Context, userID int64, key string, resourceID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (user_id, key, resource_id) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, key) DO NOTHING
	`, userID, key, resourceID)
	return err
}

func (r *TaskRepo) GetIdempotencyKey(ctx context.Context, userID int64, key string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE user_id = $1 AND key = $2
	`, userID, key).Scan(&id)
	return id, mapError(err)
}

func (r *TaskRepo) GetStats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM task_lists),
			(SELECT COUNT(*) FROM tasks),
			(SELECT COUNT(*) FROM tasks WHERE completed)
	`).Scan(&s.TotalUsers, &s.TotalLists, &s.TotalTasks, &s.CompletedTasks)
	return s, err
}

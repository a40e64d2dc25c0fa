package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
)

type ListRepo struct {
	pool *pgxpool.Pool
}

func NewListRepo(pool *pgxpool.Pool) *ListRepo {
	return &ListRepo{pool: pool}
}

const listColumns = `l.id, l.name, l.description, l.owner_id, l.chain_tx, l.created_at`

func scanList(row pgx.Row, l *model.TaskList) error {
	return row.Scan(&l.ID, &l.Name, &l.Description, &l.OwnerID, &l.ChainTx, &l.CreatedAt)
}

func (r *ListRepo) Create(ctx context.Context, l model.TaskList) (model.TaskList, error) {
	err := scanList(r.pool.QueryRow(ctx, `
		INSERT INTO task_lists AS l (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING `+listColumns,
		l.Name, l.Description, l.OwnerID,
	), &l)
	return l, mapError(err)
}

// Get возвращает список вместе с участниками
func (r *ListRepo) Get(ctx context.Context, id int64) (model.TaskList, error) {
	var l model.TaskList
	err := scanList(r.pool.QueryRow(ctx, `SELECT `+listColumns+` FROM task_lists l WHERE l.id = $1`, id), &l)
	if err != nil {
		return l, mapError(err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT s.list_id, s.user_id, u.email, s.role, s.created_at
		FROM list_shares s
		JOIN users u ON u.id = s.user_id
		WHERE s.list_id = $1
		ORDER BY s.created_at, s.user_id
	`, id)
	if err != nil {
		return l, err
	}
	defer rows.Close()

	for rows.Next() {
		var s model.Share
		if err := rows.Scan(&s.ListID, &s.UserID, &s.Email, &s.Role, &s.CreatedAt); err != nil {
			return l, err
		}
		l.Shares = append(l.Shares, s)
	}
	return l, rows.Err()
}

// ListForUser возвращает списки, которыми пользователь владеет или которые ему расшарены
func (r *ListRepo) ListForUser(ctx context.Context, userID int64) ([]model.TaskList, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listColumns+`
		FROM task_lists l
		WHERE l.owner_id = $1
		   OR EXISTS (SELECT 1 FROM list_shares s WHERE s.list_id = l.id AND s.user_id = $1)
		ORDER BY l.created_at DESC, l.id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := make([]model.TaskList, 0)
	for rows.Next() {
		var l model.TaskList
		if err := scanList(rows, &l); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *ListRepo) Update(ctx context.Context, l model.TaskList) (model.TaskList, error) {
	err := scanList(r.pool.QueryRow(ctx, `
		UPDATE task_lists AS l
		SET name = $2, description = $3
		WHERE l.id = $1
		RETURNING `+listColumns,
		l.ID, l.Name, l.Description,
	), &l)
	return l, mapError(err)
}

// Delete удаляет список; задачи остаются у владельцев (list_id = NULL)
func (r *ListRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM task_lists WHERE id = $1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

// AddShare добавляет участника; повторный вызов только обновляет роль
func (r *ListRepo) AddShare(ctx context.Context, listID, userID int64, role model.Role) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO list_shares (list_id, user_id, role) VALUES ($1, $2, $3)
		ON CONFLICT (list_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`, listID, userID, string(role))
	return mapError(err)
}

func (r *ListRepo) SetChainTx(ctx context.Context, id int64, tx string) error {
	_, err := r.pool.Exec(ctx, "UPDATE task_lists SET chain_tx = $2 WHERE id = $1", id, tx)
	return err
}

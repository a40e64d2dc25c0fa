package repo

import (
	"context"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
)

// UserRepository определяет интерфейс для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	Get(ctx context.Context, id int64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	SetVerified(ctx context.Context, id int64) error
}

// ListRepository определяет интерфейс для работы со списками и их участниками
type ListRepository interface {
	Create(ctx context.Context, l model.TaskList) (model.TaskList, error)
	Get(ctx context.Context, id int64) (model.TaskList, error)
	ListForUser(ctx context.Context, userID int64) ([]model.TaskList, error)
	Update(ctx context.Context, l model.TaskList) (model.TaskList, error)
	Delete(ctx context.Context, id int64) error
	AddShare(ctx context.Context, listID, userID int64, role model.Role) error
	SetChainTx(ctx context.Context, id int64, tx string) error
}

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id int64) (model.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Task, error)
	ListByList(ctx context.Context, listID int64) ([]model.Task, error)
	SetCompleted(ctx context.Context, id int64) (model.Task, error)
	SetChainTx(ctx context.Context, id int64, tx string) error
	SaveIdempotencyKey(ctx context.Context, userID int64, key string, resourceID int64) error
	GetIdempotencyKey(ctx context.Context, userID int64, key string) (int64, error)
	GetStats(ctx context.Context) (Stats, error)
}

type Stats struct {
	TotalUsers     int `json:"total_users"`
	TotalLists     int `json:"total_lists"`
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
}

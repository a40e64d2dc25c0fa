package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/access"
	"github.com/BuzzLyutic/habit-tracker/internal/model"
	"github.com/BuzzLyutic/habit-tracker/internal/repo"
)

const maxListNameLen = 255

type ListService struct {
	lists  repo.ListRepository
	users  repo.UserRepository
	tasks  *TaskService
	taskDB repo.TaskRepository
	anchor ListAnchor
	logger *zap.Logger

	anchoring sync.WaitGroup
}

// NewListService: anchor может быть nil, тогда списки не записываются в блокчейн
func NewListService(lists repo.ListRepository, users repo.UserRepository, taskDB repo.TaskRepository,
	tasks *TaskService, anchor ListAnchor, logger *zap.Logger) *ListService {
	return &ListService{
		lists:  lists,
		users:  users,
		tasks:  tasks,
		taskDB: taskDB,
		anchor: anchor,
		logger: logger,
	}
}

func (s *ListService) Create(ctx context.Context, u model.User, name, description string) (model.TaskList, error) {
	l := model.TaskList{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		OwnerID:     u.ID,
	}
	if err := validateList(l); err != nil {
		return l, err
	}

	l, err := s.lists.Create(ctx, l)
	if err != nil {
		return l, err
	}

	if s.anchor != nil {
		s.inBackground(ctx, func(ctx context.Context) {
			if tx := s.anchor.CreateList(ctx, l.Name, l.Description); tx != "" {
				if err := s.lists.SetChainTx(ctx, l.ID, tx); err != nil {
					s.logger.Warn("save list chain tx", zap.Int64("list_id", l.ID), zap.Error(err))
				}
			}
		})
	}
	return l, nil
}

// inBackground запускает запись в блокчейн вне запроса: ожидание майнинга дольше,
// чем таймаут записи HTTP-ответа. Хеш транзакции сохраняется в БД позже.
func (s *ListService) inBackground(ctx context.Context, fn func(ctx context.Context)) {
	s.anchoring.Add(1)
	go func() {
		defer s.anchoring.Done()
		fn(context.WithoutCancel(ctx))
	}()
}

// Wait blocks until every pending chain submission has finished.
func (s *ListService) Wait() {
	s.anchoring.Wait()
}

// Authorize loads the list and checks that u holds capability c on it.
func (s *ListService) Authorize(ctx context.Context, u model.User, listID int64, c access.Capability) (model.TaskList, error) {
	l, err := s.lists.Get(ctx, listID)
	if err != nil {
		return l, err
	}
	if err := access.Check(u, l, c); err != nil {
		return model.TaskList{}, err
	}
	return l, nil
}

func (s *ListService) Get(ctx context.Context, u model.User, id int64) (model.ListDetail, error) {
	l, err := s.Authorize(ctx, u, id, access.View)
	if err != nil {
		return model.ListDetail{}, err
	}
	tasks, err := s.taskDB.ListByList(ctx, id)
	if err != nil {
		return model.ListDetail{}, err
	}
	return model.ListDetail{List: l, Tasks: tasks}, nil
}

func (s *ListService) ListForUser(ctx context.Context, u model.User) ([]model.TaskList, error) {
	return s.lists.ListForUser(ctx, u.ID)
}

func (s *ListService) Update(ctx context.Context, u model.User, id int64, name, description string) (model.TaskList, error) {
	l, err := s.Authorize(ctx, u, id, access.Write)
	if err != nil {
		return l, err
	}
	l.Name = strings.TrimSpace(name)
	l.Description = strings.TrimSpace(description)
	if err := validateList(l); err != nil {
		return l, err
	}

	updated, err := s.lists.Update(ctx, l)
	if err != nil {
		return updated, err
	}
	updated.Shares = l.Shares
	return updated, nil
}

func (s *ListService) Delete(ctx context.Context, u model.User, id int64) error {
	if _, err := s.Authorize(ctx, u, id, access.Write); err != nil {
		return err
	}
	return s.lists.Delete(ctx, id)
}

// Share дает пользователю с указанным email доступ к списку. Повторный вызов обновляет роль.
func (s *ListService) Share(ctx context.Context, u model.User, id int64, email string, role model.Role) (model.Share, error) {
	l, err := s.Authorize(ctx, u, id, access.Share)
	if err != nil {
		return model.Share{}, err
	}

	if role == "" {
		role = model.RoleRead
	}
	if !role.Valid() {
		return model.Share{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	email, err = normalizeEmail(email)
	if err != nil {
		return model.Share{}, err
	}
	target, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return model.Share{}, err
	}
	if target.ID == l.OwnerID {
		return model.Share{}, fmt.Errorf("%w: owner already has access", ErrValidation)
	}

	if err := s.lists.AddShare(ctx, l.ID, target.ID, role); err != nil {
		return model.Share{}, err
	}
	return model.Share{ListID: l.ID, UserID: target.ID, Email: target.Email, Role: role}, nil
}

func (s *ListService) AddTask(ctx context.Context, u model.User, listID int64, title, description string) (model.Task, error) {
	l, err := s.Authorize(ctx, u, listID, access.AddTask)
	if err != nil {
		return model.Task{}, err
	}

	t, err := s.tasks.create(ctx, model.Task{
		Title:       title,
		Description: description,
		UserID:      u.ID,
		ListID:      &l.ID,
	})
	if err != nil {
		return t, err
	}

	if s.anchor != nil {
		s.inBackground(ctx, func(ctx context.Context) {
			if tx := s.anchor.AddTask(ctx, l.ID, t.Title, t.Description); tx != "" {
				if err := s.taskDB.SetChainTx(ctx, t.ID, tx); err != nil {
					s.logger.Warn("save task chain tx", zap.Int64("task_id", t.ID), zap.Error(err))
				}
			}
		})
	}
	return t, nil
}

func validateList(l model.TaskList) error {
	if l.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(l.Name) > maxListNameLen {
		return fmt.Errorf("%w: name must be at most %d characters", ErrValidation, maxListNameLen)
	}
	return nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/access"
	"github.com/BuzzLyutic/habit-tracker/internal/model"
	"github.com/BuzzLyutic/habit-tracker/internal/repo"
)

const maxTitleLen = 255

const syncSchemaJSON = `{
	"type": "object",
	"required": ["tasks"],
	"properties": {
		"tasks": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["title"],
				"properties": {
					"title": {"type": "string", "minLength": 1, "maxLength": 255},
					"description": {"type": ["string", "null"]},
					"completed": {"type": "boolean"}
				}
			}
		}
	}
}`

var syncSchema = jsonschema.MustCompileString("sync_tasks.schema.json", syncSchemaJSON)

type TaskService struct {
	repo     repo.TaskRepository
	payloads PayloadStore
	logger   *zap.Logger
}

// NewTaskService: payloads может быть nil, тогда задачи не публикуются в IPFS
func NewTaskService(repo repo.TaskRepository, payloads PayloadStore, logger *zap.Logger) *TaskService {
	return &TaskService{repo: repo, payloads: payloads, logger: logger}
}

func (s *TaskService) Create(ctx context.Context, u model.User, t model.Task, idempKey string) (model.Task, error) {
	if idempKey != "" { // Обеспечение идемпотентности - если ключ с ресурсом уже существует, мы не создаем его еще раз
		if existingID, err := s.repo.GetIdempotencyKey(ctx, u.ID, idempKey); err == nil {
			existing, err := s.repo.Get(ctx, existingID)
			if err != nil {
				return existing, err
			}
			if existing.UserID != u.ID {
				return model.Task{}, access.ErrForbidden
			}
			return existing, nil
		}
	}

	t.UserID = u.ID
	t.ListID = nil
	resource, err := s.create(ctx, t)
	if err != nil {
		return resource, err
	}

	if idempKey != "" {
		if err := s.repo.SaveIdempotencyKey(ctx, u.ID, idempKey, resource.ID); err != nil {
			s.logger.Warn("save idempotency key", zap.String("key", idempKey), zap.Error(err))
		}
	}
	return resource, nil
}

// create validates and stores t, queueing it for IPFS when a store is configured.
func (s *TaskService) create(ctx context.Context, t model.Task) (model.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	if err := s.validate(t); err != nil {
		return t, err
	}

	t.PinStatus = model.PinNone
	if s.payloads != nil {
		t.PinStatus = model.PinPending
	}
	return s.repo.Create(ctx, t)
}

func (s *TaskService) ListForUser(ctx context.Context, u model.User) ([]model.Task, error) {
	return s.repo.ListByUser(ctx, u.ID)
}

func (s *TaskService) Get(ctx context.Context, u model.User, id int64) (model.Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return t, err
	}
	if t.UserID != u.ID && !u.IsAdmin {
		return model.Task{}, access.ErrForbidden
	}
	return t, nil
}

// Complete отмечает задачу выполненной; повторный вызов не является ошибкой
func (s *TaskService) Complete(ctx context.Context, u model.User, id int64) (model.Task, error) {
	if _, err := s.Get(ctx, u, id); err != nil {
		return model.Task{}, err
	}
	return s.repo.SetCompleted(ctx, id)
}

// Payload returns the IPFS copy of the task, or nil if there is none.
func (s *TaskService) Payload(ctx context.Context, u model.User, id int64) (*model.TaskPayload, error) {
	t, err := s.Get(ctx, u, id)
	if err != nil {
		return nil, err
	}
	if s.payloads == nil || t.IPFSCID == "" {
		return nil, nil
	}
	return s.payloads.RetrieveTask(ctx, t.IPFSCID), nil
}

// Sync accepts a batch saved by an offline client. Tasks are only counted, not stored.
func (s *TaskService) Sync(ctx context.Context, body []byte) (int, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return 0, fmt.Errorf("%w: invalid json", ErrValidation)
	}
	if err := syncSchema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return 0, fmt.Errorf("%w: %s", ErrValidation, firstCause(ve).Message)
		}
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var batch model.SyncBatch
	if err := json.Unmarshal(body, &batch); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.logger.Info("offline tasks received", zap.Int("count", len(batch.Tasks)))
	return len(batch.Tasks), nil
}

func (s *TaskService) GetStats(ctx context.Context) (repo.Stats, error) {
	return s.repo.GetStats(ctx)
}

func (s *TaskService) validate(t model.Task) error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(t.Title) > maxTitleLen {
		return fmt.Errorf("%w: title must be at most %d characters", ErrValidation, maxTitleLen)
	}
	return nil
}

func firstCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

package service

import (
	"context"
	"errors"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ListAnchor records list activity on a blockchain. Implementations return
// the transaction hash, or "" when the call failed.
type ListAnchor interface {
	CreateList(ctx context.Context, name, description string) string
	AddTask(ctx context.Context, listID int64, title, description string) string
}

// PayloadStore keeps copies of task payloads outside the database (IPFS).
type PayloadStore interface {
	StoreTask(ctx context.Context, p model.TaskPayload) string
	RetrieveTask(ctx context.Context, cid string) *model.TaskPayload
}

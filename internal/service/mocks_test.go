package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
	"github.com/BuzzLyutic/habit-tracker/internal/repo"
)

// MockUserRepository - мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) Get(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) SetVerified(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockListRepository - мок репозитория списков
type MockListRepository struct {
	mock.Mock
}

func (m *MockListRepository) Create(ctx context.Context, l model.TaskList) (model.TaskList, error) {
	args := m.Called(ctx, l)
	return args.Get(0).(model.TaskList), args.Error(1)
}

func (m *MockListRepository) Get(ctx context.Context, id int64) (model.TaskList, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.TaskList), args.Error(1)
}

func (m *MockListRepository) ListForUser(ctx context.Context, userID int64) ([]model.TaskList, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.TaskList), args.Error(1)
}

func (m *MockListRepository) Update(ctx context.Context, l model.TaskList) (model.TaskList, error) {
	args := m.Called(ctx, l)
	return args.Get(0).(model.TaskList), args.Error(1)
}

func (m *MockListRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockListRepository) AddShare(ctx context.Context, listID, userID int64, role model.Role) error {
	args := m.Called(ctx, listID, userID, role)
	return args.Error(0)
}

func (m *MockListRepository) SetChainTx(ctx context.Context, id int64, tx string) error {
	args := m.Called(ctx, id, tx)
	return args.Error(0)
}

// MockTaskRepository - мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Get(ctx context.Context, id int64) (model.Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListByUser(ctx context.Context, userID int64) ([]model.Task, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListByList(ctx context.Context, listID int64) ([]model.Task, error) {
	args := m.Called(ctx, listID)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) SetCompleted(ctx context.Context, id int64) (model.Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) SetChainTx(ctx context.Context, id int64, tx string) error {
	args := m.Called(ctx, id, tx)
	return args.Error(0)
}

func (m *MockTaskRepository) SaveIdempotencyKey(ctx context.Context, userID int64, key string, resourceID int64) error {
	args := m.Called(ctx, userID, key, resourceID)
	return args.Error(0)
}

func (m *MockTaskRepository) GetIdempotencyKey(ctx context.Context, userID int64, key string) (int64, error) {
	args := m.Called(ctx, userID, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) GetStats(ctx context.Context) (repo.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(repo.Stats), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerification(ctx context.Context, to, link string) error {
	args := m.Called(ctx, to, link)
	return args.Error(0)
}

type MockAnchor struct {
	mock.Mock
}

func (m *MockAnchor) CreateList(ctx context.Context, name, description string) string {
	return m.Called(ctx, name, description).String(0)
}

func (m *MockAnchor) AddTask(ctx context.Context, listID int64, title, description string) string {
	return m.Called(ctx, listID, title, description).String(0)
}

type MockPayloadStore struct {
	mock.Mock
}

func (m *MockPayloadStore) StoreTask(ctx context.Context, p model.TaskPayload) string {
	return m.Called(ctx, p).String(0)
}

func (m *MockPayloadStore) RetrieveTask(ctx context.Context, cid string) *model.TaskPayload {
	args := m.Called(ctx, cid)
	p, _ := args.Get(0).(*model.TaskPayload)
	return p
}

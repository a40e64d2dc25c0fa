// Package worker публикует задачи в IPFS в фоне
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
)

// Publisher сохраняет содержимое задачи и возвращает CID, "" при ошибке
type Publisher interface {
	StoreTask(ctx context.Context, p model.TaskPayload) string
}

type Pool struct {
	pool      *pgxpool.Pool
	publisher Publisher
	logger    *zap.Logger
	count     int
	interval  time.Duration
	wg        sync.WaitGroup
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewPool(pool *pgxpool.Pool, publisher Publisher, logger *zap.Logger, count int, interval time.Duration) *Pool {
	if count <= 0 {
		count = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Pool{
		pool:      pool,
		publisher: publisher,
		logger:    logger,
		count:     count,
		interval:  interval,
		stop:      make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting pin workers", zap.Int("workers", p.count), zap.Duration("interval", p.interval))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) Stop() {
	p.logger.Info("Stopping pin workers...")
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
	p.logger.Info("Pin workers stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Разбираем очередь до конца, потом ждем следующего тика
			for {
				err := p.processNext(ctx, id)
				if errors.Is(err, pgx.ErrNoRows) {
					break
				}
				if err != nil {
					p.logger.Error("pin worker error", zap.Int("worker", id), zap.Error(err))
					break
				}
				select {
				case <-p.stop:
					return
				default:
				}
			}
		}
	}
}

func (p *Pool) processNext(ctx context.Context, workerID int) error {
	// Забрать задачу
	task, err := p.claimTask(ctx)
	if err != nil {
		return err
	}

	cid := p.publisher.StoreTask(ctx, task.Payload())
	if ctx.Err() != nil {
		// При отмене вернуть задачу в pending
		p.release(task.ID)
		return ctx.Err()
	}

	if cid == "" {
		p.logger.Warn("Task not pinned",
			zap.Int("worker", workerID),
			zap.Int64("task_id", task.ID),
		)
		return p.finish(ctx, task.ID, "", model.PinFailed)
	}

	p.logger.Info("Task pinned",
		zap.Int("worker", workerID),
		zap.Int64("task_id", task.ID),
		zap.String("cid", cid),
	)
	return p.finish(ctx, task.ID, cid, model.PinPinned)
}

func (p *Pool) claimTask(ctx context.Context) (model.Task, error) {
	var t model.Task

	err := p.pool.QueryRow(ctx, `
		WITH claimed AS (
			SELECT id
			FROM tasks
			WHERE pin_status = 'pending'
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE tasks
		SET pin_status = 'processing'
		FROM claimed
		WHERE tasks.id = claimed.id
		RETURNING tasks.id, tasks.title, tasks.description, tasks.completed,
		          tasks.user_id, tasks.pin_status, tasks.created_at, tasks.updated_at
	`).Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.UserID, &t.PinStatus, &t.CreatedAt, &t.UpdatedAt)

	return t, err
}

func (p *Pool) finish(ctx context.Context, id int64, cid, status string) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE tasks SET ipfs_cid = $2, pin_status = $3 WHERE id = $1
	`, id, cid, status)
	return err
}

func (p *Pool) release(id int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := p.pool.Exec(ctx, "UPDATE tasks SET pin_status = 'pending' WHERE id = $1", id); err != nil {
		p.logger.Error("release task", zap.Int64("task_id", id), zap.Error(err))
	}
}

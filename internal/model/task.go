package model

import "time"

const (
	PinNone       = "none"
	PinPending    = "pending"
	PinProcessing = "processing"
	PinPinned     = "pinned"
	PinFailed     = "failed"
)

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	UserID      int64     `json:"user_id"`
	ListID      *int64    `json:"list_id,omitempty"`
	IPFSCID     string    `json:"ipfs_cid,omitempty"`
	PinStatus   string    `json:"pin_status"`
	ChainTx     string    `json:"chain_tx,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Payload returns the part of the task that is published to IPFS.
func (t Task) Payload() TaskPayload {
	return TaskPayload{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
	}
}

type TaskPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// SyncBatch is what the offline client posts once it is back online.
type SyncBatch struct {
	Tasks []TaskPayload `json:"tasks"`
}

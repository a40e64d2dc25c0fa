package model

import "time"

// Role: роль пользователя в общем списке. Хранится, но пока не влияет на проверку доступа.
type Role string

const (
	RoleRead  Role = "read"
	RoleWrite Role = "write"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleRead, RoleWrite, RoleAdmin:
		return true
	}
	return false
}

type TaskList struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     int64     `json:"owner_id"`
	ChainTx     string    `json:"chain_tx,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Shares      []Share   `json:"shares,omitempty"`
}

// SharedWith reports whether userID is among the list's shared users.
func (l TaskList) SharedWith(userID int64) bool {
	for _, s := range l.Shares {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

type Share struct {
	ListID    int64     `json:"list_id"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ListDetail is a list together with the tasks attached to it.
type ListDetail struct {
	List  TaskList `json:"list"`
	Tasks []Task   `json:"tasks"`
}

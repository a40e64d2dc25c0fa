// Package access decides what a user may do with a task list.
//
// All handlers go through Check so that the rules live in one place:
//
//	View     owner, shared user (any role) or admin
//	AddTask  same as View
//	Write    owner or admin (rename, delete)
//	Share    owner only
//
// The share role is stored but not consulted yet.
package access

import (
	"errors"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
)

var ErrForbidden = errors.New("forbidden")

type Capability int

const (
	View Capability = iota
	AddTask
	Write
	Share
)

func (c Capability) String() string {
	switch c {
	case View:
		return "view"
	case AddTask:
		return "add_task"
	case Write:
		return "write"
	case Share:
		return "share"
	}
	return "unknown"
}

// Allowed reports whether u holds capability c on list l.
func Allowed(u model.User, l model.TaskList, c Capability) bool {
	owner := u.ID == l.OwnerID
	switch c {
	case View, AddTask:
		return owner || u.IsAdmin || l.SharedWith(u.ID)
	case Write:
		return owner || u.IsAdmin
	case Share:
		return owner
	}
	return false
}

// Check is Allowed returning ErrForbidden on refusal.
func Check(u model.User, l model.TaskList, c Capability) error {
	if !Allowed(u, l, c) {
		return ErrForbidden
	}
	return nil
}

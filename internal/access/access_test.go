package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
)

func TestAllowed(t *testing.T) {
	list := model.TaskList{
		ID:      1,
		OwnerID: 10,
		Shares: []model.Share{
			{ListID: 1, UserID: 20, Role: model.RoleRead},
			{ListID: 1, UserID: 21, Role: model.RoleAdmin},
		},
	}

	owner := model.User{ID: 10}
	reader := model.User{ID: 20}
	sharedAdmin := model.User{ID: 21}
	stranger := model.User{ID: 30}
	admin := model.User{ID: 40, IsAdmin: true}

	tests := []struct {
		name string
		user model.User
		cap  Capability
		want bool
	}{
		{"owner views", owner, View, true},
		{"owner writes", owner, Write, true},
		{"owner shares", owner, Share, true},
		{"shared user views", reader, View, true},
		{"shared user adds task", reader, AddTask, true},
		{"shared user cannot write", reader, Write, false},
		{"shared user cannot share", reader, Share, false},
		{"share role is not enforced", sharedAdmin, Write, false},
		{"stranger cannot view", stranger, View, false},
		{"stranger cannot add task", stranger, AddTask, false},
		{"admin views", admin, View, true},
		{"admin writes", admin, Write, true},
		{"admin cannot share someone else's list", admin, Share, false},
		{"unknown capability", owner, Capability(99), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.user, list, tt.cap))
		})
	}
}

func TestCheck(t *testing.T) {
	list := model.TaskList{ID: 1, OwnerID: 10}

	assert.NoError(t, Check(model.User{ID: 10}, list, Write))
	assert.ErrorIs(t, Check(model.User{ID: 11}, list, View), ErrForbidden)
}

package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func newActor(role model.Role) Actor {
	return Actor{ID: uuid.New(), Role: role}
}

func TestCanTeach(t *testing.T) {
	trainer := newActor(model.RoleTrainer)
	other := newActor(model.RoleTrainer)
	course := &model.Course{ID: uuid.New(), TrainerID: &trainer.ID}

	assert.NoError(t, CanTeach(newActor(model.RoleAdmin), course))
	assert.NoError(t, CanTeach(trainer, course))
	assert.ErrorIs(t, CanTeach(other, course), ErrNotCourseTrainer)
	assert.ErrorIs(t, CanTeach(newActor(model.RoleTrainee), course), ErrNotCourseTrainer)
	assert.ErrorIs(t, CanTeach(trainer, &model.Course{ID: uuid.New()}), ErrNotCourseTrainer)
}

func TestCanViewCourseContent(t *testing.T) {
	trainer := newActor(model.RoleTrainer)
	course := &model.Course{ID: uuid.New(), TrainerID: &trainer.ID}
	trainee := newActor(model.RoleTrainee)

	assert.NoError(t, CanViewCourseContent(trainer, course, false))
	assert.NoError(t, CanViewCourseContent(trainee, course, true))
	assert.ErrorIs(t, CanViewCourseContent(trainee, course, false), ErrForbidden)
	assert.ErrorIs(t, CanViewCourseContent(newActor(model.RoleTrainer), course, true), ErrForbidden)
}

func TestCheckRoleChange(t *testing.T) {
	admin := newActor(model.RoleAdmin)
	super := Actor{ID: uuid.New(), Role: model.RoleAdmin, SuperAdmin: true}
	yes := true

	pending := &model.User{ID: uuid.New(), Role: model.RolePending}
	otherAdmin := &model.User{ID: uuid.New(), Role: model.RoleAdmin}

	tests := []struct {
		name   string
		actor  Actor
		target *model.User
		role   model.Role
		flag   *bool
		want   error
	}{
		{"admin approves pending", admin, pending, model.RoleTrainee, nil, nil},
		{"admin promotes to trainer", admin, pending, model.RoleTrainer, nil, nil},
		{"self change", admin, &model.User{ID: admin.ID, Role: model.RoleAdmin}, model.RoleTrainer, nil, ErrSelfAction},
		{"non admin", newActor(model.RoleTrainer), pending, model.RoleTrainee, nil, ErrForbidden},
		{"admin cannot promote to admin", admin, pending, model.RoleAdmin, nil, ErrRoleChangeDenied},
		{"admin cannot demote admin", admin, otherAdmin, model.RoleTrainer, nil, ErrRoleChangeDenied},
		{"super promotes to admin", super, pending, model.RoleAdmin, nil, nil},
		{"super grants flag", super, otherAdmin, model.RoleAdmin, &yes, nil},
		{"flag requires admin role", super, pending, model.RoleTrainer, &yes, ErrRoleChangeDenied},
		{"invalid role", super, pending, model.Role("owner"), nil, ErrRoleChangeDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRoleChange(tt.actor, tt.target, tt.role, tt.flag)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCheckUserDeleteAndCreate(t *testing.T) {
	admin := newActor(model.RoleAdmin)
	super := Actor{ID: uuid.New(), Role: model.RoleAdmin, SuperAdmin: true}

	assert.ErrorIs(t, CheckUserDelete(admin, &model.User{ID: admin.ID}), ErrSelfAction)
	assert.ErrorIs(t, CheckUserDelete(admin, &model.User{ID: uuid.New(), Role: model.RoleAdmin}), ErrRoleChangeDenied)
	assert.NoError(t, CheckUserDelete(super, &model.User{ID: uuid.New(), Role: model.RoleAdmin}))
	assert.NoError(t, CheckUserDelete(admin, &model.User{ID: uuid.New(), Role: model.RoleTrainee}))

	assert.NoError(t, CheckUserCreate(admin, model.RoleTrainer, false))
	assert.ErrorIs(t, CheckUserCreate(admin, model.RoleAdmin, false), ErrRoleChangeDenied)
	assert.NoError(t, CheckUserCreate(super, model.RoleAdmin, true))
	assert.ErrorIs(t, CheckUserCreate(super, model.RoleTrainee, true), ErrRoleChangeDenied)
	assert.ErrorIs(t, CheckUserCreate(newActor(model.RoleTrainer), model.RoleTrainee, false), ErrForbidden)
}

func TestThreadAndMessageAccess(t *testing.T) {
	trainee := newActor(model.RoleTrainee)
	trainer := newActor(model.RoleTrainer)
	thread := &model.FeedbackThread{ID: uuid.New(), TraineeID: trainee.ID, TrainerID: trainer.ID}

	assert.NoError(t, CheckThreadAccess(trainee, thread))
	assert.NoError(t, CheckThreadAccess(trainer, thread))
	assert.NoError(t, CheckThreadAccess(newActor(model.RoleAdmin), thread))
	assert.ErrorIs(t, CheckThreadAccess(newActor(model.RoleTrainee), thread), ErrNotParticipant)

	msg := &model.FeedbackMessage{ID: uuid.New(), ThreadID: thread.ID, SenderID: trainee.ID, Body: "hi"}
	assert.NoError(t, CheckMessageEdit(trainee, msg))
	assert.ErrorIs(t, CheckMessageEdit(trainer, msg), ErrNotMessageSender)
	assert.ErrorIs(t, CheckMessageEdit(newActor(model.RoleAdmin), msg), ErrNotMessageSender)
	assert.NoError(t, CheckMessageDelete(newActor(model.RoleAdmin), msg))
	assert.ErrorIs(t, CheckMessageDelete(trainer, msg), ErrNotMessageSender)

	deleted := *msg
	now := thread.LastMessageAt
	deleted.DeletedAt = &now
	assert.ErrorIs(t, CheckMessageEdit(trainee, &deleted), ErrMessageDeleted)
	assert.ErrorIs(t, CheckMessageDelete(trainee, &deleted), ErrMessageDeleted)
}

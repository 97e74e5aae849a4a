package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLetterFor(t *testing.T) {
	cases := map[float64]string{
		100:   "A",
		90:    "A",
		89.99: "B",
		80:    "B",
		75:    "C",
		60:    "D",
		59.5:  "F",
		0:     "F",
	}
	for score, want := range cases {
		assert.Equal(t, want, LetterFor(score), "score %v", score)
	}
}

func TestRoundScore(t *testing.T) {
	assert.Equal(t, 90.0, RoundScore(89.996))
	assert.Equal(t, "A", LetterFor(RoundScore(89.996)))
	assert.Equal(t, 89.99, RoundScore(89.994))
	assert.Equal(t, "B", LetterFor(RoundScore(89.994)))
	assert.Equal(t, 72.5, RoundScore(72.5))
	assert.Equal(t, 0.0, RoundScore(0.004))
}

func TestPermissionsFor(t *testing.T) {
	assert.Len(t, PermissionsFor(RoleAdmin), len(AllPermissions))
	assert.Contains(t, PermissionsFor(RoleTrainer), string(PermissionCoursesTeach))
	assert.NotContains(t, PermissionsFor(RoleTrainer), string(PermissionCoursesWrite))
	assert.Contains(t, PermissionsFor(RoleTrainee), string(PermissionCoursesEnroll))
	assert.Empty(t, PermissionsFor(RolePending))
	assert.Empty(t, PermissionsFor(Role("ghost")))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleTrainee.Valid())
	assert.False(t, Role("owner").Valid())
}

func TestThreadParticipants(t *testing.T) {
	trainee, trainer, other := uuid.New(), uuid.New(), uuid.New()
	th := &FeedbackThread{TraineeID: trainee, TrainerID: trainer}

	assert.True(t, th.HasParticipant(trainee))
	assert.True(t, th.HasParticipant(trainer))
	assert.False(t, th.HasParticipant(other))
	assert.Equal(t, trainer, th.Counterpart(trainee))
	assert.Equal(t, trainee, th.Counterpart(trainer))
}

func TestCourseStatusOpen(t *testing.T) {
	assert.True(t, CourseStatusUpcoming.Open())
	assert.True(t, CourseStatusOngoing.Open())
	assert.False(t, CourseStatusCompleted.Open())
	assert.False(t, CourseStatusUnassigned.Open())
	assert.False(t, CourseStatusCancelled.Open())
}

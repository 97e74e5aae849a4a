package status

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCourse(t *testing.T) {
	trainer := uuid.New()
	start := date(2026, time.March, 10)
	end := date(2026, time.March, 20)

	tests := []struct {
		name    string
		current model.CourseStatus
		trainer *uuid.UUID
		now     time.Time
		want    model.CourseStatus
	}{
		{"no trainer", model.CourseStatusUpcoming, nil, date(2026, time.March, 1), model.CourseStatusUnassigned},
		{"nil uuid trainer", model.CourseStatusUpcoming, &uuid.Nil, date(2026, time.March, 1), model.CourseStatusUnassigned},
		{"before start", model.CourseStatusUnassigned, &trainer, date(2026, time.March, 9), model.CourseStatusUpcoming},
		{"start day", model.CourseStatusUpcoming, &trainer, start.Add(time.Minute), model.CourseStatusOngoing},
		{"last day evening", model.CourseStatusOngoing, &trainer, end.Add(23 * time.Hour), model.CourseStatusOngoing},
		{"day after end", model.CourseStatusOngoing, &trainer, date(2026, time.March, 21), model.CourseStatusCompleted},
		{"cancelled is sticky", model.CourseStatusCancelled, &trainer, start.Add(time.Hour), model.CourseStatusCancelled},
		{"cancelled without trainer", model.CourseStatusCancelled, nil, start, model.CourseStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Course(CourseInput{
				Current:   tt.current,
				TrainerID: tt.trainer,
				StartDate: start,
				EndDate:   end,
			}, tt.now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCourseIgnoresClientOffset(t *testing.T) {
	trainer := uuid.New()
	jakarta := time.FixedZone("WIB", 7*60*60)
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

	fromClient := CourseInput{
		TrainerID: &trainer,
		StartDate: time.Date(2026, time.October, 20, 0, 0, 0, 0, jakarta),
		EndDate:   time.Date(2026, time.October, 25, 0, 0, 0, 0, jakarta),
	}
	fromDB := fromClient
	fromDB.StartDate = fromClient.StartDate.UTC()
	fromDB.EndDate = fromClient.EndDate.UTC()

	assert.Equal(t, model.CourseStatusOngoing, Course(fromClient, now))
	assert.Equal(t, Course(fromClient, now), Course(fromDB, now))
	assert.Equal(t, Course(fromClient, now.In(jakarta)), Course(fromDB, now))

	fromClient.Location = jakarta
	fromDB.Location = jakarta
	assert.Equal(t, model.CourseStatusUpcoming, Course(fromClient, now))
	assert.Equal(t, model.CourseStatusUpcoming, Course(fromDB, now))
	assert.Equal(t, model.CourseStatusOngoing, Course(fromDB, time.Date(2026, time.October, 19, 17, 0, 0, 0, time.UTC)))
}

func TestWithinCourse(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	start := date(2026, time.March, 10)
	end := date(2026, time.March, 20)

	assert.True(t, WithinCourse(nil, start, end, start, end.Add(23*time.Hour)))
	assert.False(t, WithinCourse(nil, start, end, start.Add(-time.Minute), end))
	assert.False(t, WithinCourse(nil, start, end, start, end.Add(25*time.Hour)))

	// 2026-03-10 00:00 UTC is 07:00 on the 10th in WIB; the WIB day starts 7h earlier.
	early := start.Add(-3 * time.Hour)
	assert.False(t, WithinCourse(nil, start, end, early, end))
	assert.True(t, WithinCourse(jakarta, start, end, early, end))
	assert.True(t, WithinCourse(jakarta, start.In(jakarta), end.In(jakarta), early, end))
}

func TestEnrollment(t *testing.T) {
	assert.Equal(t, model.EnrollmentStatusDropped,
		Enrollment(model.CourseStatusOngoing, model.EnrollmentStatusDropped))
	assert.Equal(t, model.EnrollmentStatusCancelled,
		Enrollment(model.CourseStatusCancelled, model.EnrollmentStatusActive))
	assert.Equal(t, model.EnrollmentStatusCompleted,
		Enrollment(model.CourseStatusCompleted, model.EnrollmentStatusActive))
	assert.Equal(t, model.EnrollmentStatusActive,
		Enrollment(model.CourseStatusOngoing, model.EnrollmentStatusPending))
	assert.Equal(t, model.EnrollmentStatusPending,
		Enrollment(model.CourseStatusUpcoming, model.EnrollmentStatusActive))
	assert.Equal(t, model.EnrollmentStatusPending,
		Enrollment(model.CourseStatusUnassigned, model.EnrollmentStatusPending))
}

func TestTraining(t *testing.T) {
	assert.Equal(t, model.TrainingStatusNone, Training(nil))
	assert.Equal(t, model.TrainingStatusNone, Training([]model.EnrollmentStatus{model.EnrollmentStatusDropped}))
	assert.Equal(t, model.TrainingStatusCompleted, Training([]model.EnrollmentStatus{
		model.EnrollmentStatusCompleted, model.EnrollmentStatusDropped,
	}))
	assert.Equal(t, model.TrainingStatusEnrolled, Training([]model.EnrollmentStatus{
		model.EnrollmentStatusCompleted, model.EnrollmentStatusPending,
	}))
	assert.Equal(t, model.TrainingStatusInTraining, Training([]model.EnrollmentStatus{
		model.EnrollmentStatusPending, model.EnrollmentStatusActive, model.EnrollmentStatusCompleted,
	}))
}

func TestReconcile(t *testing.T) {
	trainer := uuid.New()
	userA, userB := uuid.New(), uuid.New()
	rows := []EnrollmentRow{
		{ID: uuid.New(), UserID: userA, Status: model.EnrollmentStatusPending},
		{ID: uuid.New(), UserID: userB, Status: model.EnrollmentStatusDropped},
		{ID: uuid.New(), UserID: userB, Status: model.EnrollmentStatusActive},
	}

	plan := Reconcile(CourseInput{
		Current:   model.CourseStatusUpcoming,
		TrainerID: &trainer,
		StartDate: date(2026, time.May, 1),
		EndDate:   date(2026, time.May, 30),
	}, rows, date(2026, time.May, 2))

	assert.True(t, plan.CourseChanged())
	assert.Equal(t, model.CourseStatusOngoing, plan.CourseTo)
	require.Len(t, plan.Enrollments, 1)
	assert.Equal(t, rows[0].ID, plan.Enrollments[0].EnrollmentID)
	assert.Equal(t, model.EnrollmentStatusActive, plan.Enrollments[0].To)
	assert.Equal(t, []uuid.UUID{userA}, plan.AffectedUsers())
}

func TestReconcileNoop(t *testing.T) {
	trainer := uuid.New()
	plan := Reconcile(CourseInput{
		Current:   model.CourseStatusOngoing,
		TrainerID: &trainer,
		StartDate: date(2026, time.May, 1),
		EndDate:   date(2026, time.May, 30),
	}, []EnrollmentRow{
		{ID: uuid.New(), UserID: uuid.New(), Status: model.EnrollmentStatusActive},
	}, date(2026, time.May, 15))

	assert.True(t, plan.Empty())
	assert.Empty(t, plan.AffectedUsers())
}

func TestReconcileUnassignRevertsToPending(t *testing.T) {
	user := uuid.New()
	plan := Reconcile(CourseInput{
		Current:   model.CourseStatusOngoing,
		StartDate: date(2026, time.May, 1),
		EndDate:   date(2026, time.May, 30),
	}, []EnrollmentRow{
		{ID: uuid.New(), UserID: user, Status: model.EnrollmentStatusActive},
	}, date(2026, time.May, 15))

	assert.Equal(t, model.CourseStatusUnassigned, plan.CourseTo)
	require.Len(t, plan.Enrollments, 1)
	assert.Equal(t, model.EnrollmentStatusPending, plan.Enrollments[0].To)
}

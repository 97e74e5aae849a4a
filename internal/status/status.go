// Package status derives course, enrollment and trainee training states.
//
// All functions are pure; the reconciler in the service layer applies their
// results inside a transaction holding the course row lock. Course dates are
// whole calendar days in one configured location, whatever offset the stored
// timestamps carry.
package status

import (
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/trainhub-backend/internal/model"
)

// CourseInput is the subset of a course that determines its status.
type CourseInput struct {
	Current   model.CourseStatus
	TrainerID *uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	// Location is the calendar the day bounds are taken in. Nil means UTC.
	Location *time.Location
}

// Course computes the status a course should have at now.
// The end date is inclusive through the end of that day.
func Course(c CourseInput, now time.Time) model.CourseStatus {
	if c.Current == model.CourseStatusCancelled {
		return model.CourseStatusCancelled
	}
	if c.TrainerID == nil || *c.TrainerID == uuid.Nil {
		return model.CourseStatusUnassigned
	}
	if now.Before(startOfDay(c.StartDate, c.Location)) {
		return model.CourseStatusUpcoming
	}
	if now.Before(endOfDay(c.EndDate, c.Location)) {
		return model.CourseStatusOngoing
	}
	return model.CourseStatusCompleted
}

// Enrollment computes the status an enrollment should have given its course status.
// Dropped enrollments are never revived by reconciliation.
func Enrollment(course model.CourseStatus, current model.EnrollmentStatus) model.EnrollmentStatus {
	if current == model.EnrollmentStatusDropped {
		return model.EnrollmentStatusDropped
	}
	switch course {
	case model.CourseStatusCancelled:
		return model.EnrollmentStatusCancelled
	case model.CourseStatusCompleted:
		return model.EnrollmentStatusCompleted
	case model.CourseStatusOngoing:
		return model.EnrollmentStatusActive
	default:
		return model.EnrollmentStatusPending
	}
}

// Training summarises a trainee's enrollment statuses.
func Training(enrollments []model.EnrollmentStatus) model.TrainingStatus {
	var pending, completed bool
	for _, s := range enrollments {
		switch s {
		case model.EnrollmentStatusActive:
			return model.TrainingStatusInTraining
		case model.EnrollmentStatusPending:
			pending = true
		case model.EnrollmentStatusCompleted:
			completed = true
		}
	}
	switch {
	case pending:
		return model.TrainingStatusEnrolled
	case completed:
		return model.TrainingStatusCompleted
	default:
		return model.TrainingStatusNone
	}
}

// EnrollmentChange describes one enrollment whose stored status is stale.
type EnrollmentChange struct {
	EnrollmentID uuid.UUID
	UserID       uuid.UUID
	From         model.EnrollmentStatus
	To           model.EnrollmentStatus
}

// EnrollmentRow is the stored state of an enrollment as seen by the reconciler.
type EnrollmentRow struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Status model.EnrollmentStatus
}

// Plan is the set of writes needed to bring a course and its enrollments up to date.
type Plan struct {
	CourseFrom  model.CourseStatus
	CourseTo    model.CourseStatus
	Enrollments []EnrollmentChange
}

// CourseChanged reports whether the course row needs an update.
func (p Plan) CourseChanged() bool {
	return p.CourseFrom != p.CourseTo
}

// Empty reports whether the plan has no writes.
func (p Plan) Empty() bool {
	return !p.CourseChanged() && len(p.Enrollments) == 0
}

// AffectedUsers returns the distinct users whose enrollments change.
func (p Plan) AffectedUsers() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(p.Enrollments))
	users := make([]uuid.UUID, 0, len(p.Enrollments))
	for _, e := range p.Enrollments {
		if _, ok := seen[e.UserID]; ok {
			continue
		}
		seen[e.UserID] = struct{}{}
		users = append(users, e.UserID)
	}
	return users
}

// Reconcile plans the writes for one course.
func Reconcile(c CourseInput, enrollments []EnrollmentRow, now time.Time) Plan {
	target := Course(c, now)
	plan := Plan{CourseFrom: c.Current, CourseTo: target}
	for _, e := range enrollments {
		want := Enrollment(target, e.Status)
		if want != e.Status {
			plan.Enrollments = append(plan.Enrollments, EnrollmentChange{
				EnrollmentID: e.ID,
				UserID:       e.UserID,
				From:         e.Status,
				To:           want,
			})
		}
	}
	return plan
}

// WithinCourse reports whether [start, end] lies inside the course dates,
// using the same whole-day bounds in loc as Course.
func WithinCourse(loc *time.Location, courseStart, courseEnd, start, end time.Time) bool {
	return !start.Before(startOfDay(courseStart, loc)) && !end.After(endOfDay(courseEnd, loc))
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	return startOfDay(t, loc).AddDate(0, 0, 1)
}

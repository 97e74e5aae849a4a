package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/trainhub-backend/internal/model"
)

// ErrCourseFull is returned when an enrollment would exceed course capacity.
var ErrCourseFull = errors.New("course is full")

// EnrollmentRepository handles enrollment data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

const enrollmentSelect = `SELECT e.id, e.course_id, e.user_id, u.name, u.email, e.course_title, e.trainer_name,
	e.status, e.enrolled_at, e.updated_at,
	g.id, g.score, g.letter, g.remarks, g.graded_by, g.graded_at, g.updated_at
	FROM enrollments e
	JOIN users u ON u.id = e.user_id
	LEFT JOIN grades g ON g.enrollment_id = e.id`

func scanEnrollment(row pgx.Row) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	var (
		gradeID  *uuid.UUID
		score    *float64
		letter   *string
		remarks  *string
		gradedBy *uuid.UUID
		gradedAt *time.Time
		gradeUpd *time.Time
	)
	err := row.Scan(&e.ID, &e.CourseID, &e.UserID, &e.UserName, &e.UserEmail, &e.CourseTitle, &e.TrainerName,
		&e.Status, &e.EnrolledAt, &e.UpdatedAt,
		&gradeID, &score, &letter, &remarks, &gradedBy, &gradedAt, &gradeUpd)
	if err != nil {
		return nil, translate(err)
	}
	if gradeID != nil {
		e.Grade = &model.Grade{
			ID:           *gradeID,
			EnrollmentID: e.ID,
			CourseID:     e.CourseID,
			UserID:       e.UserID,
			Score:        *score,
			Letter:       *letter,
			Remarks:      *remarks,
			GradedBy:     gradedBy,
			GradedAt:     *gradedAt,
			UpdatedAt:    *gradeUpd,
		}
	}
	return e, nil
}

func collectEnrollments(rows pgx.Rows) ([]model.Enrollment, error) {
	defer rows.Close()
	list := []model.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// GetByID retrieves an enrollment with its grade, if any.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	return scanEnrollment(r.pool.QueryRow(ctx, enrollmentSelect+` WHERE e.id = $1`, id))
}

// GetByCourseAndUser retrieves the enrollment of userID in courseID.
func (r *EnrollmentRepository) GetByCourseAndUser(ctx context.Context, courseID, userID uuid.UUID) (*model.Enrollment, error) {
	return scanEnrollment(r.pool.QueryRow(ctx,
		enrollmentSelect+` WHERE e.course_id = $1 AND e.user_id = $2`, courseID, userID))
}

// ListByUser retrieves a trainee's enrollments, most recent first.
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx, enrollmentSelect+` WHERE e.user_id = $1 ORDER BY e.enrolled_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectEnrollments(rows)
}

// ListByCourse retrieves a course roster ordered by trainee name.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx, enrollmentSelect+` WHERE e.course_id = $1 ORDER BY u.name`, courseID)
	if err != nil {
		return nil, err
	}
	return collectEnrollments(rows)
}

// ActiveUserIDs returns the trainees with a non-dropped enrollment in courseID.
func (r *EnrollmentRepository) ActiveUserIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM enrollments WHERE course_id = $1 AND status IN ('pending', 'active')`, courseID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

// IsTrainerOf reports whether trainerID teaches a course the trainee is enrolled in.
func (r *EnrollmentRepository) IsTrainerOf(ctx context.Context, trainerID, traineeID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM enrollments e JOIN courses c ON c.id = e.course_id
			WHERE c.trainer_id = $1 AND e.user_id = $2 AND e.status <> 'dropped'
		)`, trainerID, traineeID,
	).Scan(&ok)
	return ok, err
}

// Enroll inserts an enrollment, or reactivates a dropped one, enforcing capacity.
// The course row is locked so concurrent enrollments cannot overshoot capacity.
func (r *EnrollmentRepository) Enroll(ctx context.Context, e *model.Enrollment, capacity int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT 1 FROM courses WHERE id = $1 FOR UPDATE`, e.CourseID); err != nil {
		return translate(err)
	}

	// An existing enrollment is a conflict even when the course is full.
	var current model.EnrollmentStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM enrollments WHERE course_id = $1 AND user_id = $2`, e.CourseID, e.UserID,
	).Scan(&current)
	switch {
	case err == nil && current != model.EnrollmentStatusDropped:
		return ErrDuplicate
	case err != nil && !errors.Is(err, pgx.ErrNoRows):
		return err
	}

	if capacity > 0 {
		var taken int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status NOT IN ('dropped', 'cancelled')`,
			e.CourseID,
		).Scan(&taken); err != nil {
			return err
		}
		if taken >= capacity {
			return ErrCourseFull
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO enrollments (course_id, user_id, course_title, trainer_name, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (course_id, user_id) DO UPDATE
		 SET status = EXCLUDED.status, course_title = EXCLUDED.course_title,
		     trainer_name = EXCLUDED.trainer_name, enrolled_at = NOW(), updated_at = NOW()
		 WHERE enrollments.status = 'dropped'
		 RETURNING id, enrolled_at, updated_at`,
		e.CourseID, e.UserID, e.CourseTitle, e.TrainerName, e.Status,
	).Scan(&e.ID, &e.EnrolledAt, &e.UpdatedAt)
	if err != nil {
		// The conflict clause matched a non-dropped row: the trainee is already enrolled.
		if errors.Is(translate(err), ErrNotFound) {
			return ErrDuplicate
		}
		return translate(err)
	}

	return tx.Commit(ctx)
}

// SetStatus updates an enrollment's status.
func (r *EnrollmentRepository) SetStatus(ctx context.Context, id uuid.UUID, s model.EnrollmentStatus) error {
	return requireAffected(r.pool.Exec(ctx,
		`UPDATE enrollments SET status = $1, updated_at = NOW() WHERE id = $2`, s, id))
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM enrollments WHERE id = $1`, id))
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/status"
)

// StatusRepository applies status reconciliation plans.
// Each call holds the course row lock for the duration of its transaction,
// so concurrent reconciliations of the same course serialize.
type StatusRepository struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewStatusRepository creates a new StatusRepository. Course dates are read
// as calendar days in loc.
func NewStatusRepository(pool *pgxpool.Pool, loc *time.Location) *StatusRepository {
	return &StatusRepository{pool: pool, loc: loc}
}

// ReconcileCourse recomputes and persists the status of one course, its
// enrollments and the training status of affected trainees.
func (r *StatusRepository) ReconcileCourse(ctx context.Context, courseID uuid.UUID, now time.Time) (status.Plan, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return status.Plan{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	in := status.CourseInput{Location: r.loc}
	err = tx.QueryRow(ctx,
		`SELECT status, trainer_id, start_date, end_date FROM courses WHERE id = $1 FOR UPDATE`, courseID,
	).Scan(&in.Current, &in.TrainerID, &in.StartDate, &in.EndDate)
	if err != nil {
		return status.Plan{}, translate(err)
	}

	rows, err := tx.Query(ctx,
		`SELECT id, user_id, status FROM enrollments WHERE course_id = $1 FOR UPDATE`, courseID)
	if err != nil {
		return status.Plan{}, err
	}
	enrollments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (status.EnrollmentRow, error) {
		var e status.EnrollmentRow
		err := row.Scan(&e.ID, &e.UserID, &e.Status)
		return e, err
	})
	if err != nil {
		return status.Plan{}, err
	}

	plan := status.Reconcile(in, enrollments, now)
	if plan.Empty() {
		return plan, tx.Commit(ctx)
	}

	if plan.CourseChanged() {
		if _, err := tx.Exec(ctx,
			`UPDATE courses SET status = $1, updated_at = NOW() WHERE id = $2`, plan.CourseTo, courseID); err != nil {
			return status.Plan{}, fmt.Errorf("update course status: %w", err)
		}
	}

	for _, ch := range plan.Enrollments {
		if _, err := tx.Exec(ctx,
			`UPDATE enrollments SET status = $1, updated_at = NOW() WHERE id = $2`, ch.To, ch.EnrollmentID); err != nil {
			return status.Plan{}, fmt.Errorf("update enrollment status: %w", err)
		}
	}

	if err := refreshTrainingStatus(ctx, tx, plan.AffectedUsers()); err != nil {
		return status.Plan{}, err
	}

	return plan, tx.Commit(ctx)
}

// RefreshTrainingStatus recomputes training_status for the given trainees.
func (r *StatusRepository) RefreshTrainingStatus(ctx context.Context, userIDs ...uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := refreshTrainingStatus(ctx, tx, userIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func refreshTrainingStatus(ctx context.Context, tx pgx.Tx, userIDs []uuid.UUID) error {
	for _, uid := range userIDs {
		rows, err := tx.Query(ctx, `SELECT status FROM enrollments WHERE user_id = $1`, uid)
		if err != nil {
			return err
		}
		statuses, err := pgx.CollectRows(rows, pgx.RowTo[model.EnrollmentStatus])
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE users SET training_status = $1, updated_at = NOW()
			 WHERE id = $2 AND role = 'trainee' AND training_status <> $1`,
			status.Training(statuses), uid,
		); err != nil {
			return fmt.Errorf("update training status: %w", err)
		}
	}
	return nil
}

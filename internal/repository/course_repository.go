package repository

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/trainhub-backend/internal/model"
)

const courseColumns = `c.id, c.title, c.description, c.category, c.trainer_id, c.trainer_name,
	c.start_date, c.end_date, c.capacity, c.status, c.created_by, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id AND e.status NOT IN ('dropped', 'cancelled'))`

// CourseRepository handles course data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	c := &model.Course{}
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.TrainerID, &c.TrainerName,
		&c.StartDate, &c.EndDate, &c.Capacity, &c.Status, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
		&c.EnrollmentCount)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// GetByID retrieves a course with its live enrollment count.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses c WHERE c.id = $1`, id))
}

// ListPaginated retrieves courses matching the filter, newest start date first.
func (r *CourseRepository) ListPaginated(ctx context.Context, f model.CourseFilter, limit, offset int) ([]model.Course, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}

	if f.Status != "" {
		args = append(args, f.Status)
		where += ` AND c.status = $` + strconv.Itoa(len(args))
	}
	if f.OpenOnly {
		where += ` AND c.status IN ('upcoming', 'ongoing')`
	}
	if f.TrainerID != nil {
		args = append(args, *f.TrainerID)
		where += ` AND c.trainer_id = $` + strconv.Itoa(len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (c.title ILIKE $` + n + ` OR c.category ILIKE $` + n + `)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses c`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + courseColumns + ` FROM courses c` + where +
		` ORDER BY c.start_date DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, *c)
	}
	return courses, total, rows.Err()
}

// ListByTrainer retrieves every course taught by trainerID.
func (r *CourseRepository) ListByTrainer(ctx context.Context, trainerID uuid.UUID) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses c WHERE c.trainer_id = $1 ORDER BY c.start_date`, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// ListIDsForSweep returns ids of every course whose status may still change.
func (r *CourseRepository) ListIDsForSweep(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM courses WHERE status <> 'cancelled' ORDER BY start_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountByStatus returns the number of courses per status.
func (r *CourseRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM courses GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, description, category, trainer_id, trainer_name, start_date, end_date, capacity, status, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		c.Title, c.Description, c.Category, c.TrainerID, c.TrainerName, c.StartDate, c.EndDate,
		c.Capacity, c.Status, c.CreatedBy,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translate(err)
}

// Update modifies a course's editable fields and refreshes the denormalized
// copies held by its enrollments in the same transaction.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`UPDATE courses SET title = $1, description = $2, category = $3, trainer_id = $4, trainer_name = $5,
		        start_date = $6, end_date = $7, capacity = $8, updated_at = NOW()
		 WHERE id = $9`,
		c.Title, c.Description, c.Category, c.TrainerID, c.TrainerName, c.StartDate, c.EndDate, c.Capacity, c.ID,
	)
	if err := requireAffected(tag, err); err != nil {
		return err
	}

	if err := syncEnrollmentCopies(ctx, tx, c.ID, c.Title, c.TrainerName); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SetTrainer assigns (or clears) the course trainer and updates enrollment copies.
func (r *CourseRepository) SetTrainer(ctx context.Context, courseID uuid.UUID, trainerID *uuid.UUID, trainerName string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var title string
	err = tx.QueryRow(ctx,
		`UPDATE courses SET trainer_id = $1, trainer_name = $2, updated_at = NOW()
		 WHERE id = $3 RETURNING title`,
		trainerID, trainerName, courseID,
	).Scan(&title)
	if err != nil {
		return translate(err)
	}

	if err := syncEnrollmentCopies(ctx, tx, courseID, title, trainerName); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UnassignTrainer clears trainerID from all of their courses and returns the affected ids.
func (r *CourseRepository) UnassignTrainer(ctx context.Context, trainerID uuid.UUID) ([]uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ids, err := unassignTrainer(ctx, tx, trainerID)
	if err != nil {
		return nil, err
	}
	return ids, tx.Commit(ctx)
}

// SetStatus writes a course status directly (used for cancellation).
func (r *CourseRepository) SetStatus(ctx context.Context, id uuid.UUID, s model.CourseStatus) error {
	return requireAffected(r.pool.Exec(ctx,
		`UPDATE courses SET status = $1, updated_at = NOW() WHERE id = $2`, s, id))
}

// Delete removes a course; sessions, enrollments, materials and grades cascade.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id))
}

func syncEnrollmentCopies(ctx context.Context, tx pgx.Tx, courseID uuid.UUID, title, trainerName string) error {
	_, err := tx.Exec(ctx,
		`UPDATE enrollments SET course_title = $1, trainer_name = $2, updated_at = NOW()
		 WHERE course_id = $3 AND (course_title <> $1 OR trainer_name <> $2)`,
		title, trainerName, courseID,
	)
	return err
}

func unassignTrainer(ctx context.Context, tx pgx.Tx, trainerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx,
		`UPDATE courses SET trainer_id = NULL, trainer_name = '', updated_at = NOW()
		 WHERE trainer_id = $1 RETURNING id`, trainerID)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE enrollments SET trainer_name = '', updated_at = NOW() WHERE course_id = ANY($1)`, ids); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

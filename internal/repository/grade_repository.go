package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/trainhub-backend/internal/model"
)

// GradeRepository handles grades and gradebook queries.
type GradeRepository struct {
	pool *pgxpool.Pool
}

// NewGradeRepository creates a new GradeRepository.
func NewGradeRepository(pool *pgxpool.Pool) *GradeRepository {
	return &GradeRepository{pool: pool}
}

// Upsert creates or replaces the grade of an enrollment. graded_at keeps the
// first grading time; updated_at tracks regrades.
func (r *GradeRepository) Upsert(ctx context.Context, g *model.Grade) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO grades (enrollment_id, course_id, user_id, score, letter, remarks, graded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (enrollment_id) DO UPDATE
		   SET score = EXCLUDED.score, letter = EXCLUDED.letter, remarks = EXCLUDED.remarks,
		       graded_by = EXCLUDED.graded_by, updated_at = NOW()
		 RETURNING id, graded_at, updated_at`,
		g.EnrollmentID, g.CourseID, g.UserID, g.Score, g.Letter, g.Remarks, g.GradedBy,
	).Scan(&g.ID, &g.GradedAt, &g.UpdatedAt)
	return translate(err)
}

// GetByEnrollment retrieves the grade of an enrollment.
func (r *GradeRepository) GetByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*model.Grade, error) {
	g := &model.Grade{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, enrollment_id, course_id, user_id, score, letter, remarks, graded_by, graded_at, updated_at
		 FROM grades WHERE enrollment_id = $1`, enrollmentID,
	).Scan(&g.ID, &g.EnrollmentID, &g.CourseID, &g.UserID, &g.Score, &g.Letter, &g.Remarks,
		&g.GradedBy, &g.GradedAt, &g.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return g, nil
}

// DeleteByEnrollment removes a grade.
func (r *GradeRepository) DeleteByEnrollment(ctx context.Context, enrollmentID uuid.UUID) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM grades WHERE enrollment_id = $1`, enrollmentID))
}

// Gradebook lists every enrollment of a course with its grade, if any, ordered by trainee name.
func (r *GradeRepository) Gradebook(ctx context.Context, courseID uuid.UUID) ([]model.GradebookRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.user_id, u.name, u.email, e.status, g.score, g.letter, g.remarks, g.graded_at
		 FROM enrollments e
		 JOIN users u ON u.id = e.user_id
		 LEFT JOIN grades g ON g.enrollment_id = e.id
		 WHERE e.course_id = $1
		 ORDER BY u.name ASC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	book := []model.GradebookRow{}
	for rows.Next() {
		var (
			row     model.GradebookRow
			letter  *string
			remarks *string
		)
		if err := rows.Scan(&row.EnrollmentID, &row.UserID, &row.Name, &row.Email, &row.Status,
			&row.Score, &letter, &remarks, &row.GradedAt); err != nil {
			return nil, err
		}
		if letter != nil {
			row.Letter = *letter
		}
		if remarks != nil {
			row.Remarks = *remarks
		}
		book = append(book, row)
	}
	return book, rows.Err()
}

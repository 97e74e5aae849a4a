package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/trainhub-backend/internal/model"
)

// SessionRepository handles course session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func scanSession(row pgx.Row) (*model.Session, error) {
	s := &model.Session{}
	err := row.Scan(&s.ID, &s.CourseID, &s.CourseTitle, &s.Title, &s.Description, &s.Location,
		&s.StartsAt, &s.EndsAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

const sessionSelect = `SELECT s.id, s.course_id, c.title, s.title, s.description, s.location,
	s.starts_at, s.ends_at, s.created_at, s.updated_at
	FROM sessions s JOIN courses c ON c.id = s.course_id`

func collectSessions(rows pgx.Rows) ([]model.Session, error) {
	defer rows.Close()
	sessions := []model.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// GetByID retrieves a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	return scanSession(r.pool.QueryRow(ctx, sessionSelect+` WHERE s.id = $1`, id))
}

// ListByCourse retrieves a course's sessions in chronological order.
func (r *SessionRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx, sessionSelect+` WHERE s.course_id = $1 ORDER BY s.starts_at`, courseID)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// ListUpcomingForTrainer retrieves the next sessions of courses taught by trainerID.
func (r *SessionRepository) ListUpcomingForTrainer(ctx context.Context, trainerID uuid.UUID, from time.Time, limit int) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx,
		sessionSelect+` WHERE c.trainer_id = $1 AND s.ends_at >= $2 ORDER BY s.starts_at LIMIT $3`,
		trainerID, from, limit)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// ListUpcomingForTrainee retrieves the next sessions of courses the trainee is enrolled in.
func (r *SessionRepository) ListUpcomingForTrainee(ctx context.Context, userID uuid.UUID, from time.Time, limit int) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx,
		sessionSelect+` JOIN enrollments e ON e.course_id = s.course_id
		 WHERE e.user_id = $1 AND e.status IN ('pending', 'active') AND s.ends_at >= $2
		 ORDER BY s.starts_at LIMIT $3`,
		userID, from, limit)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sessions (course_id, title, description, location, starts_at, ends_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		s.CourseID, s.Title, s.Description, s.Location, s.StartsAt, s.EndsAt,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return translate(err)
}

// Update modifies a session.
func (r *SessionRepository) Update(ctx context.Context, s *model.Session) error {
	return requireAffected(r.pool.Exec(ctx,
		`UPDATE sessions SET title = $1, description = $2, location = $3, starts_at = $4, ends_at = $5, updated_at = NOW()
		 WHERE id = $6`,
		s.Title, s.Description, s.Location, s.StartsAt, s.EndsAt, s.ID,
	))
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id))
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/trainhub-backend/internal/model"
)

// MaterialRepository handles course material metadata. File bytes live on disk.
type MaterialRepository struct {
	pool *pgxpool.Pool
}

// NewMaterialRepository creates a new MaterialRepository.
func NewMaterialRepository(pool *pgxpool.Pool) *MaterialRepository {
	return &MaterialRepository{pool: pool}
}

const materialColumns = `id, course_id, uploaded_by, title, file_name, content_type, size_bytes, url, created_at`

func scanMaterial(row pgx.Row) (*model.Material, error) {
	m := &model.Material{}
	err := row.Scan(&m.ID, &m.CourseID, &m.UploadedBy, &m.Title, &m.FileName, &m.ContentType,
		&m.SizeBytes, &m.URL, &m.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

// GetByID retrieves a material by id.
func (r *MaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	return scanMaterial(r.pool.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
}

// ListByCourse retrieves a course's materials, newest first.
func (r *MaterialRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Material, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE course_id = $1 ORDER BY created_at DESC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	materials := []model.Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		materials = append(materials, *m)
	}
	return materials, rows.Err()
}

// Create inserts material metadata. The id is supplied by the caller so the
// stored file name can be derived from it before the row exists.
func (r *MaterialRepository) Create(ctx context.Context, m *model.Material) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO materials (id, course_id, uploaded_by, title, file_name, content_type, size_bytes, url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		m.ID, m.CourseID, m.UploadedBy, m.Title, m.FileName, m.ContentType, m.SizeBytes, m.URL,
	).Scan(&m.CreatedAt)
	return translate(err)
}

// Delete removes a material row.
func (r *MaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id))
}

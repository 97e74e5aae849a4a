package repository

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/trainhub-backend/internal/model"
)

const userColumns = `id, email, name, password_hash, role, is_super_admin, training_status,
	phone, bio, avatar_url, created_at, updated_at`

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsSuperAdmin,
		&u.TrainingStatus, &u.Phone, &u.Bio, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by their unique email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

// ListPaginated retrieves users with optional role and name/email search filters.
func (r *UserRepository) ListPaginated(ctx context.Context, f model.UserFilter, limit, offset int) ([]model.User, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}

	if f.Role != "" {
		args = append(args, f.Role)
		where += ` AND role = $` + strconv.Itoa(len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR email ILIKE $` + n + `)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users` + where +
		` ORDER BY name LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// ListByRole retrieves every user holding role, ordered by name.
func (r *UserRepository) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY name`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SearchTrainers finds trainers by name or email prefix match.
func (r *UserRepository) SearchTrainers(ctx context.Context, q string, limit int) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE role = 'trainer' AND ($1 = '' OR name ILIKE $2 OR email ILIKE $2)
		 ORDER BY name LIMIT $3`,
		q, "%"+q+"%", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// CountByRole returns the number of users per role.
func (r *UserRepository) CountByRole(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if u.TrainingStatus == "" {
		u.TrainingStatus = model.TrainingStatusNone
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, role, is_super_admin, training_status, phone, bio, avatar_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		u.Email, u.Name, u.PasswordHash, u.Role, u.IsSuperAdmin, u.TrainingStatus, u.Phone, u.Bio, u.AvatarURL,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return translate(err)
}

// UpdateProfile modifies a user's profile fields (not role or password).
func (r *UserRepository) UpdateProfile(ctx context.Context, u *model.User) error {
	return requireAffected(r.pool.Exec(ctx,
		`UPDATE users SET email = $1, name = $2, phone = $3, bio = $4, avatar_url = $5, updated_at = NOW()
		 WHERE id = $6`,
		u.Email, u.Name, u.Phone, u.Bio, u.AvatarURL, u.ID,
	))
}

// UpdateRole sets a user's role and super-admin flag.
func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role, superAdmin bool) error {
	return requireAffected(r.pool.Exec(ctx,
		`UPDATE users SET role = $1, is_super_admin = $2, updated_at = NOW() WHERE id = $3`,
		role, superAdmin, id,
	))
}

// UpdatePassword updates a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return requireAffected(r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id,
	))
}

// Delete removes a user by ID. Courses the user was teaching are unassigned
// in the same transaction and their ids returned for reconciliation.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	courseIDs, err := unassignTrainer(ctx, tx, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := requireAffected(tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return courseIDs, nil
}

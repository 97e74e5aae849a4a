package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/trainhub-backend/internal/model"
)

// DashboardRepository handles admin dashboard aggregates.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts returns user counts per role and course counts per status
// in one round trip.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (usersByRole, coursesByStatus map[string]int, err error) {
	rows, err := r.pool.Query(ctx,
		`SELECT 'user', role, COUNT(*) FROM users GROUP BY role
		 UNION ALL
		 SELECT 'course', status, COUNT(*) FROM courses GROUP BY status`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	usersByRole = map[string]int{}
	coursesByStatus = map[string]int{}
	for _, role := range []model.Role{model.RoleAdmin, model.RoleTrainer, model.RoleTrainee, model.RolePending} {
		usersByRole[string(role)] = 0
	}

	for rows.Next() {
		var (
			kind, key string
			count     int
		)
		if err := rows.Scan(&kind, &key, &count); err != nil {
			return nil, nil, err
		}
		if kind == "user" {
			usersByRole[key] = count
		} else {
			coursesByStatus[key] = count
		}
	}
	return usersByRole, coursesByStatus, rows.Err()
}

// GetPendingApprovals returns the oldest accounts still awaiting a role.
func (r *DashboardRepository) GetPendingApprovals(ctx context.Context, limit int) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at ASC LIMIT $2`,
		model.RolePending, limit)
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

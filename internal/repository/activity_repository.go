package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/trainhub-backend/internal/model"
)

// ActivityRepository handles the PostgreSQL activity log.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// InsertBatch copies a batch of entries. Entries already carry their ids so
// a retried batch fails on the primary key instead of duplicating rows.
func (r *ActivityRepository) InsertBatch(ctx context.Context, logs []model.ActivityLog) error {
	if len(logs) == 0 {
		return nil
	}
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"activity_logs"},
		[]string{"id", "actor_id", "action", "entity", "entity_id", "details", "created_at"},
		pgx.CopyFromSlice(len(logs), func(i int) ([]interface{}, error) {
			l := logs[i]
			var details interface{}
			if len(l.Details) > 0 {
				details = string(l.Details)
			}
			return []interface{}{l.ID, l.ActorID, l.Action, l.Entity, l.EntityID, details, l.CreatedAt}, nil
		}),
	)
	return translate(err)
}

// Insert writes a single entry, ignoring one that already exists.
func (r *ActivityRepository) Insert(ctx context.Context, l model.ActivityLog) error {
	var details interface{}
	if len(l.Details) > 0 {
		details = string(l.Details)
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_logs (id, actor_id, action, entity, entity_id, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		l.ID, l.ActorID, l.Action, l.Entity, l.EntityID, details, l.CreatedAt,
	)
	return translate(err)
}

// ListPaginated retrieves activity entries, newest first.
func (r *ActivityRepository) ListPaginated(ctx context.Context, filter model.ActivityFilter, limit, offset int) ([]model.ActivityLog, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		conds = append(conds, fmt.Sprintf("a.actor_id = $%d", len(args)))
	}
	if filter.Entity != "" {
		args = append(args, filter.Entity)
		conds = append(conds, fmt.Sprintf("a.entity = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activity_logs a`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT a.id, a.actor_id, COALESCE(u.name, ''), a.action, a.entity, a.entity_id, a.details, a.created_at
		 FROM activity_logs a LEFT JOIN users u ON u.id = a.actor_id%s
		 ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := []model.ActivityLog{}
	for rows.Next() {
		var (
			l       model.ActivityLog
			details []byte
		)
		if err := rows.Scan(&l.ID, &l.ActorID, &l.ActorName, &l.Action, &l.Entity, &l.EntityID, &details, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(details) > 0 {
			l.Details = details
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

// Recent returns the latest entries for dashboards.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	logs, _, err := r.ListPaginated(ctx, model.ActivityFilter{}, limit, 0)
	return logs, err
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/trainhub-backend/internal/model"
)

// FeedbackRepository handles feedback threads, messages and per-user hides.
type FeedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{pool: pool}
}

// threadSelect takes the viewer id as $1 to compute the unread count.
const threadSelect = `SELECT t.id, t.trainee_id, te.name, t.trainer_id, tr.name, t.course_id, t.subject,
	t.last_message_at, t.created_at,
	(SELECT COUNT(*) FROM feedback_messages m
	  WHERE m.thread_id = t.id AND m.sender_id <> $1 AND m.read_at IS NULL AND m.deleted_at IS NULL)
	FROM feedback_threads t
	JOIN users te ON te.id = t.trainee_id
	JOIN users tr ON tr.id = t.trainer_id`

func scanThread(row pgx.Row) (*model.FeedbackThread, error) {
	t := &model.FeedbackThread{}
	err := row.Scan(&t.ID, &t.TraineeID, &t.TraineeName, &t.TrainerID, &t.TrainerName, &t.CourseID,
		&t.Subject, &t.LastMessageAt, &t.CreatedAt, &t.UnreadCount)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func collectThreads(rows pgx.Rows) ([]model.FeedbackThread, error) {
	defer rows.Close()
	threads := []model.FeedbackThread{}
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, *t)
	}
	return threads, rows.Err()
}

// GetThread retrieves a thread as seen by viewerID.
func (r *FeedbackRepository) GetThread(ctx context.Context, id, viewerID uuid.UUID) (*model.FeedbackThread, error) {
	return scanThread(r.pool.QueryRow(ctx, threadSelect+` WHERE t.id = $2`, viewerID, id))
}

// FindThread looks up the thread for a trainee/trainer pair and optional course.
func (r *FeedbackRepository) FindThread(ctx context.Context, traineeID, trainerID uuid.UUID, courseID *uuid.UUID) (*model.FeedbackThread, error) {
	return scanThread(r.pool.QueryRow(ctx,
		threadSelect+` WHERE t.trainee_id = $2 AND t.trainer_id = $3 AND t.course_id IS NOT DISTINCT FROM $4`,
		traineeID, traineeID, trainerID, courseID))
}

// ListThreadsForUser retrieves threads where userID participates, most recent first.
func (r *FeedbackRepository) ListThreadsForUser(ctx context.Context, userID uuid.UUID) ([]model.FeedbackThread, error) {
	rows, err := r.pool.Query(ctx,
		threadSelect+` WHERE t.trainee_id = $1 OR t.trainer_id = $1 ORDER BY t.last_message_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectThreads(rows)
}

// ListAllThreads retrieves every thread for moderators, paginated.
func (r *FeedbackRepository) ListAllThreads(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]model.FeedbackThread, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback_threads`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		threadSelect+` ORDER BY t.last_message_at DESC LIMIT $2 OFFSET $3`, viewerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	threads, err := collectThreads(rows)
	return threads, total, err
}

// CreateThread inserts a new thread.
func (r *FeedbackRepository) CreateThread(ctx context.Context, t *model.FeedbackThread) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO feedback_threads (trainee_id, trainer_id, course_id, subject)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, last_message_at, created_at`,
		t.TraineeID, t.TrainerID, t.CourseID, t.Subject,
	).Scan(&t.ID, &t.LastMessageAt, &t.CreatedAt)
	return translate(err)
}

const messageSelect = `SELECT m.id, m.thread_id, m.sender_id, u.name, m.body, m.edited_at, m.deleted_at,
	m.read_at, m.created_at
	FROM feedback_messages m JOIN users u ON u.id = m.sender_id`

func scanMessage(row pgx.Row) (*model.FeedbackMessage, error) {
	m := &model.FeedbackMessage{}
	err := row.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.SenderName, &m.Body, &m.EditedAt, &m.DeletedAt,
		&m.ReadAt, &m.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

// GetMessage retrieves a single message.
func (r *FeedbackRepository) GetMessage(ctx context.Context, id uuid.UUID) (*model.FeedbackMessage, error) {
	return scanMessage(r.pool.QueryRow(ctx, messageSelect+` WHERE m.id = $1`, id))
}

// ListMessages retrieves a thread's messages that viewerID has not hidden,
// oldest first. before, when non-nil, pages backwards from that time.
func (r *FeedbackRepository) ListMessages(ctx context.Context, threadID, viewerID uuid.UUID, before *time.Time, limit int) ([]model.FeedbackMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT * FROM (`+messageSelect+`
		  WHERE m.thread_id = $1
		    AND NOT EXISTS (SELECT 1 FROM feedback_hidden h WHERE h.message_id = m.id AND h.user_id = $2)
		    AND ($3::timestamptz IS NULL OR m.created_at < $3)
		  ORDER BY m.created_at DESC LIMIT $4
		 ) page ORDER BY created_at`,
		threadID, viewerID, before, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.FeedbackMessage{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// CreateMessage inserts a message and bumps the thread's last_message_at.
func (r *FeedbackRepository) CreateMessage(ctx context.Context, m *model.FeedbackMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := tx.QueryRow(ctx,
		`INSERT INTO feedback_messages (thread_id, sender_id, body) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		m.ThreadID, m.SenderID, m.Body,
	).Scan(&m.ID, &m.CreatedAt); err != nil {
		return translate(err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE feedback_threads SET last_message_at = $1 WHERE id = $2`, m.CreatedAt, m.ThreadID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// EditMessage replaces a live message's body.
func (r *FeedbackRepository) EditMessage(ctx context.Context, id uuid.UUID, body string) (time.Time, error) {
	var editedAt time.Time
	err := r.pool.QueryRow(ctx,
		`UPDATE feedback_messages SET body = $1, edited_at = NOW()
		 WHERE id = $2 AND deleted_at IS NULL RETURNING edited_at`,
		body, id,
	).Scan(&editedAt)
	return editedAt, translate(err)
}

// SoftDeleteMessage blanks a message and stamps deleted_at.
func (r *FeedbackRepository) SoftDeleteMessage(ctx context.Context, id uuid.UUID) (time.Time, error) {
	var deletedAt time.Time
	err := r.pool.QueryRow(ctx,
		`UPDATE feedback_messages SET body = '', deleted_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL RETURNING deleted_at`, id,
	).Scan(&deletedAt)
	return deletedAt, translate(err)
}

// HideMessage hides a message for one viewer. Hiding twice is a no-op.
func (r *FeedbackRepository) HideMessage(ctx context.Context, messageID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO feedback_hidden (message_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		messageID, userID)
	return translate(err)
}

// MarkThreadRead marks every message not sent by readerID as read.
func (r *FeedbackRepository) MarkThreadRead(ctx context.Context, threadID, readerID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE feedback_messages SET read_at = NOW()
		 WHERE thread_id = $1 AND sender_id <> $2 AND read_at IS NULL`,
		threadID, readerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/trainhub-backend/internal/logger"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNotificationStore fails the whole batch when any row fails, the way a
// single pgx batch does.
type fakeNotificationStore struct {
	rowErr   map[uuid.UUID]error
	inserted []uuid.UUID
}

func (s *fakeNotificationStore) InsertBatch(ctx context.Context, items []*model.Notification) error {
	for _, n := range items {
		if err := s.rowErr[n.UserID]; err != nil {
			return err
		}
	}
	for _, n := range items {
		s.inserted = append(s.inserted, n.UserID)
	}
	return nil
}

func (s *fakeNotificationStore) Insert(ctx context.Context, n *model.Notification) error {
	if err := s.rowErr[n.UserID]; err != nil {
		return err
	}
	s.inserted = append(s.inserted, n.UserID)
	return nil
}

func notificationFor(userID uuid.UUID) *model.Notification {
	return &model.Notification{UserID: userID, Kind: model.NotificationKindCourse, Title: "Course updated"}
}

func TestPersistStoresWholeBatch(t *testing.T) {
	store := &fakeNotificationStore{}
	w := &NotificationWorker{repo: store, log: logger.Nop()}
	a, b := uuid.New(), uuid.New()

	stored, retry := w.persist(context.Background(), []*model.Notification{notificationFor(a), notificationFor(b)})

	assert.Len(t, stored, 2)
	assert.Empty(t, retry)
	assert.Equal(t, []uuid.UUID{a, b}, store.inserted)
}

func TestPersistDropsDeletedRecipients(t *testing.T) {
	kept, deleted, flaky := uuid.New(), uuid.New(), uuid.New()
	store := &fakeNotificationStore{rowErr: map[uuid.UUID]error{
		deleted: repository.ErrDependencyUsed,
		flaky:   errors.New("connection reset"),
	}}
	w := &NotificationWorker{repo: store, log: logger.Nop()}

	stored, retry := w.persist(context.Background(), []*model.Notification{
		notificationFor(kept), notificationFor(deleted), notificationFor(flaky),
	})

	require.Len(t, stored, 1)
	assert.Equal(t, kept, stored[0].UserID)
	require.Len(t, retry, 1)
	assert.Equal(t, flaky, retry[0].UserID)
	assert.Equal(t, []uuid.UUID{kept}, store.inserted)
}

func TestPersistWrappedDependencyError(t *testing.T) {
	gone := uuid.New()
	store := &fakeNotificationStore{rowErr: map[uuid.UUID]error{
		gone: errors.Join(errors.New("insert notification"), repository.ErrDependencyUsed),
	}}
	w := &NotificationWorker{repo: store, log: logger.Nop()}

	stored, retry := w.persist(context.Background(), []*model.Notification{notificationFor(gone)})

	assert.Empty(t, stored)
	assert.Empty(t, retry)
}

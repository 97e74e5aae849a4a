package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   response.ErrCode
	}{
		{"not found", repository.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
		{"wrapped forbidden topic", fmt.Errorf("%w: activity", service.ErrTopicNotPermitted), http.StatusForbidden, response.ErrTopicNotPermitted},
		{"course full", service.ErrCourseFull, http.StatusConflict, response.ErrCourseFull},
		{"unsupported file", fmt.Errorf("%w: application/gzip", service.ErrUnsupportedFileType), http.StatusUnsupportedMediaType, response.ErrUnsupportedFile},
		{"self action", service.ErrSelfAction, http.StatusForbidden, response.ErrSelfActionDenied},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := mapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func hiddenPayload(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	b, err := json.Marshal(map[string]interface{}{
		"type": model.EventHidden,
		"data": service.HiddenEvent{MessageID: uuid.New(), UserID: userID},
	})
	require.NoError(t, err)
	return string(b)
}

func TestVisibleTo(t *testing.T) {
	viewer := uuid.New()

	assert.True(t, visibleTo(`{"type":"message","data":{"body":"hi"}}`, viewer))
	assert.True(t, visibleTo(hiddenPayload(t, viewer), viewer))
	assert.False(t, visibleTo(hiddenPayload(t, uuid.New()), viewer))
	assert.False(t, visibleTo("not json", viewer))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m 42s", formatDuration(42*time.Second))
	assert.Equal(t, "2h 5m 0s", formatDuration(2*time.Hour+5*time.Minute))
	assert.Equal(t, "1d 1h 0m 1s", formatDuration(25*time.Hour+time.Second+400*time.Millisecond))
}

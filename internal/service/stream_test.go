package service

import (
	"testing"

	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTopics(t *testing.T) {
	assert.Nil(t, ParseTopics(""))
	assert.Equal(t, []string{"courses", "activity"}, ParseTopics(" Courses, ,activity,courses "))
}

func TestStreamChannels(t *testing.T) {
	trainee := newActor(model.RoleTrainee)

	channels, err := StreamChannels(trainee, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		config.CacheKey.CoursesChannel(),
		config.CacheKey.NotificationsChannel(trainee.ID),
	}, channels)

	_, err = StreamChannels(trainee, []string{"activity"})
	assert.ErrorIs(t, err, ErrTopicNotPermitted)

	_, err = StreamChannels(trainee, []string{"unknown"})
	assert.ErrorIs(t, err, ErrTopicNotPermitted)

	_, err = StreamChannels(newActor(model.RolePending), nil)
	assert.ErrorIs(t, err, ErrForbidden)

	channels, err = StreamChannels(newActor(model.RoleAdmin), []string{"enrollments", "activity"})
	require.NoError(t, err)
	assert.Equal(t, []string{config.CacheKey.EnrollmentsChannel(), config.CacheKey.ActivityChannel()}, channels)
}

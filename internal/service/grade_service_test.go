package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRenderGradebook(t *testing.T) {
	score := 92.5
	gradedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	course := &model.Course{
		ID:          uuid.New(),
		Title:       "Forklift Safety",
		TrainerName: "Dana",
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	rows := []model.GradebookRow{
		{Name: "Ari", Email: "ari@example.com", Status: model.EnrollmentStatusActive, Score: &score, Letter: "A", Remarks: "solid", GradedAt: &gradedAt},
		{Name: "Bo", Email: "bo@example.com", Status: model.EnrollmentStatusPending},
	}

	data, err := RenderGradebook(course, rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	cell := func(ref string) string {
		v, err := f.GetCellValue(gradebookSheet, ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Forklift Safety", cell("A1"))
	assert.Equal(t, "2026-03-01 to 2026-03-15, trainer: Dana", cell("A2"))
	assert.Equal(t, "Name", cell("A4"))
	assert.Equal(t, "Graded At", cell("G4"))
	assert.Equal(t, "Ari", cell("A5"))
	assert.Equal(t, "92.5", cell("D5"))
	assert.Equal(t, "A", cell("E5"))
	assert.Equal(t, "2026-03-14 09:30", cell("G5"))
	assert.Equal(t, "Bo", cell("A6"))
	assert.Equal(t, "pending", cell("C6"))
	assert.Empty(t, cell("D6"))
}

func TestRenderGradebookNilCourse(t *testing.T) {
	_, err := RenderGradebook(nil, nil)
	assert.Error(t, err)
}

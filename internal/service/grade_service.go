package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/repository"
	"github.com/xuri/excelize/v2"
)

const gradebookSheet = "Gradebook"

// GradeService handles trainer grading and gradebook exports.
type GradeService struct {
	repo           *repository.GradeRepository
	enrollmentRepo *repository.EnrollmentRepository
	courses        *CourseService
	notifications  *NotificationService
	activity       *ActivityService
	log            zerolog.Logger
}

// NewGradeService creates a new GradeService.
func NewGradeService(
	repo *repository.GradeRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	courses *CourseService,
	notifications *NotificationService,
	activity *ActivityService,
	log zerolog.Logger,
) *GradeService {
	return &GradeService{
		repo:           repo,
		enrollmentRepo: enrollmentRepo,
		courses:        courses,
		notifications:  notifications,
		activity:       activity,
		log:            log.With().Str("component", "grade_service").Logger(),
	}
}

// SetGrade records or replaces the grade of an enrollment.
func (s *GradeService) SetGrade(ctx context.Context, actor Actor, enrollmentID uuid.UUID, req *model.GradeRequest) (*model.Grade, error) {
	e, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.GetByID(ctx, e.CourseID)
	if err != nil {
		return nil, err
	}
	if err := CanTeach(actor, course); err != nil {
		return nil, err
	}
	if e.Status == model.EnrollmentStatusDropped {
		return nil, ErrEnrollmentDropped
	}

	score := model.RoundScore(*req.Score)
	g := &model.Grade{
		EnrollmentID: e.ID,
		CourseID:     e.CourseID,
		UserID:       e.UserID,
		Score:        score,
		Letter:       model.LetterFor(score),
		Remarks:      req.Remarks,
		GradedBy:     &actor.ID,
	}
	if err := s.repo.Upsert(ctx, g); err != nil {
		return nil, fmt.Errorf("save grade: %w", err)
	}

	s.activity.RecordBy(ctx, actor, ActionGradeSet, "enrollment", e.ID, map[string]interface{}{
		"course_id": e.CourseID,
		"user_id":   e.UserID,
		"score":     g.Score,
		"letter":    g.Letter,
	})
	s.notifications.Notify(ctx, []uuid.UUID{e.UserID}, model.NotificationKindGrade,
		"Grade posted", fmt.Sprintf("You received %s (%.1f) in %s.", g.Letter, g.Score, course.Title),
		courseLink(course.ID))
	return g, nil
}

// MyGrades returns the caller's enrollments that carry a grade.
func (s *GradeService) MyGrades(ctx context.Context, actor Actor) ([]model.Enrollment, error) {
	all, err := s.enrollmentRepo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	graded := make([]model.Enrollment, 0, len(all))
	for _, e := range all {
		if e.Grade != nil {
			graded = append(graded, e)
		}
	}
	return graded, nil
}

// Gradebook returns every trainee of a course with their grade, if any.
func (s *GradeService) Gradebook(ctx context.Context, actor Actor, courseID uuid.UUID) (*model.Course, []model.GradebookRow, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	if err := CanTeach(actor, course); err != nil {
		return nil, nil, err
	}
	rows, err := s.repo.Gradebook(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	return course, rows, nil
}

// ExportGradebook renders the gradebook as an xlsx workbook.
func (s *GradeService) ExportGradebook(ctx context.Context, actor Actor, courseID uuid.UUID) (string, []byte, error) {
	course, rows, err := s.Gradebook(ctx, actor, courseID)
	if err != nil {
		return "", nil, err
	}
	data, err := RenderGradebook(course, rows)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("gradebook-%s.xlsx", course.ID), data, nil
}

// RenderGradebook writes rows to a single-sheet workbook.
func RenderGradebook(course *model.Course, rows []model.GradebookRow) ([]byte, error) {
	if course == nil {
		return nil, errors.New("render gradebook: nil course")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", gradebookSheet); err != nil {
		return nil, fmt.Errorf("render gradebook: %w", err)
	}

	f.SetCellValue(gradebookSheet, "A1", course.Title)
	f.SetCellValue(gradebookSheet, "A2", fmt.Sprintf("%s to %s, trainer: %s",
		course.StartDate.Format("2006-01-02"), course.EndDate.Format("2006-01-02"), course.TrainerName))

	header := []interface{}{"Name", "Email", "Status", "Score", "Letter", "Remarks", "Graded At"}
	if err := f.SetSheetRow(gradebookSheet, "A4", &header); err != nil {
		return nil, fmt.Errorf("render gradebook: %w", err)
	}
	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		f.SetCellStyle(gradebookSheet, "A1", "A1", bold)
		f.SetCellStyle(gradebookSheet, "A4", "G4", bold)
	}

	for i, r := range rows {
		line := []interface{}{r.Name, r.Email, string(r.Status), "", r.Letter, r.Remarks, ""}
		if r.Score != nil {
			line[3] = *r.Score
		}
		if r.GradedAt != nil {
			line[6] = r.GradedAt.Format("2006-01-02 15:04")
		}
		cell, err := excelize.CoordinatesToCellName(1, i+5)
		if err != nil {
			return nil, fmt.Errorf("render gradebook: %w", err)
		}
		if err := f.SetSheetRow(gradebookSheet, cell, &line); err != nil {
			return nil, fmt.Errorf("render gradebook: %w", err)
		}
	}

	f.SetColWidth(gradebookSheet, "A", "B", 28)
	f.SetColWidth(gradebookSheet, "F", "F", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render gradebook: %w", err)
	}
	return buf.Bytes(), nil
}

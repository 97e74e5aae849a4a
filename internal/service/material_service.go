package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/repository"
)

// allowedMaterialTypes is matched against the sniffed type, never the
// client-declared one.
var allowedMaterialTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/msword",
	"application/vnd.ms-excel",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/vnd.oasis.opendocument.text",
	"application/vnd.oasis.opendocument.spreadsheet",
	"application/vnd.oasis.opendocument.presentation",
	"text/plain",
	"text/csv",
	"application/zip",
}

// SniffMaterial detects the content type of data and checks it against the
// allow-list. It returns the canonical type and a file extension.
func SniffMaterial(data []byte) (contentType, ext string, err error) {
	if len(data) == 0 {
		return "", "", ErrEmptyFile
	}
	m := mimetype.Detect(data)
	if !mimetype.EqualsAny(m.String(), allowedMaterialTypes...) {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, m.String())
	}
	return m.String(), m.Extension(), nil
}

// DecodeBase64Content decodes standard base64, accepting an optional data URL
// prefix ("data:application/pdf;base64,") and surrounding whitespace.
func DecodeBase64Content(content string) ([]byte, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "data:") {
		comma := strings.IndexByte(content, ',')
		if comma < 0 || !strings.HasSuffix(content[:comma], ";base64") {
			return nil, fmt.Errorf("%w: malformed data URL", ErrInvalidContent)
		}
		content = content[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		// Some clients strip padding.
		if data, err = base64.RawStdEncoding.DecodeString(content); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
	}
	return data, nil
}

// MaterialService stores course materials on local disk.
type MaterialService struct {
	cfg            *config.Config
	repo           *repository.MaterialRepository
	enrollmentRepo *repository.EnrollmentRepository
	courses        *CourseService
	notifications  *NotificationService
	activity       *ActivityService
	log            zerolog.Logger
}

// NewMaterialService creates a new MaterialService.
func NewMaterialService(
	cfg *config.Config,
	repo *repository.MaterialRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	courses *CourseService,
	notifications *NotificationService,
	activity *ActivityService,
	log zerolog.Logger,
) *MaterialService {
	return &MaterialService{
		cfg:            cfg,
		repo:           repo,
		enrollmentRepo: enrollmentRepo,
		courses:        courses,
		notifications:  notifications,
		activity:       activity,
		log:            log.With().Str("component", "material_service").Logger(),
	}
}

// List returns a course's materials for its participants.
func (s *MaterialService) List(ctx context.Context, actor Actor, courseID uuid.UUID) ([]model.Material, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.courses.CanView(ctx, actor, course); err != nil {
		return nil, err
	}
	return s.repo.ListByCourse(ctx, courseID)
}

// Upload stores a streamed file (multipart form).
func (s *MaterialService) Upload(ctx context.Context, actor Actor, courseID uuid.UUID, title, fileName string, r io.Reader) (*model.Material, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return s.store(ctx, actor, courseID, title, fileName, data)
}

// UploadBase64 stores a file whose content arrived inline as base64.
func (s *MaterialService) UploadBase64(ctx context.Context, actor Actor, courseID uuid.UUID, req *model.Base64MaterialRequest) (*model.Material, error) {
	// Base64 inflates by 4/3; reject obviously oversized payloads before decoding.
	if int64(len(req.Content)) > s.cfg.MaxUploadBytes/3*4+1024 {
		return nil, ErrFileTooLarge
	}
	data, err := DecodeBase64Content(req.Content)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, actor, courseID, req.Title, req.FileName, data)
}

func (s *MaterialService) store(ctx context.Context, actor Actor, courseID uuid.UUID, title, fileName string, data []byte) (*model.Material, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := CanTeach(actor, course); err != nil {
		return nil, err
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: max %d bytes", ErrFileTooLarge, s.cfg.MaxUploadBytes)
	}
	contentType, ext, err := SniffMaterial(data)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	id := uuid.New()
	stored := id.String() + ext
	dest := filepath.Join(s.cfg.UploadDir, stored)
	if err := writeFile(dest, data); err != nil {
		return nil, err
	}

	m := &model.Material{
		ID:          id,
		CourseID:    courseID,
		UploadedBy:  &actor.ID,
		Title:       strings.TrimSpace(title),
		FileName:    filepath.Base(fileName),
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		URL:         "/uploads/" + stored,
	}
	if m.Title == "" {
		m.Title = m.FileName
	}
	if err := s.repo.Create(ctx, m); err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("save material: %w", err)
	}

	s.activity.RecordBy(ctx, actor, ActionMaterialUploaded, "material", m.ID, map[string]interface{}{
		"course_id":    courseID,
		"file_name":    m.FileName,
		"content_type": contentType,
	})
	if trainees, err := s.enrollmentRepo.ActiveUserIDs(ctx, courseID); err == nil {
		s.notifications.Notify(ctx, trainees, model.NotificationKindMaterial,
			"New material", m.Title+" was added to "+course.Title+".", courseLink(courseID))
	}
	return m, nil
}

// Delete removes a material and its file. Allowed for the uploader and admins.
func (s *MaterialService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if (m.UploadedBy == nil || *m.UploadedBy != actor.ID) && !actor.IsAdmin() {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	file := filepath.Join(s.cfg.UploadDir, path.Base(m.URL))
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Str("file", file).Msg("Remove material file failed")
	}
	s.activity.RecordBy(ctx, actor, ActionMaterialDeleted, "material", id, map[string]interface{}{"course_id": m.CourseID})
	return nil
}

func writeFile(dest string, data []byte) error {
	dst, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

package service

import "errors"

// Domain errors. Handlers map these to response codes with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrRegistrationClosed = errors.New("registration is closed")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrEmailTaken         = errors.New("email already registered")

	ErrForbidden        = errors.New("forbidden")
	ErrRoleChangeDenied = errors.New("role change not allowed")
	ErrSelfAction       = errors.New("action not allowed on own account")
	ErrNotCourseTrainer = errors.New("not the trainer of this course")

	ErrNotTrainer        = errors.New("user is not a trainer")
	ErrNotTrainee        = errors.New("user is not a trainee")
	ErrCourseNotOpen     = errors.New("course is not open for enrollment")
	ErrCourseFull        = errors.New("course is full")
	ErrCourseCancelled   = errors.New("course is cancelled")
	ErrAlreadyEnrolled   = errors.New("already enrolled")
	ErrSessionOutOfRange = errors.New("session outside course dates")
	ErrEnrollmentDropped = errors.New("enrollment is dropped")
	ErrEnrollmentClosed  = errors.New("enrollment is already finished")

	ErrNotParticipant   = errors.New("not a participant of this thread")
	ErrNotMessageSender = errors.New("not the sender of this message")
	ErrMessageDeleted   = errors.New("message is deleted")
	ErrInvalidMessage   = errors.New("message body is empty")

	ErrTopicNotPermitted = errors.New("topic not permitted")

	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrEmptyFile           = errors.New("file is empty")
	ErrInvalidContent      = errors.New("invalid base64 content")

	ErrUnknownSetting = errors.New("unknown setting")
)

package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenRevoked       ErrCode = "TOKEN_REVOKED"
	ErrRegistrationClosed ErrCode = "REGISTRATION_CLOSED"
	ErrWrongPassword      ErrCode = "WRONG_PASSWORD"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrPermissionDenied  ErrCode = "PERMISSION_DENIED"
	ErrApprovalRequired  ErrCode = "APPROVAL_REQUIRED"
	ErrRoleChangeDenied  ErrCode = "ROLE_CHANGE_FORBIDDEN"
	ErrSelfActionDenied  ErrCode = "SELF_ACTION_FORBIDDEN"
	ErrNotCourseTrainer  ErrCode = "NOT_COURSE_TRAINER"
	ErrNotParticipant    ErrCode = "NOT_PARTICIPANT"
	ErrNotMessageSender  ErrCode = "NOT_MESSAGE_SENDER"
	ErrTopicNotPermitted ErrCode = "TOPIC_NOT_PERMITTED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidRole    ErrCode = "INVALID_ROLE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrEmailTaken       ErrCode = "EMAIL_TAKEN"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrActionForbidden  ErrCode = "ACTION_FORBIDDEN"

	// ─── Training ──────────────────────────────────────────────────────
	ErrCourseNotOpen     ErrCode = "COURSE_NOT_OPEN"
	ErrCourseFull        ErrCode = "COURSE_FULL"
	ErrCourseCancelled   ErrCode = "COURSE_CANCELLED"
	ErrAlreadyEnrolled   ErrCode = "ALREADY_ENROLLED"
	ErrNotTrainer        ErrCode = "USER_NOT_TRAINER"
	ErrNotTrainee        ErrCode = "USER_NOT_TRAINEE"
	ErrSessionOutOfRange ErrCode = "SESSION_OUTSIDE_COURSE"
	ErrEnrollmentDropped ErrCode = "ENROLLMENT_DROPPED"
	ErrMessageDeleted    ErrCode = "MESSAGE_DELETED"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Incorrect email or password."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrTokenRevoked:
		return "This session has been signed out. Please log in again."
	case ErrRegistrationClosed:
		return "Self-registration is currently closed."
	case ErrWrongPassword:
		return "The current password is incorrect."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have access to this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrApprovalRequired:
		return "Your account is waiting for administrator approval."
	case ErrRoleChangeDenied:
		return "You are not allowed to make this role change."
	case ErrSelfActionDenied:
		return "You cannot perform this action on your own account."
	case ErrNotCourseTrainer:
		return "Only the course trainer or an administrator can do this."
	case ErrNotParticipant:
		return "You are not a participant of this conversation."
	case ErrNotMessageSender:
		return "Only the sender can change this message."
	case ErrTopicNotPermitted:
		return "You cannot subscribe to one of the requested topics."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidRole:
		return "Unknown role."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrEmailTaken:
		return "This email address is already registered."
	case ErrDependencyExists:
		return "This record is still used by other data."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Training ──────────────────────────────────────────────────────
	case ErrCourseNotOpen:
		return "This course is not open for enrollment."
	case ErrCourseFull:
		return "This course has reached its capacity."
	case ErrCourseCancelled:
		return "This course has been cancelled."
	case ErrAlreadyEnrolled:
		return "The trainee is already enrolled in this course."
	case ErrNotTrainer:
		return "The selected user is not a trainer."
	case ErrNotTrainee:
		return "The selected user is not a trainee."
	case ErrSessionOutOfRange:
		return "The session must fall within the course dates."
	case ErrEnrollmentDropped:
		return "Dropped enrollments cannot be graded."
	case ErrMessageDeleted:
		return "This message has been deleted."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "The file exceeds the size limit."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}

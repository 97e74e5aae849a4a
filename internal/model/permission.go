package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionUsersRead allows viewing user lists and details.
	PermissionUsersRead Permission = "users:read"

	// PermissionUsersWrite allows creating, updating, approving and deleting users.
	PermissionUsersWrite Permission = "users:write"

	// PermissionCoursesRead allows viewing course lists and details.
	PermissionCoursesRead Permission = "courses:read"

	// PermissionCoursesWrite allows creating, updating and deleting any course.
	PermissionCoursesWrite Permission = "courses:write"

	// PermissionCoursesTeach allows managing sessions, materials and grades of assigned courses.
	PermissionCoursesTeach Permission = "courses:teach"

	// PermissionCoursesEnroll allows enrolling into and dropping open courses.
	PermissionCoursesEnroll Permission = "courses:enroll"

	// PermissionEnrollmentsManage allows enrolling and removing any trainee.
	PermissionEnrollmentsManage Permission = "enrollments:manage"

	// PermissionFeedbackUse allows taking part in feedback threads.
	PermissionFeedbackUse Permission = "feedback:use"

	// PermissionFeedbackModerate allows reading any thread and deleting any message.
	PermissionFeedbackModerate Permission = "feedback:moderate"

	// PermissionNotificationsBroadcast allows sending notifications to a whole role.
	PermissionNotificationsBroadcast Permission = "notifications:broadcast"

	// PermissionActivityRead allows viewing the activity log.
	PermissionActivityRead Permission = "activity:read"

	// PermissionSettingsRead allows viewing application settings.
	PermissionSettingsRead Permission = "settings:read"

	// PermissionSettingsWrite allows editing application settings.
	PermissionSettingsWrite Permission = "settings:write"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionUsersRead,
	PermissionUsersWrite,
	PermissionCoursesRead,
	PermissionCoursesWrite,
	PermissionCoursesTeach,
	PermissionCoursesEnroll,
	PermissionEnrollmentsManage,
	PermissionFeedbackUse,
	PermissionFeedbackModerate,
	PermissionNotificationsBroadcast,
	PermissionActivityRead,
	PermissionSettingsRead,
	PermissionSettingsWrite,
}

// rolePermissions is the fixed permission set granted to each role.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: AllPermissions,
	RoleTrainer: {
		PermissionUsersRead,
		PermissionCoursesRead,
		PermissionCoursesTeach,
		PermissionFeedbackUse,
	},
	RoleTrainee: {
		PermissionCoursesRead,
		PermissionCoursesEnroll,
		PermissionFeedbackUse,
	},
	RolePending: {},
}

// PermissionsFor returns the permission codes granted to role.
func PermissionsFor(role Role) []string {
	perms := rolePermissions[role]
	codes := make([]string, 0, len(perms))
	for _, p := range perms {
		codes = append(codes, string(p))
	}
	return codes
}

package model

// AdminDashboard summarises the whole system.
type AdminDashboard struct {
	UsersByRole      map[string]int `json:"users_by_role"`
	CoursesByStatus  map[string]int `json:"courses_by_status"`
	PendingApprovals []User         `json:"pending_approvals"`
	RecentActivity   []ActivityLog  `json:"recent_activity"`
}

// TrainerDashboard is a trainer's landing page.
type TrainerDashboard struct {
	Courses          []Course         `json:"courses"`
	UpcomingSessions []Session        `json:"upcoming_sessions"`
	Threads          []FeedbackThread `json:"threads"`
}

// TraineeDashboard is a trainee's landing page.
type TraineeDashboard struct {
	Enrollments         []Enrollment   `json:"enrollments"`
	UpcomingSessions    []Session      `json:"upcoming_sessions"`
	UnreadNotifications int64          `json:"unread_notifications"`
	RecentNotifications []Notification `json:"recent_notifications"`
}

// PendingDashboard is shown to accounts awaiting approval.
type PendingDashboard struct {
	User               User `json:"user"`
	AwaitingApproval   bool `json:"awaiting_approval"`
	RegistrationIsOpen bool `json:"registration_open"`
}

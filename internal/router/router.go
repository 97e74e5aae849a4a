package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/trainhub-backend/internal/config"
	"github.com/stemsi/trainhub-backend/internal/handler"
	"github.com/stemsi/trainhub-backend/internal/middleware"
	"github.com/stemsi/trainhub-backend/internal/model"
	"github.com/stemsi/trainhub-backend/internal/response"
	"github.com/stemsi/trainhub-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Course       *handler.CourseHandler
	Session      *handler.SessionHandler
	Enrollment   *handler.EnrollmentHandler
	Material     *handler.MaterialHandler
	Grade        *handler.GradeHandler
	Feedback     *handler.FeedbackHandler
	FeedbackWS   *handler.FeedbackWSHandler
	Notification *handler.NotificationHandler
	Activity     *handler.ActivityHandler
	Setting      *handler.SettingHandler
	Dashboard    *handler.DashboardHandler
	Stream       *handler.StreamHandler
	System       *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Content-Disposition", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve uploaded materials statically with aggressive caching (1 year).
	// Stored names are random UUIDs, so a URL never changes content.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", handlers.System.Health)

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/settings", handlers.Setting.GetPublicSettings)
	}

	authLimiter := middleware.NewRateLimiter(rdb, "auth", cfg.AuthRateLimit, time.Minute, log)
	requireAuth := []gin.HandlerFunc{
		middleware.RequireAuth(authService),
		middleware.CheckTokenNotRevoked(authService),
	}

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		// Pending accounts may manage their own profile.
		me := auth.Group("", requireAuth...)
		me.POST("/logout", handlers.Auth.Logout)
		me.GET("/me", handlers.Auth.Me)
		me.PUT("/me", handlers.Auth.UpdateMe)
		me.PUT("/me/password", handlers.Auth.ChangePassword)
	}

	// ─── 2. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireWSAuth(authService),
		middleware.CheckTokenNotRevoked(authService),
		middleware.RequireApproved(),
	)
	{
		ws.GET("/feedback/threads/:id",
			middleware.RequirePermission(model.PermissionFeedbackUse),
			handlers.FeedbackWS.ThreadStream,
		)
	}

	// ─── 3. Authenticated Group (JWT, pending allowed) ─────────────────
	api := router.Group("/api/v1", requireAuth...)
	{
		api.GET("/dashboard", handlers.Dashboard.GetDashboardData)
		api.GET("/stream", handlers.Stream.Stream)

		notifications := api.Group("/notifications", middleware.NoStore())
		{
			notifications.GET("", handlers.Notification.ListNotifications)
			notifications.GET("/unread-count", handlers.Notification.UnreadCount)
			notifications.POST("/read-all", handlers.Notification.MarkAllRead)
			notifications.POST("/:id/read", handlers.Notification.MarkRead)
			notifications.DELETE("/:id", handlers.Notification.DeleteNotification)
			notifications.POST("/broadcast",
				middleware.RequireApproved(),
				middleware.RequirePermission(model.PermissionNotificationsBroadcast),
				handlers.Notification.Broadcast,
			)
		}
	}

	// ─── 4. Approved Group (JWT + approved role + RBAC) ────────────────
	approved := api.Group("", middleware.RequireApproved())
	{
		// Users
		approved.GET("/users",
			middleware.RequirePermission(model.PermissionUsersRead),
			handlers.User.ListUsers,
		)
		approved.GET("/users/pending",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.User.ListPending,
		)
		approved.GET("/users/:id",
			middleware.RequirePermission(model.PermissionUsersRead),
			handlers.User.GetUser,
		)
		approved.POST("/users",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.User.CreateUser,
		)
		approved.PUT("/users/:id",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.User.UpdateUser,
		)
		approved.PUT("/users/:id/role",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.User.ChangeRole,
		)
		approved.DELETE("/users/:id",
			middleware.RequirePermission(model.PermissionUsersWrite),
			handlers.User.DeleteUser,
		)
		approved.GET("/trainers", handlers.User.SearchTrainers)

		// Courses
		approved.GET("/courses",
			middleware.RequirePermission(model.PermissionCoursesRead),
			handlers.Course.ListCourses,
		)
		approved.GET("/courses/:id",
			middleware.RequirePermission(model.PermissionCoursesRead),
			handlers.Course.GetCourse,
		)
		approved.POST("/courses",
			middleware.RequirePermission(model.PermissionCoursesWrite),
			handlers.Course.CreateCourse,
		)
		approved.PUT("/courses/:id",
			middleware.RequirePermission(model.PermissionCoursesWrite),
			handlers.Course.UpdateCourse,
		)
		approved.PUT("/courses/:id/trainer",
			middleware.RequirePermission(model.PermissionCoursesWrite),
			handlers.Course.AssignTrainer,
		)
		approved.POST("/courses/:id/cancel",
			middleware.RequirePermission(model.PermissionCoursesWrite),
			handlers.Course.CancelCourse,
		)
		approved.DELETE("/courses/:id",
			middleware.RequirePermission(model.PermissionCoursesWrite),
			handlers.Course.DeleteCourse,
		)

		// Sessions
		approved.GET("/courses/:id/sessions",
			middleware.RequirePermission(model.PermissionCoursesRead),
			handlers.Session.ListSessions,
		)
		approved.POST("/courses/:id/sessions",
			middleware.RequirePermission(model.PermissionCoursesTeach),
			handlers.Session.CreateSession,
		)
		approved.GET("/sessions/upcoming", handlers.Session.Upcoming)
		approved.PUT("/sessions/:id",
			middleware.RequirePermission(model.PermissionCoursesTeach),
			handlers.Session.UpdateSession,
		)
		approved.DELETE("/sessions/:id",
			middleware.RequirePermission(model.PermissionCoursesTeach),
			handlers.Session.DeleteSession,
		)

		// Enrollments
		approved.POST("/courses/:id/enroll",
			middleware.RequirePermission(model.PermissionCoursesEnroll),
			handlers.Enrollment.Enroll,
		)
		approved.POST("/courses/:id/enrollments",
			middleware.RequirePermission(model.PermissionEnrollmentsManage),
			handlers.Enrollment.AdminEnroll,
		)
		approved.GET("/courses/:id/enrollments",
			middleware.RequireAnyPermission(model.PermissionCoursesTeach, model.PermissionEnrollmentsManage),
			handlers.Enrollment.Roster,
		)
		approved.GET("/enrollments/me",
			middleware.RequirePermission(model.PermissionCoursesEnroll),
			handlers.Enrollment.ListMine,
		)
		approved.GET("/enrollments/:id", handlers.Enrollment.GetEnrollment)
		approved.POST("/enrollments/:id/drop",
			middleware.RequireAnyPermission(model.PermissionCoursesEnroll, model.PermissionEnrollmentsManage),
			handlers.Enrollment.Drop,
		)
		approved.DELETE("/enrollments/:id",
			middleware.RequirePermission(model.PermissionEnrollmentsManage),
			handlers.Enrollment.Remove,
		)

		// Materials
		approved.GET("/courses/:id/materials",
			middleware.RequirePermission(model.PermissionCoursesRead),
			handlers.Material.ListMaterials,
		)
		approved.POST("/courses/:id/materials",
			middleware.RequirePermission(model.PermissionCoursesTeach),
			handlers.Material.UploadMaterial,
		)
		approved.DELETE("/materials/:id",
			middleware.RequirePermission(model.PermissionCoursesTeach),
			handlers.Material.DeleteMaterial,
		)

		// Grades
		approved.PUT("/enrollments/:id/grade",
			middleware.RequirePermission(model.PermissionCoursesTeach),
			handlers.Grade.SetGrade,
		)
		approved.GET("/grades/me",
			middleware.RequirePermission(model.PermissionCoursesEnroll),
			handlers.Grade.MyGrades,
		)
		approved.GET("/courses/:id/gradebook",
			middleware.RequirePermission(model.PermissionCoursesTeach),
			handlers.Grade.Gradebook,
		)
		approved.GET("/courses/:id/gradebook/export",
			middleware.RequirePermission(model.PermissionCoursesTeach),
			handlers.Grade.ExportGradebook,
		)

		// Feedback
		feedback := approved.Group("/feedback",
			middleware.RequireAnyPermission(model.PermissionFeedbackUse, model.PermissionFeedbackModerate),
		)
		{
			feedback.POST("/threads", handlers.Feedback.StartThread)
			feedback.GET("/threads", handlers.Feedback.ListThreads)
			feedback.GET("/threads/:id", handlers.Feedback.GetThread)
			feedback.GET("/threads/:id/messages", handlers.Feedback.ListMessages)
			feedback.POST("/threads/:id/messages", handlers.Feedback.SendMessage)
			feedback.PUT("/messages/:id", handlers.Feedback.EditMessage)
			feedback.DELETE("/messages/:id", handlers.Feedback.DeleteMessage)
			feedback.POST("/messages/:id/hide", handlers.Feedback.HideMessage)
		}

		// Activity log
		approved.GET("/activity",
			middleware.RequirePermission(model.PermissionActivityRead),
			handlers.Activity.ListActivity,
		)

		// App Settings Routes
		settingsGroup := approved.Group("/settings")
		{
			settingsGroup.GET("", middleware.RequirePermission(model.PermissionSettingsRead), handlers.Setting.GetAllSettings)
			settingsGroup.PUT("", middleware.RequirePermission(model.PermissionSettingsWrite), handlers.Setting.UpdateSettings)
		}

		// System Monitoring
		approved.GET("/system/metrics",
			middleware.RequirePermission(model.PermissionSettingsRead),
			handlers.System.SystemMetricsSSE,
		)
	}

	return router
}

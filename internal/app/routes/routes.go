package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/controllers"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	profileController *controllers.ProfileController,
	jobController *controllers.JobController,
	applicationController *controllers.ApplicationController,
	messageController *controllers.MessageController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewInfoResponse("pong"))
	})

	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})

	// --- Auth routes ---
	// Login and logout accept an existing session but do not require one.
	auth := api.Group("/auth")
	{
		auth.POST("/login", authMiddleware.OptionalAuth(), authController.Login)
		auth.POST("/logout", authMiddleware.OptionalAuth(), authController.Logout)
		auth.GET("/me", authMiddleware.JWTAuth(), authController.Me)
	}

	requireAdmin := []gin.HandlerFunc{authMiddleware.JWTAuth(), authMiddleware.RoleRequired(models.RoleAdmin)}
	requireStudent := []gin.HandlerFunc{authMiddleware.JWTAuth(), authMiddleware.RoleRequired(models.RoleStudent)}

	// --- User routes ---
	users := api.Group("/users")
	{
		users.POST("/student-registration", authController.RegisterStudent)
		users.GET("/invitations/verify", userController.VerifyInvitation)

		usersAdmin := users.Group("", requireAdmin...)
		{
			usersAdmin.POST("/register", userController.Invite)
			usersAdmin.POST("/register-admin", authController.RegisterAdmin)
			usersAdmin.GET("/students", userController.ListStudents)
			usersAdmin.GET("/all", userController.ListAll)
		}
	}

	// --- Student routes ---
	student := api.Group("/student")
	{
		// The profile may be written right after registration, before the
		// client holds a session, so the subject can come from user_id.
		student.POST("/profile", authMiddleware.OptionalAuth(), profileController.Save)
		student.PUT("/profile", authMiddleware.OptionalAuth(), profileController.Save)

		studentAuth := student.Group("", requireStudent...)
		{
			studentAuth.GET("/profile", profileController.Get)
			studentAuth.GET("/jobs/available", jobController.Available)
			studentAuth.GET("/jobs/applied", applicationController.Applied)
			studentAuth.POST("/jobs/:id/apply", applicationController.Apply)
			studentAuth.GET("/messages", messageController.ForStudent)
		}

		// Admins read statuses and documents through the same paths.
		studentOrAdmin := student.Group("", authMiddleware.JWTAuth())
		{
			studentOrAdmin.GET("/jobs/:id/status", applicationController.Status)
			studentOrAdmin.GET("/jobs/pdf/:filename", jobController.Document)
		}
	}

	// --- Admin routes ---
	admin := api.Group("/admin", requireAdmin...)
	{
		admin.POST("/register-students", userController.InviteBulk)

		admin.POST("/jobs", jobController.Create)
		admin.GET("/jobs", jobController.List)
		admin.DELETE("/jobs/:id", jobController.Delete)
		admin.GET("/jobs/:id/applications", applicationController.Applicants)
		admin.GET("/filtered-jobs/:studentId", jobController.FilteredForStudent)

		admin.PATCH("/applications/:id/status", applicationController.UpdateStatus)

		admin.POST("/messages", messageController.Create)
		admin.GET("/messages", messageController.List)
		admin.DELETE("/messages/:id", messageController.Delete)
		admin.POST("/messages/:id/notify", messageController.Notify)
	}
}

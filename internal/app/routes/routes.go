package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rahul/acadcore/internal/app/controllers"
	"github.com/rahul/acadcore/internal/app/models/dto"
	"github.com/rahul/acadcore/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	studentController *controllers.StudentController,
	subjectController *controllers.SubjectController,
	markController *controllers.MarkController,
	attendanceController *controllers.AttendanceController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", authController.SignUp)
		auth.POST("/signin", authController.SignIn)
	}

	// --- Authenticated Routes Group ---
	// Role gating itself happens in the repositories; every record route only
	// needs a resolved session.
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.SessionRequired())
	{
		authenticated.GET("/me", authController.Me)

		authenticated.POST("/auth/role", authController.ChooseRole)
		authenticated.POST("/auth/signout", authController.SignOut)

		students := authenticated.Group("/students")
		{
			students.GET("", studentController.List)
			students.POST("", studentController.Create)
			students.PUT("/:id", studentController.Update)
			students.DELETE("/:id", studentController.Delete)
		}

		subjects := authenticated.Group("/subjects")
		{
			subjects.GET("", subjectController.List)
			subjects.POST("", subjectController.Create)
			subjects.PUT("/:id", subjectController.Update)
			subjects.DELETE("/:id", subjectController.Delete)
		}

		marks := authenticated.Group("/marks")
		{
			marks.GET("", markController.List)
			marks.POST("", markController.Create)
			marks.PUT("/:id", markController.Update)
			marks.DELETE("/:id", markController.Delete)
		}

		attendance := authenticated.Group("/attendance")
		{
			attendance.GET("", attendanceController.List)
			attendance.POST("", attendanceController.Save)
			attendance.PUT("/:id", attendanceController.Toggle)
			attendance.DELETE("/:id", attendanceController.Delete)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})
}

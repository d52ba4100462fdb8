package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clipper-lms/activity"
	"github.com/yeremiapane/clipper-lms/config"
	"github.com/yeremiapane/clipper-lms/controllers"
	"github.com/yeremiapane/clipper-lms/middlewares"
	"github.com/yeremiapane/clipper-lms/models"
	"github.com/yeremiapane/clipper-lms/services"
	"github.com/yeremiapane/clipper-lms/utils"
	"gorm.io/gorm"
)

// Dependencies are built once in main and shared by every request.
type Dependencies struct {
	Config  *config.Config
	DB      *gorm.DB
	Tokens  *utils.TokenService
	Revoked utils.TokenBlacklist
	Hub     *activity.Hub
}

func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSAllowedOrigins))
	r.Use(middlewares.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow).RateLimit())

	authService := services.NewAuthService(deps.DB, deps.Tokens, deps.Revoked, cfg.BcryptCost)
	userService := services.NewUserService(deps.DB)
	courseService := services.NewCourseService(deps.DB, deps.Hub)
	enrollmentService := services.NewEnrollmentService(deps.DB, deps.Hub)

	authCtrl := controllers.NewAuthController(authService)
	userCtrl := controllers.NewUserController(userService)
	courseCtrl := controllers.NewCourseController(courseService)
	enrollmentCtrl := controllers.NewEnrollmentController(enrollmentService)
	activityCtrl := controllers.NewActivityController(deps.Hub, cfg.CORSAllowedOrigins)

	requireAuth := middlewares.AuthMiddleware(deps.Tokens, deps.Revoked)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to Akademi Clipper LMS API",
			"version": "1.0",
		})
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	auth := r.Group("/auth")
	auth.Use(middlewares.NewStrictRateLimiter(cfg.AuthRateEvery, cfg.AuthRateBurst))
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
		auth.POST("/logout", requireAuth, authCtrl.Logout)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	users := r.Group("/users", requireAuth)
	{
		users.GET("", userCtrl.GetAllUsers)
		users.GET("/me/stats", userCtrl.GetMyStats)
		users.GET("/:id", userCtrl.GetUserByID)
		users.PUT("/:id", userCtrl.UpdateUser)
		users.DELETE("/:id", userCtrl.DeleteUser)
	}

	courses := r.Group("/courses", requireAuth)
	{
		courses.GET("", courseCtrl.GetAllCourses)
		courses.GET("/my-courses", courseCtrl.GetMyCourses)
		courses.GET("/:id", courseCtrl.GetCourseByID)
		courses.POST("", courseCtrl.CreateCourse)
		courses.PUT("/:id", courseCtrl.UpdateCourse)
		courses.DELETE("/:id", courseCtrl.DeleteCourse)
	}

	enrollments := r.Group("/enrollments", requireAuth)
	{
		enrollments.POST("/enroll/:id", enrollmentCtrl.Enroll)
		enrollments.DELETE("/unenroll/:id", enrollmentCtrl.Unenroll)
		enrollments.GET("/my-enrollments", enrollmentCtrl.GetMyEnrollments)
		enrollments.GET("", enrollmentCtrl.GetAllEnrollments)
		enrollments.GET("/course/:id", enrollmentCtrl.GetCourseEnrollments)
	}

	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware(deps.Tokens, deps.Revoked))
	ws.Use(middlewares.RoleCheck(models.RoleAdmin, models.RoleInstructor))
	{
		ws.GET("/activity", activityCtrl.Stream)
	}

	return r
}

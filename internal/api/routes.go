package api

import (
	"net/http"

	"alcyxob/fit-coach/internal/access"
	"alcyxob/fit-coach/internal/config"
	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIVersion is reported by the welcome endpoint.
const APIVersion = "1.0.0"

// Services groups the service layer consumed by the HTTP handlers.
type Services struct {
	Auth        service.AuthService
	Users       service.UserService
	Exercises   service.ExerciseService
	Plans       service.PlanService
	Completions service.CompletionService
}

// NewRouter builds the gin engine with CORS, request logging, recovery and
// every route registered.
func NewRouter(cfg config.Config, log *zap.Logger, svc Services) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log), cors.New(corsConfig(cfg)))
	SetupRoutes(router, cfg, log, svc)
	return router
}

// corsConfig allows the configured frontend in production and any origin otherwise.
func corsConfig(cfg config.Config) cors.Config {
	c := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}
	if cfg.IsDevelopment() || cfg.CORS.FrontendURL == "" {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = []string{cfg.CORS.FrontendURL}
	c.AllowCredentials = true
	return c
}

func SetupRoutes(router *gin.Engine, cfg config.Config, log *zap.Logger, svc Services) {
	r := errorResponder{log: log, showDetail: cfg.IsDevelopment()}

	authHandler := NewAuthHandler(svc.Auth, r)
	userHandler := NewUserHandler(svc.Users, r)
	exerciseHandler := NewExerciseHandler(svc.Exercises, r)
	planHandler := NewPlanHandler(svc.Plans, r)
	completionHandler := NewCompletionHandler(svc.Completions, r)

	authMiddleware := AuthMiddleware(svc.Auth, r)
	can := func(action access.Action) gin.HandlerFunc { return RequireAction(action, r) }
	coachOnly := RoleMiddleware(r, domain.RoleCoach)
	clientOnly := RoleMiddleware(r, domain.RoleClient)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiGroup := router.Group("/api")
	apiGroup.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":     "Welcome to the Fit Coach API",
			"version":     APIVersion,
			"environment": cfg.Environment,
		})
	})

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Public
	apiGroup.GET("/users/coaches", userHandler.ListCoaches)

	protected := apiGroup.Group("")
	protected.Use(authMiddleware)

	users := protected.Group("/users")
	{
		users.PUT("/profile", userHandler.UpdateProfile)
		users.GET("/clients", can(access.ListClients), userHandler.ListClients)
		users.POST("/clients", can(access.AddClient), userHandler.AddClient)
		users.GET("/clients/:id", can(access.ReadClient), userHandler.GetClient)
	}

	exercises := protected.Group("/exercises")
	{
		exercises.GET("", exerciseHandler.ListExercises)
		exercises.POST("", can(access.CreateExercise), exerciseHandler.CreateExercise)
		exercises.GET("/:id", exerciseHandler.GetExercise)
	}

	plans := protected.Group("/workout-plans")
	{
		plans.GET("", can(access.ListOwnPlans), planHandler.ListCoachPlans)
		plans.POST("", can(access.CreatePlan), planHandler.CreatePlan)
		plans.GET("/client", clientOnly, planHandler.ListClientPlans)
		plans.GET("/client/:clientId", coachOnly, planHandler.ListClientPlans)
		plans.GET("/:id", can(access.ReadPlan), planHandler.GetPlan)
		plans.PUT("/:id", can(access.UpdatePlan), planHandler.UpdatePlan)
		plans.DELETE("/:id", can(access.DeletePlan), planHandler.DeletePlan)
		plans.POST("/:id/exercises", can(access.AttachExercise), planHandler.AttachExercise)
	}

	completions := protected.Group("/workout-completions")
	{
		completions.GET("/client", clientOnly, completionHandler.ListClientCompletions)
		completions.GET("/client/:clientId", coachOnly, completionHandler.ListClientCompletions)
		completions.GET("/plan/:planId", can(access.ListPlanCompletions), completionHandler.ListPlanCompletions)
		completions.POST("", can(access.UpsertCompletion), completionHandler.UpsertCompletion)
		completions.PUT("/:id", can(access.UpdateCompletion), completionHandler.UpdateCompletion)
		completions.DELETE("/:id", can(access.DeleteCompletion), completionHandler.DeleteCompletion)
		completions.POST("/:id/media/upload-url", can(access.UploadCompletionMedia), completionHandler.MediaUploadURL)
		completions.PUT("/:id/media", can(access.UploadCompletionMedia), completionHandler.ConfirmMedia)
		completions.GET("/:id/media", can(access.ReadCompletionMedia), completionHandler.MediaURL)
	}
}

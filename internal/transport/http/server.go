package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"studybuddy/internal/ai"
	appsvc "studybuddy/internal/app"
	"studybuddy/internal/bootstrap"
	"studybuddy/internal/cache"
	"studybuddy/internal/platform/rabbitmq"
	"studybuddy/internal/repository"
	"studybuddy/internal/transport/http/handler"
	"studybuddy/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.StaticFile("/", "web/index.html")
	router.StaticFile("/login", "web/login.html")
	router.StaticFile("/register", "web/register.html")
	router.StaticFile("/dashboard", "web/dashboard.html")
	router.StaticFile("/upgrade", "web/upgrade.html")
	router.StaticFile("/set", "web/set.html")
	router.StaticFile("/styles.css", "web/styles.css")
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	sessionRepo := repository.NewChatSessionRepository(app.MySQL)
	flashcardRepo := repository.NewFlashcardRepository(app.MySQL)

	denylist := cache.NewTokenDenylist(app.Redis)
	statsCache := cache.NewStatsCache(app.Redis, time.Duration(app.Config.Redis.StatsTTLSeconds)*time.Second)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	quota := appsvc.NewQuotaPolicy(userRepo, app.Config.Quota.DailyLimit)
	generator := ai.NewFlashcardGenerator(ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
	})
	publisher := rabbitmq.NewResponsePublisher(app.MQConn, app.Config.RabbitMQ.ResponsePersistQueue)
	studyService := appsvc.NewStudyService(
		userRepo,
		sessionRepo,
		flashcardRepo,
		quota,
		generator,
		publisher,
		appsvc.StudyServiceOptions{
			StatsCache:  statsCache,
			StatsOffset: app.Config.Quota.StatsOffset,
			StatsRatio:  app.Config.Quota.StatsRatio,
		},
	)

	authHandler := handler.NewAuthHandler(authService, denylist)
	studyHandler := handler.NewStudyHandler(studyService)
	authRequired := middleware.AuthJWT(app.Config.Auth.JWTSecret, denylist)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authRequired, authHandler.Logout)
	authGroup.GET("/me", authRequired, authHandler.Me)

	studyGroup := v1.Group("")
	studyGroup.Use(authRequired)
	studyGroup.GET("/dashboard", studyHandler.Dashboard)
	studyGroup.POST("/generate", studyHandler.Generate)
	studyGroup.POST("/generate/pdf", studyHandler.GenerateFromPDF)
	studyGroup.GET("/sets/:id", studyHandler.GetSet)
	studyGroup.POST("/upgrade", studyHandler.Upgrade)

	adminGroup := v1.Group("/admin")
	adminGroup.Use(authRequired, middleware.RequireAdmin())
	adminGroup.POST("/users/:id/pro", studyHandler.PromoteUser)

	return router
}

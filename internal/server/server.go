package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"nub.ac.bd/transport/internal/config"
	"nub.ac.bd/transport/internal/middleware"
	"nub.ac.bd/transport/pkg/mailer"
	"nub.ac.bd/transport/pkg/storage"

	busHttp "nub.ac.bd/transport/internal/modules/bus/delivery/http"
	busRepo "nub.ac.bd/transport/internal/modules/bus/repository"
	busService "nub.ac.bd/transport/internal/modules/bus/service"

	chatbotHttp "nub.ac.bd/transport/internal/modules/chatbot/delivery/http"
	chatbotRepo "nub.ac.bd/transport/internal/modules/chatbot/repository"
	chatbotService "nub.ac.bd/transport/internal/modules/chatbot/service"

	journeyHttp "nub.ac.bd/transport/internal/modules/journey/delivery/http"
	"nub.ac.bd/transport/internal/modules/journey/feed"
	journeyRepo "nub.ac.bd/transport/internal/modules/journey/repository"
	journeyService "nub.ac.bd/transport/internal/modules/journey/service"

	scheduleHttp "nub.ac.bd/transport/internal/modules/schedule/delivery/http"
	scheduleRepo "nub.ac.bd/transport/internal/modules/schedule/repository"
	"nub.ac.bd/transport/internal/modules/schedule/search"
	scheduleService "nub.ac.bd/transport/internal/modules/schedule/service"

	userHttp "nub.ac.bd/transport/internal/modules/user/delivery/http"
	userRepo "nub.ac.bd/transport/internal/modules/user/repository"
	userService "nub.ac.bd/transport/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const apiPrefix = "/api/v1"

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	llm         chatbotService.LLMProvider
}

// NewServer wires every module. Redis, Meilisearch, Cloudinary and Gemini
// are optional; the features backed by them degrade when unset.
func NewServer(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	userRepository := userRepo.NewUserRepository(db)
	busRepository := busRepo.NewBusRepository(db)
	managerRepository := busRepo.NewManagerRepository(db)
	routeRepository := scheduleRepo.NewRouteRepository(db)
	stopRepository := scheduleRepo.NewStopRepository(db)
	scheduleRepository := scheduleRepo.NewScheduleRepository(db)
	journeyRepository := journeyRepo.NewJourneyRepository(db)
	checkInRepository := journeyRepo.NewCheckInRepository(db)

	// Users
	var imageStorage storage.ImageStorage
	if cfg.CloudinaryURL != "" || cfg.CloudinaryCloudName != "" {
		s, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logrus.WithError(err).Warn("cloudinary storage disabled")
		} else {
			imageStorage = s
		}
	}

	mail := mailer.New(mailer.Config{
		Host:     cfg.MailHost,
		Port:     cfg.MailPort,
		Username: cfg.MailSender,
		Password: cfg.MailPassword,
		From:     cfg.MailFrom,
	})

	userSvc := userService.NewUserService(userRepository, imageStorage, mail, redisClient, userService.TokenConfig{
		Secret: cfg.JWTSecret,
		TTL:    cfg.JWTTTL,
	}, cfg.CloudinaryUploadFolder)
	userHandler := userHttp.NewUserHandler(userSvc, cfg.JWTTokenName)

	// Buses and managers
	busSvc := busService.NewBusService(busRepository, managerRepository, routeRepository, userRepository)
	busHandler := busHttp.NewBusHandler(busSvc)

	// Routes, stops and schedules
	stopIndex := newStopIndex(cfg)
	routeSvc := scheduleService.NewRouteService(routeRepository, stopRepository, scheduleRepository, stopIndex)
	stopSvc := scheduleService.NewStopService(stopRepository, routeRepository, stopIndex)
	scheduleSvc := scheduleService.NewScheduleService(scheduleRepository, routeRepository, busRepository)
	scheduleHandler := scheduleHttp.NewScheduleHandler(routeSvc, stopSvc, scheduleSvc)

	if stopIndex != nil {
		go func() {
			if err := stopSvc.ReindexStops(ctx); err != nil {
				logrus.WithError(err).Warn("initial bus stop reindex failed")
			}
		}()
	}

	// Journeys
	journeySvc := journeyService.NewJourneyService(
		journeyRepository,
		checkInRepository,
		busRepository,
		routeRepository,
		stopRepository,
		busSvc,
		feed.NewPublisher(redisClient),
	)
	journeyHandler := journeyHttp.NewJourneyHandler(journeySvc)
	locationStream := journeyHttp.NewLocationStreamHandler(redisClient, cfg.AllowedOrigins)

	// Chatbot
	var llm chatbotService.LLMProvider
	if cfg.GeminiAPIKey != "" {
		provider, err := chatbotService.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logrus.WithError(err).Warn("gemini provider disabled")
		} else {
			llm = provider
		}
	}
	var history chatbotRepo.HistoryRepository
	if redisClient != nil {
		history = chatbotRepo.NewHistoryRepository(redisClient, cfg.ChatbotSessionTTL)
	}
	chatbotSvc := chatbotService.NewChatbotService(llm, history, redisClient, cfg.ChatbotRateLimit)
	chatbotHandler := chatbotHttp.NewChatbotHandler(chatbotSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(apiPrefix + "/health"))

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret, cfg.JWTTokenName)
	requireAuth := authMiddleware.RequireAuth()
	requireAdmin := authMiddleware.RequireAdmin()

	api := router.Group(apiPrefix)
	api.GET("/health", healthCheck(db))

	// Users
	users := api.Group("/users")
	{
		users.POST("/register", userHandler.Register)
		users.POST("/login", userHandler.Login)
		users.POST("/reset-password/otp", userHandler.RequestResetOTP)
		users.POST("/reset-password", userHandler.ResetPassword)

		users.POST("/logout", requireAuth, userHandler.Logout)
		users.GET("/profile", requireAuth, userHandler.GetProfile)
		users.PATCH("/profile", requireAuth, userHandler.UpdateProfile)
		users.POST("/profile/photo", requireAuth, userHandler.UploadPhoto)
		users.PATCH("/change-password", requireAuth, userHandler.ChangePassword)

		users.GET("", requireAuth, requireAdmin, userHandler.GetAllUsers)
		users.PATCH("/reset-password/:email", requireAuth, requireAdmin, userHandler.AdminResetPassword)
		users.PATCH("/role", requireAuth, requireAdmin, userHandler.ChangeRole)
	}

	// Buses, managers and journeys
	buses := api.Group("/buses")
	buses.Use(requireAuth)
	{
		buses.GET("", busHandler.GetAllBuses)
		buses.GET("/:id", busHandler.GetBusByID)
		buses.GET("/:id/managers", busHandler.GetBusManagers)
		buses.GET("/:id/journeys", journeyHandler.GetBusJourneys)

		buses.POST("/journeys/start", journeyHandler.StartJourney)
		buses.PATCH("/journeys/:id/end", journeyHandler.EndJourney)
		buses.POST("/journeys/:id/check-in", journeyHandler.CreateCheckIn)
		buses.PATCH("/check-ins/:id", journeyHandler.UpdateCheckIn)
		buses.GET("/journeys/:id/check-ins", journeyHandler.GetJourneyCheckIns)
		buses.GET("/journeys", journeyHandler.GetAllJourneys)
		buses.GET("/journeys/active", journeyHandler.GetActiveJourneys)
		buses.GET("/journeys/:id/location", journeyHandler.GetBusLocation)
		buses.GET("/active-locations", journeyHandler.GetActiveLocations)
		buses.GET("/active-locations/ws", locationStream.Stream)

		admin := buses.Group("")
		admin.Use(requireAdmin)
		{
			admin.POST("", busHandler.CreateBus)
			admin.PATCH("/:id", busHandler.UpdateBus)
			admin.DELETE("/:id", busHandler.DeleteBus)
			admin.PATCH("/:id/off-days", busHandler.UpdateOffDays)
			admin.POST("/managers/assign", busHandler.AssignManager)
			admin.PATCH("/managers/:id/unassign", busHandler.UnassignManager)
		}
	}

	// Routes, stops and schedules
	schedules := api.Group("/bus-schedules")
	schedules.Use(requireAuth)
	{
		schedules.GET("/routes", scheduleHandler.GetAllRoutes)
		schedules.GET("/routes/:id", scheduleHandler.GetRouteByID)
		schedules.GET("/routes/:id/stops", scheduleHandler.GetRouteStops)
		schedules.GET("/routes/:id/schedules", scheduleHandler.GetSchedulesByRoute)
		schedules.GET("/stops", scheduleHandler.GetAllStops)
		schedules.GET("/stops/search", scheduleHandler.SearchStops)
		schedules.GET("/stops/:id", scheduleHandler.GetStopByID)
		schedules.GET("/schedules", scheduleHandler.GetAllSchedules)
		schedules.GET("/schedules/today", scheduleHandler.GetTodaySchedules)
		schedules.GET("/schedules/:id", scheduleHandler.GetScheduleByID)
		schedules.GET("/buses/:id/schedules", scheduleHandler.GetSchedulesByBus)

		admin := schedules.Group("")
		admin.Use(requireAdmin)
		{
			admin.POST("/routes", scheduleHandler.CreateRoute)
			admin.POST("/routes/with-stops", scheduleHandler.CreateRouteWithStops)
			admin.PATCH("/routes/:id", scheduleHandler.UpdateRoute)
			admin.DELETE("/routes/:id", scheduleHandler.DeleteRoute)
			admin.POST("/stops", scheduleHandler.CreateStop)
			admin.PATCH("/stops/:id", scheduleHandler.UpdateStop)
			admin.DELETE("/stops/:id", scheduleHandler.DeleteStop)
			admin.POST("/schedules", scheduleHandler.CreateSchedule)
			admin.PATCH("/schedules/:id", scheduleHandler.UpdateSchedule)
			admin.DELETE("/schedules/:id", scheduleHandler.DeleteSchedule)
		}
	}

	// Chatbot
	chat := api.Group("/chatbot")
	chat.Use(requireAuth)
	{
		chat.POST("/chat", chatbotHandler.Chat)
		chat.GET("/history", chatbotHandler.GetHistory)
		chat.DELETE("/history", chatbotHandler.ClearHistory)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		llm:         llm,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Close releases the external clients the server owns.
func (s *Server) Close() {
	if s.llm != nil {
		s.llm.Close()
	}
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newStopIndex returns nil when Meilisearch is not configured so stop search
// falls back to the database.
func newStopIndex(cfg *config.Config) search.StopIndex {
	meiliHost := cfg.MeiliSearchHost
	if meiliHost == "" {
		logrus.Warn("MEILISEARCH_HOST is not set, stop search uses the database")
		return nil
	}
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}

	client := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	return search.NewMeiliStopIndex(client)
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// Package server contains the HTTP handlers that dispatch forum requests to
// the services after identity resolution and profile gating.
package server

import (
	"context"
	"errors"
	"log"
	"time"

	_ "forum/docs" // swagger docs
	"forum/internal/config"
	"forum/internal/featureflags"
	"forum/internal/middleware"
	"forum/internal/models"
	"forum/internal/notifications"
	"forum/internal/repository"
	"forum/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager

	categories *service.CategoryService
	topics     *service.TopicService
	posts      *service.PostService
	comments   *service.CommentService
	profiles   *service.ProfileService
	auth       *service.AuthService
}

// NewServerWithDeps creates a Server from connections opened by bootstrap.InitRuntime.
// A nil redis client means the forum runs without cache, revocation and events.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)

	var pub notifications.Publisher
	if redisClient != nil {
		pub = notifications.NewNotifier(redisClient)
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("forum-api"),
		featureFlags:   flags,
	}
	s.categories = service.NewCategoryService(categoryRepo, topicRepo, flags,
		time.Duration(cfg.HomeCacheTTLMinutes)*time.Minute)
	s.topics = service.NewTopicService(categoryRepo, topicRepo, postRepo, pub, flags)
	s.posts = service.NewPostService(topicRepo, postRepo, pub, flags)
	s.comments = service.NewCommentService(topicRepo, postRepo, commentRepo, pub, flags)
	s.profiles = service.NewProfileService(profileRepo, topicRepo)
	s.auth = service.NewAuthService(userRepo, cfg.JWTSecret, redisClient)

	return s, nil
}

// NewApp builds the fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	// The profile gate compares paths exactly, so routing must too.
	app := fiber.New(fiber.Config{
		AppName:       "Forum API",
		BodyLimit:     1 * 1024 * 1024,
		CaseSensitive: true,
		ErrorHandler:  errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// errorHandler renders errors that escape handlers, including fiber's own 404/405.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
	return models.RespondWithError(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Identity must be resolved before ContextMiddleware copies userID into the context.
	app.Use(s.IdentityMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes. Fixed prefixes are registered before the
// slug catch-alls so a category can never shadow them.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/api/swagger/*", swagger.HandlerDefault)
	app.Get("/api/monitor", monitor.New(monitor.Config{Title: "Forum Metrics"}))

	app.Get("/", s.Home)

	accounts := app.Group("/accounts")
	accounts.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	accounts.Get("/login", s.LoginForm)
	accounts.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	accounts.Post("/logout", s.Logout)

	profile := accounts.Group("/profile", s.ProfileRequired())
	profile.Get("/create_profile", s.CreateProfileForm)
	profile.Post("/create_profile", s.CreateProfile)
	profile.Get("/update_profile", s.UpdateProfileForm)
	profile.Post("/update_profile", s.UpdateProfile)
	profile.Get("/:profileId", s.GetProfile)
	profile.Get("/", s.MyProfile)

	admin := app.Group("/admin", s.AuthRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Post("/categories", s.CreateCategory)
	admin.Post("/categories/:categorySlug/subcategories", s.CreateSubcategory)
	admin.Delete("/categories/:categorySlug/:subcategorySlug", s.DeleteSubcategory)
	admin.Delete("/categories/:categorySlug", s.DeleteCategory)

	gate := s.ProfileRequired()

	// Specific /:c/:s/... routes before the generic topic route.
	app.Get("/:categorySlug/:subcategorySlug/create_topic", s.SubcategoryRequired(), gate, s.CreateTopicForm)
	app.Post("/:categorySlug/:subcategorySlug/create_topic", s.SubcategoryRequired(), gate, s.CreateTopic)

	topic := app.Group("/:categorySlug/:subcategorySlug/:topicId")
	topic.Post("/update_topic", gate, s.UpdateTopic)
	topic.Post("/create_post", gate, middleware.RateLimit(s.redis, 5, time.Minute, "create_post"), s.CreatePost)
	topic.Get("/delete_topic", gate, s.DeleteTopicConfirm)
	topic.Post("/delete_topic", gate, s.DeleteTopic)
	topic.Post("/:postId/create_comment", gate, middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	topic.Post("/:postId/like", gate, s.LikePost)
	topic.Post("/:postId/unlike", gate, s.UnlikePost)
	topic.Get("/:postId/delete_post", gate, s.DeletePostConfirm)
	topic.Post("/:postId/delete_post", gate, s.DeletePost)
	topic.Get("/:postId/:commentId/delete_comment", gate, s.DeleteCommentConfirm)
	topic.Post("/:postId/:commentId/delete_comment", gate, s.DeleteComment)
	topic.Get("/", s.GetTopic)

	app.Get("/:categorySlug/:subcategorySlug", s.SubcategoryTopics)
	app.Get("/:categorySlug", s.CategoryTopics)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional: the
// forum degrades to uncached operation without it.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start serves on the configured port until the app is shut down.
func (s *Server) Start() error {
	app := s.NewApp()
	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}

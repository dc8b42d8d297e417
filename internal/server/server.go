// Package server implements the development REST API that the remote data
// client talks to.
package server

import (
	"context"
	"time"

	"pingme/internal/config"
	"pingme/internal/middleware"
	"pingme/internal/models"
	"pingme/internal/observability"
	"pingme/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const defaultOrigins = "http://localhost:3000,http://localhost:5173,http://127.0.0.1:3000"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	likeRepo       repository.LikeRepository
}

// NewServer wires the repositories over db and builds the fiber app.
func NewServer(cfg *config.Config, db *gorm.DB) *Server {
	s := &Server{
		config:      cfg,
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		likeRepo:    repository.NewLikeRepository(db),
		// A private registry keeps several servers in one process (tests)
		// from colliding on the default one.
		promMiddleware: fiberprometheus.NewWithRegistry(prometheus.NewRegistry(), "pingme-mockapi", "pingme", "mockapi", nil),
	}

	app := fiber.New(fiber.Config{
		AppName:      "PingMe Mock API",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return s
}

// App returns the configured fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return models.RespondWithError(c, fe.Code, &models.AppError{Code: codeForStatus(fe.Code), Message: fe.Message})
	}
	observability.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(s.promMiddleware.Middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID, traceparent",
		MaxAge:       86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/healthz", s.HealthCheck)
	s.promMiddleware.RegisterAt(app, "/metrics")

	auth := middleware.AuthRequired(s.config.JWTSecret)

	login := []fiber.Handler{s.Login}
	if s.config.LoginRatePerMinute > 0 {
		login = append([]fiber.Handler{middleware.NewRateLimiter(s.config.LoginRatePerMinute).Handler()}, login...)
	}
	app.Post("/auth/login", login...)

	users := app.Group("/users")
	users.Post("/", s.Signup)
	users.Get("/:id", s.GetUser)
	users.Put("/:id", auth, s.UpdateUser)

	posts := app.Group("/postagens")
	posts.Get("/", s.GetPosts)
	// Specific /usuario route before generic /:id
	posts.Get("/usuario/:userId", s.GetUserPosts)
	posts.Get("/:id", s.GetPost)
	posts.Post("/", auth, s.CreatePost)
	posts.Put("/:id", auth, s.UpdatePost)
	posts.Delete("/:id", auth, s.DeletePost)

	comments := app.Group("/comentarios")
	comments.Get("/:postId", s.GetComments)
	comments.Post("/", auth, s.CreateComment)
	comments.Delete("/:id", auth, s.DeleteComment)

	likes := app.Group("/likes")
	likes.Get("/:postId", s.GetLikes)
	likes.Post("/:postId/:userId", auth, s.ToggleLike)
}

// HealthCheck reports whether the database answers.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	status := fiber.StatusOK
	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": dbStatus,
		"time":   time.Now(),
	})
}

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	observability.Logger.Info("mock API starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		observability.Logger.Error("error shutting down HTTP server", "error", err)
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			observability.Logger.Error("error closing sql DB", "error", cerr)
		}
	}
	observability.Logger.Info("mock API shutdown complete")
	return nil
}

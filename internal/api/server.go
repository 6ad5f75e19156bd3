package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"updigital/internal/auth"
	"updigital/internal/config"
	"updigital/internal/services"
	"updigital/internal/sessions"
	"updigital/internal/tasks"
	"updigital/internal/utils/logger"
)

// CustomValidator adapts go-playground/validator to echo.
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Deps carries the collaborators the HTTP layer needs.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Sessions *sessions.Store
	Workflow *auth.Workflow
	Tasks    *tasks.TaskClient
	Storage  *services.S3Service
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	deps   Deps
	log    *logger.Logger
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	s := &Server{
		echo:   e,
		config: cfg,
		deps:   deps,
		log:    logger.New("API"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.log.Info("listening on %s", addr)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	if s.deps.DB != nil {
		sqlDB, err := s.deps.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
		}
	}
	if s.deps.Redis != nil {
		if err := s.deps.Redis.Ping(c.Request().Context()).Err(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "redis unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/akm-xdd/Trackly-core/internal/app"
	"github.com/akm-xdd/Trackly-core/internal/auth"
	"github.com/akm-xdd/Trackly-core/internal/broadcast"
	"github.com/akm-xdd/Trackly-core/internal/config"
	"github.com/akm-xdd/Trackly-core/internal/domain"
)

// ticketStore is the single-use stream ticket contract (internal/redis
// provides the production implementation).
type ticketStore interface {
	Issue(ctx context.Context, identity domain.Identity) (string, error)
	Redeem(ctx context.Context, ticket string) (domain.Identity, error)
}

// postgresPinger is the minimal pgxpool surface the readiness check needs.
type postgresPinger interface {
	Ping(ctx context.Context) error
}

// redisPinger is the minimal go-redis surface the readiness check needs.
type redisPinger interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	service     *app.Service
	broadcaster *broadcast.Broadcaster
	tickets     ticketStore
	tokens      *auth.Tokens
	pg          postgresPinger
	rdb         redisPinger
	limiter     *connectionLimiter
}

func NewServer(
	cfg *config.Config,
	service *app.Service,
	broadcaster *broadcast.Broadcaster,
	tickets ticketStore,
	tokens *auth.Tokens,
	pg postgresPinger,
	rdb redisPinger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(metricsMiddleware())

	srv := &Server{
		echo:        e,
		config:      cfg,
		service:     service,
		broadcaster: broadcaster,
		tickets:     tickets,
		tokens:      tokens,
		pg:          pg,
		rdb:         rdb,
		limiter:     newConnectionLimiter(cfg.MaxStreamConnections),
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

var (
	promOnce       sync.Once
	promMiddleware echo.MiddlewareFunc
)

// metricsMiddleware builds the echoprometheus middleware once per process;
// its collectors live in the global registry and cannot be registered twice.
func metricsMiddleware() echo.MiddlewareFunc {
	promOnce.Do(func() {
		promMiddleware = echoprometheus.NewMiddleware("trackly")
	})
	return promMiddleware
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Package httpapi is the gateway's inbound HTTP surface: an
// github.com/labstack/echo/v4 app exposing /v1/login, /v1/bancho,
// /v1/web/osu-osz2-getscores.php, plus the ambient /healthz and /metrics
// routes. Adapted from the teacher's voice-chat Echo server — same
// middleware shape, same Run(ctx, addr) lifecycle, different routes.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/osu-server/bancho-gateway/internal/backend"
	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/dispatch"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
	"github.com/osu-server/bancho-gateway/internal/login"
	"github.com/osu-server/bancho-gateway/internal/metrics"
	"github.com/osu-server/bancho-gateway/internal/pollapi"
	"github.com/osu-server/bancho-gateway/internal/webapi"

	"log/slog"
)

// Clients bundles the four backend service clients the handlers share.
type Clients struct {
	Users    *backend.UsersClient
	Chats    *backend.ChatsClient
	Beatmaps *backend.BeatmapsClient
	Scores   *backend.ScoresClient
}

// Server is the Echo application.
type Server struct {
	echo     *echo.Echo
	clients  Clients
	registry *dispatch.Registry
	metrics  *metrics.Collectors
	log      *slog.Logger
}

// Config carries the HTTP-layer-specific settings New needs, separate from
// the backend base URLs and timeouts already baked into Clients.
type Config struct {
	LoginRateLimit float64
	LoginRateBurst int
}

// New constructs the Echo app and registers every route.
func New(cfg Config, clients Clients, registry *dispatch.Registry, collectors *metrics.Collectors, log *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(correlationID())
	e.Use(processTime())
	e.Use(requestLogger(log, collectors))
	e.HTTPErrorHandler = banchoErrorHandler(log)

	s := &Server{echo: e, clients: clients, registry: registry, metrics: collectors, log: log}
	s.registerRoutes(cfg)
	return s
}

// Echo exposes the underlying Echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) registerRoutes(cfg Config) {
	loginGroup := s.echo.Group("/v1/login")
	loginGroup.Use(perIPRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst))
	loginGroup.POST("", s.handleLogin)

	s.echo.POST("/v1/bancho", s.handleBancho)
	s.echo.GET("/v1/web/osu-osz2-getscores.php", s.handleWebGetScores)
	s.echo.GET("/healthz", s.handleHealthz)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Run starts Echo and blocks until ctx cancellation or startup failure.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		err := s.echo.Start(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down http server")
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.echo.Shutdown(shutCtx)
		s.log.Info("http server stopped")
		return nil
	}
}

// newContext builds a per-request gatectx.Context, reusing the correlation
// id the correlationID middleware already attached.
func (s *Server) newContext(c echo.Context) *gatectx.Context {
	requestID, _ := c.Get(correlationIDKey).(string)
	return gatectx.New(c.Request().Context(), requestID, s.log,
		s.clients.Users, s.clients.Chats, s.clients.Beatmaps, s.clients.Scores)
}

func (s *Server) handleLogin(c echo.Context) error {
	body, err := bodyBytes(c)
	if err != nil {
		s.log.Warn("login: read body failed", "err", err)
		c.Response().Header().Set("cho-token", "no")
		return c.Blob(http.StatusOK, "application/octet-stream", loginFailureBody)
	}
	req, err := login.Parse(string(body))
	if err != nil {
		c.Response().Header().Set("cho-token", "no")
		return c.Blob(http.StatusOK, "application/octet-stream", loginFailureBody)
	}

	gc := s.newContext(c)
	result := login.Run(gc, req)
	if !result.OK {
		c.Response().Header().Set("cho-token", "no")
		buf := append(result.Buffer, loginFailureBody...)
		return c.Blob(http.StatusOK, "application/octet-stream", buf)
	}

	c.Response().Header().Set("cho-token", result.SessionID)
	return c.Blob(http.StatusOK, "application/octet-stream", result.Buffer)
}

func (s *Server) handleBancho(c echo.Context) error {
	osuToken := c.Request().Header.Get("osu-token")
	body, err := bodyBytes(c)
	if err != nil {
		s.log.Warn("bancho poll: read body failed", "err", err)
		return c.Blob(http.StatusOK, "application/octet-stream", nil)
	}

	gc := s.newContext(c)
	result := pollapi.Run(gc, s.registry, s.metrics, osuToken, body)
	if result.EchoToken {
		c.Response().Header().Set("cho-token", osuToken)
	}
	return c.Blob(http.StatusOK, "application/octet-stream", result.Buffer)
}

func (s *Server) handleWebGetScores(c echo.Context) error {
	req, err := webapi.ParseQuery(c.QueryParams())
	if err != nil {
		return c.String(http.StatusOK, "-1|false")
	}
	gc := s.newContext(c)
	return c.String(http.StatusOK, webapi.Run(gc, req))
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

func bodyBytes(c echo.Context) ([]byte, error) {
	defer c.Request().Body.Close()
	return io.ReadAll(c.Request().Body)
}

const correlationIDKey = "request_id"

// correlationID attaches X-Request-ID to the request context, generating a
// fresh google/uuid v4 when the client omitted it.
func correlationID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(correlationIDKey, id)
			c.Response().Header().Set("X-Request-ID", id)
			return next(c)
		}
	}
}

// processTime sets X-Process-Time on every response, covering the whole
// handler chain rather than each handler setting it individually.
func processTime() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Response().Before(func() {
				c.Response().Header().Set("X-Process-Time", strconv.FormatFloat(time.Since(start).Seconds(), 'f', -1, 64))
			})
			return next(c)
		}
	}
}

// requestLogger logs each HTTP request via slog and records it against the
// request-count and duration collectors.
func requestLogger(log *slog.Logger, collectors *metrics.Collectors) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			duration := time.Since(start)

			log.Info("http request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"duration_ms", duration.Milliseconds(),
				"remote", c.RealIP(),
			)
			if collectors != nil {
				collectors.RequestsTotal.WithLabelValues(req.URL.Path, strconv.Itoa(status)).Inc()
				collectors.RequestDuration.WithLabelValues(req.URL.Path).Observe(duration.Seconds())
			}
			return nil
		}
	}
}

// banchoErrorHandler overrides Echo's default error handler so an error
// reaching Echo renders a small JSON body instead of leaking a stack trace.
// None of the route handlers return an error (every failure path already
// renders a well-formed bancho or leaderboard body), so this path only
// handles the /v1/login rate limiter's 429, unknown routes, and panics
// recovered by middleware.Recover() on any route.
func banchoErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		message := "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		}
		log.Warn("http error", "path", c.Request().URL.Path, "status", code, "err", err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]string{"error": message})
		}
	}
}

// perIPRateLimiter guards /v1/login against brute-force credential
// probing with a golang.org/x/time/rate token bucket per client IP — an
// operational concern every internet-facing login endpoint carries, even
// though it is silent on distilled rate-limiting policy.
func perIPRateLimiter(requestsPerSecond float64, burst int) echo.MiddlewareFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
			limiters[ip] = l
		}
		return l
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiterFor(c.RealIP()).Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

// loginFailureBody is ACCOUNT_ID(-1), the fixed body every failed login
// step renders (§4.6).
var loginFailureBody = codec.WritePacket(codec.ServerAccountID, codec.Int32Body(-1))

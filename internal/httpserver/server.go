package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

var (
	errDBNotConfigured = errors.New("not configured")
	errFeedDown        = errors.New("not listening")
)

// FeedStatus reports whether the change feed holds a live subscription.
type FeedStatus interface {
	Connected() bool
}

// Server owns the HTTP listener and its shutdown.
type Server struct {
	httpServer *http.Server
	logger     logrus.FieldLogger
}

// New builds a Server with every API route.
func New(addr string, logger *logrus.Logger, db *pgxpool.Pool, deps Deps) (*Server, error) {
	router, err := buildRouter(logger, db, deps)
	if err != nil {
		return nil, err
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.WithField("component", "server"),
	}, nil
}

// Run serves until ctx is done, then drains in-flight requests for at most
// shutdownTimeout. A listener failure is returned as is.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln, shutdownTimeout)
}

func (s *Server) serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", ln.Addr().String()).Info("http: listening")
		serveErr <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.WithError(err).Warn("http: graceful shutdown cut short")
		return err
	}
	<-serveErr
	s.logger.Info("http: stopped")
	return nil
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

func dbCheck(db *pgxpool.Pool) readinessCheck {
	return readinessCheck{name: "db", check: func(ctx context.Context) error {
		if db == nil {
			return errDBNotConfigured
		}
		return db.Ping(ctx)
	}}
}

func feedCheck(feed FeedStatus) readinessCheck {
	return readinessCheck{name: "feed", check: func(context.Context) error {
		if !feed.Connected() {
			return errFeedDown
		}
		return nil
	}}
}

// readyHandler answers 200 only when every check passes. Ping errors are not
// echoed to the caller.
func readyHandler(checks ...readinessCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		status, code := "ready", http.StatusOK
		results := make(gin.H, len(checks))
		for _, rc := range checks {
			switch err := rc.check(ctx); {
			case err == nil:
				results[rc.name] = "ok"
			case errors.Is(err, errDBNotConfigured), errors.Is(err, errFeedDown):
				results[rc.name] = err.Error()
				status, code = "unavailable", http.StatusServiceUnavailable
			default:
				results[rc.name] = "unreachable"
				status, code = "unavailable", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{"status": status, "checks": results})
	}
}

package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/denchenko/mrdigest/internal/core/app"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 120 * time.Second
	idleTimeout  = 120 * time.Second
)

// Server represents the local JSON API server.
type Server struct {
	echo *echo.Echo
	addr string
	app  *app.App

	mu       sync.Mutex
	sessions map[string]*app.Session
}

// NewServer creates a new HTTP server.
func NewServer(addr string, appInstance *app.App) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = readTimeout
	e.Server.WriteTimeout = writeTimeout
	e.Server.IdleTimeout = idleTimeout
	e.HTTPErrorHandler = errorHandler(e)

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")

			return nil
		},
	}))

	s := &Server{
		echo:     e,
		addr:     addr,
		app:      appInstance,
		sessions: make(map[string]*app.Session),
	}

	api := e.Group("/api")
	api.GET("/user", s.handleCurrentUser)
	api.GET("/projects", s.handleListProjects)
	api.GET("/projects/:project/merge_requests", s.handleListMergeRequests)
	api.GET("/projects/:project/merge_requests/:iid/discussions", s.handleDiscussions)
	api.GET("/projects/:project/merge_requests/:iid/discussions/:id", s.handleDiscussion)
	api.GET("/projects/:project/merge_requests/:iid/discussions/:id/context", s.handleFileWindow)
	api.GET("/projects/:project/merge_requests/:iid/notes", s.handleNotes)
	api.GET("/projects/:project/merge_requests/:iid/state_events", s.handleStateEvents)
	api.POST("/projects/:project/merge_requests/:iid/best_practices", s.handleBestPractices)

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Info().Str("addr", s.addr).Msg("starting server")

	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

// ServeHTTP lets the server be mounted or driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// session returns the session for one merge request, creating it on first use.
func (s *Server) session(projectPath string, iid int) *app.Session {
	key := projectPath + "!" + strconv.Itoa(iid)

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[key]
	if !ok {
		session = s.app.NewSession(projectPath)
		s.sessions[key] = session
	}

	return session
}

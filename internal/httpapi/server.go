// Package httpapi serves the tutor over HTTP for the web front end.
//
// The protocol is stateless: every POST /chat carries the whole history and
// the conversation is rebuilt for each request.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/petasbytes/mathtutor/internal"
	"github.com/petasbytes/mathtutor/internal/runner"
	"github.com/petasbytes/mathtutor/memory"
	"github.com/petasbytes/mathtutor/tools"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP adapter. ProviderConnected reports whether the tool
// registry was populated at startup.
type Server struct {
	Runner            *runner.Runner
	Tools             *tools.Registry
	SystemPrompt      string
	ProviderConnected bool

	e *echo.Echo
}

func New(r *runner.Runner, reg *tools.Registry, systemPrompt string, connected bool, allowedOrigins []string) *Server {
	s := &Server{Runner: r, Tools: reg, SystemPrompt: systemPrompt, ProviderConnected: connected}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l := internal.Logger(c.Request().Context())
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			l.Log(c.Request().Context(), level, "http", "method", v.Method, "uri", v.URI, "status", v.Status, "dur", v.Latency, "err", v.Error)
			return nil
		},
	}))
	e.POST("/chat", s.Chat)
	e.GET("/health", s.Health)
	s.e = e
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Start serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.e.Start(addr)
	}()
	internal.Logger(ctx).Info("http listening", "addr", addr)
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type healthResponse struct {
	Status            string `json:"status"`
	ProviderConnected bool   `json:"tool_provider_connected"`
	ToolCount         int    `json:"tool_count"`
}

// Chat runs one turn on the posted history and answers with the reply.
func (s *Server) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Detail: "invalid request body"})
	}
	if len(req.Messages) == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Detail: "messages must not be empty"})
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != string(memory.RoleUser) || strings.TrimSpace(last.Content) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Detail: "the last message must be a non-empty user message"})
	}
	history := make([]memory.Message, 0, len(req.Messages)-1)
	for _, m := range req.Messages[:len(req.Messages)-1] {
		history = append(history, memory.Message{Role: memory.Role(m.Role), Content: m.Content})
	}
	conv, err := memory.FromHistory(s.SystemPrompt, history)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
	}

	answer, err := s.Runner.RunTurn(c.Request().Context(), conv, last.Content)
	if err != nil {
		internal.Logger(c.Request().Context()).Error("chat turn failed", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Detail: "Error procesando el mensaje: " + err.Error()})
	}
	return c.JSON(http.StatusOK, chatResponse{Message: answer})
}

func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:            "ok",
		ProviderConnected: s.ProviderConnected,
		ToolCount:         s.Tools.Len(),
	})
}

// Package server provides the HTTP API for searchd.
//
// Storage failures are mapped to generic 500 bodies; detail is logged
// server-side and never returned to the caller. Malformed or trivial
// search input is an empty result list, never an error.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/solosuccess/searchd/internal/indexer"
	"github.com/solosuccess/searchd/internal/search"
	"github.com/solosuccess/searchd/internal/store"
)

// Server wires the indexer and query service behind echo.
type Server struct {
	echo    *echo.Echo
	indexer *indexer.Indexer
	service *search.Service
	store   store.Store
	logger  *slog.Logger
	config  *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// New creates the HTTP server.
func New(idx *indexer.Indexer, svc *search.Service, st store.Store, resolver Resolver, logger *slog.Logger, cfg *Config) (*Server, error) {
	if idx == nil {
		return nil, fmt.Errorf("indexer is required")
	}
	if svc == nil {
		return nil, fmt.Errorf("search service is required")
	}
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 8790}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				slog.String("method", c.Request().Method),
				slog.String("uri", c.Request().RequestURI),
				slog.Int("status", c.Response().Status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				slog.String("user_id", requestUserID(c)),
			)

			return err
		}
	})

	s := &Server{
		echo:    e,
		indexer: idx,
		service: svc,
		store:   st,
		logger:  logger,
		config:  cfg,
	}

	s.registerRoutes(resolver)

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes(resolver Resolver) {
	s.echo.GET("/health", s.handleHealth)

	g := s.echo.Group("/search", authMiddleware(resolver))
	g.POST("", s.handleSearch)
	g.POST("/index", s.handleIndex)
	g.DELETE("/index", s.handleRemove)
	g.GET("/stats", s.handleStats)
}

// searchRequest is the body for POST /search. Query is deliberately
// untyped: anything that is not a string is coerced to empty at this
// boundary, so malformed shapes never reach the query service.
type searchRequest struct {
	Query any `json:"query"`
}

// indexRequest is the body for POST /search/index.
type indexRequest struct {
	Type    string   `json:"type"`
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// removeRequest is the body for DELETE /search/index.
type removeRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type successBody struct {
	Success bool `json:"success"`
}

type errorBody struct {
	Error string `json:"error"`
}

type statsBody struct {
	Count int `json:"count"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleSearch executes a ranked search for the authenticated user.
//
// The query comes from ?q= or the JSON body's "query" field. Non-string
// and sub-minimum queries return 200 with an empty array, never an error.
func (s *Server) handleSearch(c echo.Context) error {
	userID := requestUserID(c)

	query := c.QueryParam("q")
	if query == "" {
		var req searchRequest
		// A malformed body is treated the same as a missing query
		if err := c.Bind(&req); err == nil {
			if str, ok := req.Query.(string); ok {
				query = str
			}
		}
	}

	results, err := s.service.Search(c.Request().Context(), userID, query)
	if err != nil {
		s.logger.Error("search failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "Search failed"})
	}

	return c.JSON(http.StatusOK, results)
}

// handleIndex upserts one entity into the index.
func (s *Server) handleIndex(c echo.Context) error {
	userID := requestUserID(c)

	var req indexRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid request body"})
	}
	if req.Type == "" || req.ID == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "type and id are required"})
	}

	err := s.indexer.IndexEntity(c.Request().Context(), userID,
		store.EntityType(req.Type), req.ID, req.Title, req.Content, req.Tags)
	if err != nil {
		s.logger.Error("indexing failed",
			slog.String("user_id", userID),
			slog.String("entity_type", req.Type),
			slog.String("entity_id", req.ID),
			slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "Indexing failed"})
	}

	return c.JSON(http.StatusOK, successBody{Success: true})
}

// handleRemove deletes one entity from the index.
func (s *Server) handleRemove(c echo.Context) error {
	userID := requestUserID(c)

	var req removeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid request body"})
	}
	if req.Type == "" || req.ID == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "type and id are required"})
	}

	err := s.indexer.RemoveFromIndex(c.Request().Context(), userID,
		store.EntityType(req.Type), req.ID)
	if err != nil {
		s.logger.Error("index removal failed",
			slog.String("user_id", userID),
			slog.String("entity_type", req.Type),
			slog.String("entity_id", req.ID),
			slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "Remove failed"})
	}

	return c.JSON(http.StatusOK, successBody{Success: true})
}

// handleStats reports how many entries the authenticated user has indexed.
func (s *Server) handleStats(c echo.Context) error {
	userID := requestUserID(c)

	count, err := s.store.Count(c.Request().Context(), userID)
	if err != nil {
		s.logger.Error("stats failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "Stats failed"})
	}

	return c.JSON(http.StatusOK, statsBody{Count: count})
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", slog.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

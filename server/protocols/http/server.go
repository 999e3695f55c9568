package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/bridge"
	"github.com/gear6io/quackview/server/config"
	"github.com/gear6io/quackview/server/metrics"
	"github.com/gear6io/quackview/server/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"
)

// ComponentType defines the HTTP server component type identifier
const ComponentType = "http-server"

// APIPrefix is the mount point of the JSON API
const APIPrefix = "/api/v1"

// StatusProvider is implemented by façades that can report their state
type StatusProvider interface {
	State() service.State
	DatabasePath() string
}

// Server serves the façade over HTTP
type Server struct {
	cfg    *config.Config
	facade service.Facade
	logger zerolog.Logger
	app    *fiber.App
	wg     sync.WaitGroup
}

// NewServer creates a new HTTP server instance with all routes mounted
func NewServer(cfg *config.Config, facade service.Facade, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		facade: facade,
		logger: logger.With().Str("component", ComponentType).Logger(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "quackview",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(s.observe)
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := s.app.Group(APIPrefix)
	api.Post("/initialize", s.handleInitialize)
	api.Post("/import", s.handleImport)
	api.Post("/query", s.handleQuery)
	api.Get("/tables", s.handleTables)
	api.Get("/indices", s.handleIndices)
	api.Post("/indices", s.handleCreateIndex)
	api.Get("/info", s.handleInfo)
	api.Get("/queries", s.handleQueries)

	return s
}

// App exposes the fiber application, mainly for app.Test
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts listening in the background
func (s *Server) Start(ctx context.Context) error {
	if !s.cfg.HTTP.Enabled {
		s.logger.Info().Msg("HTTP server is disabled")
		return nil
	}

	addr := s.cfg.GetHTTPListenAddress()
	s.logger.Info().Str("address", addr).Msg("Starting HTTP server")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.app.Listen(addr); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping HTTP server")

	if err := s.app.ShutdownWithTimeout(30 * time.Second); err != nil {
		s.logger.Error().Err(err).Msg("Error during HTTP server shutdown")
	}

	s.wg.Wait()
	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// ImportRequest is the body of POST /api/v1/import
type ImportRequest struct {
	Path  string `json:"path"`
	Table string `json:"table,omitempty"`
}

// QueryRequest is the body of POST /api/v1/query
type QueryRequest struct {
	Query string `json:"query"`
}

// IndexRequest is the body of POST /api/v1/indices
type IndexRequest struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// ErrorBody is the payload of every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the coded error
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) requestContext(c *fiber.Ctx) context.Context {
	return service.WithClientAddr(c.UserContext(), c.IP())
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	health := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"server":    "quackview-http",
	}
	if sp, ok := s.facade.(StatusProvider); ok {
		health["state"] = sp.State().String()
	}
	return c.JSON(health)
}

func (s *Server) handleInitialize(c *fiber.Ctx) error {
	if err := s.facade.Initialize(s.requestContext(c)); err != nil {
		return err
	}

	resp := fiber.Map{"initialized": true}
	if sp, ok := s.facade.(StatusProvider); ok {
		resp["state"] = sp.State().String()
		resp["databasePath"] = sp.DatabasePath()
	}
	return c.JSON(resp)
}

func (s *Server) handleImport(c *fiber.Ctx) error {
	var req ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.New(errors.CommonInvalidInput, "invalid request body", err)
	}
	if req.Path == "" {
		return errors.New(errors.CommonValidation, "path is required", nil)
	}
	if req.Table == "" {
		req.Table = bridge.TableNameFromPath(req.Path)
	}

	ok, err := s.facade.ImportFile(s.requestContext(c), req.Path, req.Table)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": ok, "table": req.Table})
}

func (s *Server) handleQuery(c *fiber.Ctx) error {
	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.New(errors.CommonInvalidInput, "invalid request body", err)
	}

	result, err := s.facade.ExecuteQuery(s.requestContext(c), req.Query)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (s *Server) handleTables(c *fiber.Ctx) error {
	tables, err := s.facade.ListTables(s.requestContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tables": tables})
}

func (s *Server) handleIndices(c *fiber.Ctx) error {
	indices, err := s.facade.ListIndices(s.requestContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"indices": indices})
}

func (s *Server) handleCreateIndex(c *fiber.Ctx) error {
	var req IndexRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.New(errors.CommonInvalidInput, "invalid request body", err)
	}
	if req.Table == "" || req.Column == "" {
		return errors.New(errors.CommonValidation, "table and column are required", nil)
	}

	ok, err := s.facade.CreateIndex(s.requestContext(c), req.Table, req.Column)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":   ok,
		"indexName": bridge.IndexName(req.Table, req.Column),
	})
}

func (s *Server) handleInfo(c *fiber.Ctx) error {
	info, err := s.facade.Info(s.requestContext(c))
	if err != nil {
		return err
	}
	return c.JSON(info)
}

func (s *Server) handleQueries(c *fiber.Ctx) error {
	queries, err := s.facade.QueryHistory(s.requestContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"queries": queries})
}

// handleError renders every returned error as an ErrorBody
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)

	code := errors.GetCode(err)
	if fe, ok := err.(*fiber.Error); ok {
		status = fe.Code
		code = errors.CommonNotFound.String()
		if fe.Code != http.StatusNotFound {
			code = errors.CommonInvalidInput.String()
		}
	}
	if code == "" {
		code = errors.CommonInternal.String()
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}

	return c.Status(status).JSON(ErrorBody{Error: ErrorDetail{Code: code, Message: err.Error()}})
}

// StatusFor maps the façade taxonomy to HTTP status codes
func StatusFor(err error) int {
	switch {
	case service.IsNotInitializedError(err):
		return http.StatusConflict
	case service.IsImportError(err), service.IsIndexError(err):
		return http.StatusUnprocessableEntity
	case service.IsQueryError(err):
		return http.StatusBadRequest
	case errors.HasCode(err, errors.CommonValidation), errors.HasCode(err, errors.CommonInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) observe(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = StatusFor(err)
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
	}

	route := c.Route().Path
	metrics.ObserveRequest(c.Method(), route, status, time.Since(start))
	return err
}

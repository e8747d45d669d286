package api

import (
	"context"
	"time"

	"github.com/denzelpenzel/skillswap/internal/config"
	"github.com/denzelpenzel/skillswap/internal/services"
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const serviceName = "skillswap-api"

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the API server
type Server struct {
	config         *config.Config
	logger         *zap.Logger
	authService    *services.AuthService
	userService    *services.UserService
	skillService   *services.SkillService
	requestService *services.RequestService
	db             Pinger
	router         *router.Router
	server         *fasthttp.Server
}

// NewServer creates a new API server
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	authService *services.AuthService,
	userService *services.UserService,
	skillService *services.SkillService,
	requestService *services.RequestService,
	db Pinger,
) *Server {
	s := &Server{
		config:         cfg,
		logger:         logger,
		authService:    authService,
		userService:    userService,
		skillService:   skillService,
		requestService: requestService,
		db:             db,
		router:         router.New(),
	}

	s.setupRoutes()
	s.setupServer()

	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.SaveMatchedRoutePath = true
	s.router.GlobalOPTIONS = s.withMiddleware(s.corsHandler)
	s.router.NotFound = s.withMiddleware(s.notFoundHandler)
	s.router.MethodNotAllowed = s.withMiddleware(s.methodNotAllowedHandler)

	// Public routes (no authentication required)
	s.router.POST("/api/auth/register", s.withMiddleware(s.registerHandler))
	s.router.POST("/api/auth/login", s.withMiddleware(s.loginHandler))
	s.router.GET("/api/skills", s.withMiddleware(s.listSkillsHandler))
	s.router.GET("/api/categories", s.withMiddleware(s.listCategoriesHandler))

	// Protected routes (authentication required)
	s.router.GET("/api/skills/my", s.withMiddleware(s.authMiddleware(s.mySkillsHandler)))
	s.router.POST("/api/skills", s.withMiddleware(s.authMiddleware(s.createSkillHandler)))
	s.router.PUT("/api/skills/{id}", s.withMiddleware(s.authMiddleware(s.updateSkillHandler)))
	s.router.DELETE("/api/skills/{id}", s.withMiddleware(s.authMiddleware(s.deleteSkillHandler)))

	s.router.POST("/api/requests", s.withMiddleware(s.authMiddleware(s.createRequestHandler)))
	s.router.GET("/api/requests/received", s.withMiddleware(s.authMiddleware(s.receivedRequestsHandler)))
	s.router.GET("/api/requests/sent", s.withMiddleware(s.authMiddleware(s.sentRequestsHandler)))
	s.router.PUT("/api/requests/{id}/status", s.withMiddleware(s.authMiddleware(s.updateRequestStatusHandler)))
	s.router.GET("/api/requests/{id}/history", s.withMiddleware(s.authMiddleware(s.requestHistoryHandler)))

	s.router.GET("/api/profile", s.withMiddleware(s.authMiddleware(s.getProfileHandler)))
	s.router.PUT("/api/profile", s.withMiddleware(s.authMiddleware(s.updateProfileHandler)))

	// Operational endpoints
	s.router.GET("/api/health", s.withMiddleware(s.healthHandler))
	s.router.GET("/metrics", metricsHandler())
}

// setupServer configures the FastHTTP server
func (s *Server) setupServer() {
	s.server = &fasthttp.Server{
		Handler:                       s.router.Handler,
		Name:                          "SkillSwap-API",
		ReadTimeout:                   10 * time.Second,
		WriteTimeout:                  10 * time.Second,
		IdleTimeout:                   60 * time.Second,
		MaxRequestBodySize:            1024 * 1024, // 1MB
		DisableHeaderNamesNormalizing: true,
		NoDefaultServerHeader:         true,
		NoDefaultDate:                 true,
		NoDefaultContentType:          true,
	}
}

// Handler returns the root request handler
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.server.Handler
}

// Start starts the API server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting API server",
		zap.String("address", s.config.Server.Address),
		zap.String("environment", s.config.Server.Environment))

	return s.server.ListenAndServe(s.config.Server.Address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.ShutdownWithContext(ctx)
}

// withMiddleware wraps handlers with common middleware
func (s *Server) withMiddleware(handler fasthttp.RequestHandler) fasthttp.RequestHandler {
	return s.loggingMiddleware(
		s.securityMiddleware(handler),
	)
}

// corsHandler handles CORS preflight requests
func (s *Server) corsHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

// setCORSHeaders allows any origin to call the API with a bearer token
func (s *Server) setCORSHeaders(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	ctx.Response.Header.Set("Access-Control-Max-Age", "86400")
}

func (s *Server) notFoundHandler(ctx *fasthttp.RequestCtx) {
	s.sendErrorResponse(ctx, fasthttp.StatusNotFound, "Route not found")
}

func (s *Server) methodNotAllowedHandler(ctx *fasthttp.RequestCtx) {
	s.sendErrorResponse(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
}

// healthHandler reports liveness together with database reachability
func (s *Server) healthHandler(ctx *fasthttp.RequestCtx) {
	status, code := "healthy", fasthttp.StatusOK

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.Ping(pingCtx); err != nil {
		s.logger.Warn("Health check database ping failed", zap.Error(err))
		status, code = "unhealthy", fasthttp.StatusServiceUnavailable
	}

	s.sendJSONResponse(ctx, code, healthResponse{
		Status:    status,
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

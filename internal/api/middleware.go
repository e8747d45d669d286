package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/denzelpenzel/skillswap/internal/models"
	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	userIDKey    = "user_id"
	usernameKey  = "username"
	requestIDKey = "request_id"

	requestIDHeader = "X-Request-ID"
)

// loggingMiddleware logs HTTP requests (security-focused, no sensitive data)
// and records request metrics under the matched route pattern
func (s *Server) loggingMiddleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()

		requestID := string(ctx.Request.Header.Peek(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.SetUserValue(requestIDKey, requestID)
		ctx.Response.Header.Set(requestIDHeader, requestID)

		// Call next handler
		next(ctx)

		duration := time.Since(start)
		method := string(ctx.Method())
		route := matchedRoute(ctx)
		status := ctx.Response.StatusCode()

		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())

		s.logger.Info("HTTP request",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("user_agent", string(ctx.UserAgent())),
		)
	}
}

// matchedRoute returns the route pattern that served ctx so metric labels
// stay bounded
func matchedRoute(ctx *fasthttp.RequestCtx) string {
	if route, ok := ctx.UserValue(router.MatchedRoutePathParam).(string); ok && route != "" {
		return route
	}
	return "unmatched"
}

// securityMiddleware adds security and CORS headers
func (s *Server) securityMiddleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		// Security headers
		ctx.Response.Header.Set("X-Content-Type-Options", "nosniff")
		ctx.Response.Header.Set("X-Frame-Options", "DENY")
		ctx.Response.Header.Set("X-XSS-Protection", "1; mode=block")
		ctx.Response.Header.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		ctx.Response.Header.Set("Content-Security-Policy", "default-src 'self'")
		ctx.Response.Header.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		s.setCORSHeaders(ctx)

		// Remove server information
		ctx.Response.Header.Del("Server")

		next(ctx)
	}
}

// authMiddleware validates session tokens. A missing token is 401, a
// token that fails verification is 403.
func (s *Server) authMiddleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		token, ok := bearerTokenFromHeader(string(ctx.Request.Header.Peek("Authorization")))
		if !ok {
			s.sendErrorResponse(ctx, fasthttp.StatusUnauthorized, "Access token required")
			return
		}

		claims, err := s.authService.ValidateToken(token)
		if err != nil {
			s.logger.Debug("Rejected session token", zap.Error(err))
			s.sendErrorResponse(ctx, fasthttp.StatusForbidden, "Invalid or expired token")
			return
		}

		// Store user info in context for handlers to use
		ctx.SetUserValue(userIDKey, claims.UserID)
		ctx.SetUserValue(usernameKey, claims.Username)

		next(ctx)
	}
}

// bearerTokenFromHeader extracts the token of a "Bearer <token>" header. The
// scheme is matched case-insensitively.
func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}

// currentUserID returns the authenticated user set by authMiddleware
func currentUserID(ctx *fasthttp.RequestCtx) int64 {
	userID, _ := ctx.UserValue(userIDKey).(int64)
	return userID
}

// pathID parses the numeric {id} route parameter
func pathID(ctx *fasthttp.RequestCtx) (int64, error) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", models.ErrValidation)
	}
	return id, nil
}

// writeError maps a domain error onto a status code. Unknown errors are
// logged and reported as a generic 500.
func (s *Server) writeError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrSelfRequest),
		errors.Is(err, models.ErrInvalidTransition):
		s.sendErrorResponse(ctx, fasthttp.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		s.sendErrorResponse(ctx, fasthttp.StatusUnauthorized, models.ErrInvalidCredentials.Error())
	case errors.Is(err, models.ErrUnauthenticated):
		s.sendErrorResponse(ctx, fasthttp.StatusForbidden, "Invalid or expired token")
	case errors.Is(err, models.ErrNotFoundOrForbidden),
		errors.Is(err, models.ErrNotFound):
		s.sendErrorResponse(ctx, fasthttp.StatusNotFound, err.Error())
	default:
		s.logger.Error("Request failed",
			zap.Error(err),
			zap.Any("request_id", ctx.UserValue(requestIDKey)),
			zap.String("path", string(ctx.Path())))
		s.sendErrorResponse(ctx, fasthttp.StatusInternalServerError, "Internal server error")
	}
}

// sendErrorResponse sends a JSON error response
func (s *Server) sendErrorResponse(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	s.sendJSONResponse(ctx, statusCode, errorResponse{
		Error:     true,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// sendJSONResponse sends data as the JSON response body
func (s *Server) sendJSONResponse(ctx *fasthttp.RequestCtx, statusCode int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("Failed to marshal response", zap.Error(err))
		ctx.SetContentType("application/json")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"error":true,"message":"Internal server error"}`)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(statusCode)
	ctx.SetBody(jsonData)
}

// parseJSONBody parses JSON request body
func (s *Server) parseJSONBody(ctx *fasthttp.RequestCtx, dest any) error {
	if !ctx.IsPost() && !ctx.IsPut() {
		return fmt.Errorf("%w: method not allowed", models.ErrValidation)
	}

	contentType := string(ctx.Request.Header.ContentType())
	if !strings.Contains(contentType, "application/json") {
		return fmt.Errorf("%w: content-type must be application/json", models.ErrValidation)
	}

	body := ctx.PostBody()
	if len(body) == 0 {
		return fmt.Errorf("%w: request body is empty", models.ErrValidation)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", models.ErrValidation, err)
	}

	return nil
}

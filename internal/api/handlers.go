package api

import (
	"github.com/denzelpenzel/skillswap/internal/models"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// registerHandler handles user registration
func (s *Server) registerHandler(ctx *fasthttp.RequestCtx) {
	var req models.UserRegistration
	if err := s.parseJSONBody(ctx, &req); err != nil {
		s.writeError(ctx, err)
		return
	}

	user, err := s.userService.Register(ctx, req)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	s.sendAuthResponse(ctx, fasthttp.StatusCreated, "User registered successfully", user)
}

// loginHandler handles user login by username or email
func (s *Server) loginHandler(ctx *fasthttp.RequestCtx) {
	var req models.UserLogin
	if err := s.parseJSONBody(ctx, &req); err != nil {
		s.writeError(ctx, err)
		return
	}

	user, err := s.userService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	s.sendAuthResponse(ctx, fasthttp.StatusOK, "Login successful", user)
}

func (s *Server) sendAuthResponse(ctx *fasthttp.RequestCtx, statusCode int, message string, user *models.User) {
	token, err := s.authService.GenerateToken(user)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		s.sendErrorResponse(ctx, fasthttp.StatusInternalServerError, "Internal server error")
		return
	}

	s.sendJSONResponse(ctx, statusCode, models.AuthResponse{
		Message: message,
		Token:   token,
		User:    user.ToResponse(),
	})
}

// getProfileHandler returns the caller's own account
func (s *Server) getProfileHandler(ctx *fasthttp.RequestCtx) {
	user, err := s.userService.GetProfile(ctx, currentUserID(ctx))
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	s.sendJSONResponse(ctx, fasthttp.StatusOK, user.ToResponse())
}

// updateProfileHandler applies a partial profile update
func (s *Server) updateProfileHandler(ctx *fasthttp.RequestCtx) {
	var upd models.ProfileUpdate
	if err := s.parseJSONBody(ctx, &upd); err != nil {
		s.writeError(ctx, err)
		return
	}

	if err := s.userService.UpdateProfile(ctx, currentUserID(ctx), upd); err != nil {
		s.writeError(ctx, err)
		return
	}

	s.sendJSONResponse(ctx, fasthttp.StatusOK, messageResponse{Message: "Profile updated successfully"})
}

// listCategoriesHandler returns the distinct categories across all skills
func (s *Server) listCategoriesHandler(ctx *fasthttp.RequestCtx) {
	categories, err := s.skillService.ListCategories(ctx)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	s.sendJSONResponse(ctx, fasthttp.StatusOK, categories)
}

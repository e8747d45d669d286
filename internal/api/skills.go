package api

import (
	"github.com/denzelpenzel/skillswap/internal/models"
	"github.com/valyala/fasthttp"
)

// listSkillsHandler serves the public catalog, filtered by the optional
// category and search query parameters
func (s *Server) listSkillsHandler(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	skills, err := s.skillService.ListAvailable(ctx, models.SkillFilter{
		Category: string(args.Peek("category")),
		Search:   string(args.Peek("search")),
	})
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	s.sendJSONResponse(ctx, fasthttp.StatusOK, skills)
}

func (s *Server) mySkillsHandler(ctx *fasthttp.RequestCtx) {
	skills, err := s.skillService.ListOwned(ctx, currentUserID(ctx))
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	s.sendJSONResponse(ctx, fasthttp.StatusOK, skills)
}

func (s *Server) createSkillHandler(ctx *fasthttp.RequestCtx) {
	var req models.CreateSkillRequest
	if err := s.parseJSONBody(ctx, &req); err != nil {
		s.writeError(ctx, err)
		return
	}

	skill, err := s.skillService.Create(ctx, currentUserID(ctx), req)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	s.sendJSONResponse(ctx, fasthttp.StatusCreated, skillCreatedResponse{
		Message: "Skill created successfully",
		Skill:   skill,
	})
}

func (s *Server) updateSkillHandler(ctx *fasthttp.RequestCtx) {
	skillID, err := pathID(ctx)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	var upd models.SkillUpdate
	if err := s.parseJSONBody(ctx, &upd); err != nil {
		s.writeError(ctx, err)
		return
	}

	if err := s.skillService.Update(ctx, skillID, currentUserID(ctx), upd); err != nil {
		s.writeError(ctx, err)
		return
	}

	s.sendJSONResponse(ctx, fasthttp.StatusOK, messageResponse{Message: "Skill updated successfully"})
}

func (s *Server) deleteSkillHandler(ctx *fasthttp.RequestCtx) {
	skillID, err := pathID(ctx)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	if err := s.skillService.Remove(ctx, skillID, currentUserID(ctx)); err != nil {
		s.writeError(ctx, err)
		return
	}

	s.sendJSONResponse(ctx, fasthttp.StatusOK, messageResponse{Message: "Skill deleted successfully"})
}

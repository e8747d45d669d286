package api

import (
	"github.com/denzelpenzel/skillswap/internal/models"
	"github.com/valyala/fasthttp"
)

func (s *Server) createRequestHandler(ctx *fasthttp.RequestCtx) {
	var in models.CreateRequestInput
	if err := s.parseJSONBody(ctx, &in); err != nil {
		s.writeError(ctx, err)
		return
	}

	request, err := s.requestService.Create(ctx, currentUserID(ctx), in)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	requestTransitionsTotal.WithLabelValues(string(models.StatusPending)).Inc()
	s.sendJSONResponse(ctx, fasthttp.StatusCreated, requestCreatedResponse{
		Message: "Request sent successfully",
		Request: request,
	})
}

func (s *Server) receivedRequestsHandler(ctx *fasthttp.RequestCtx) {
	requests, err := s.requestService.ListReceived(ctx, currentUserID(ctx))
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	s.sendJSONResponse(ctx, fasthttp.StatusOK, requests)
}

func (s *Server) sentRequestsHandler(ctx *fasthttp.RequestCtx) {
	requests, err := s.requestService.ListSent(ctx, currentUserID(ctx))
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	s.sendJSONResponse(ctx, fasthttp.StatusOK, requests)
}

// updateRequestStatusHandler lets the skill owner accept, reject or
// complete a request
func (s *Server) updateRequestStatusHandler(ctx *fasthttp.RequestCtx) {
	requestID, err := pathID(ctx)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	var upd models.StatusUpdate
	if err := s.parseJSONBody(ctx, &upd); err != nil {
		s.writeError(ctx, err)
		return
	}

	request, err := s.requestService.UpdateStatus(ctx, requestID, currentUserID(ctx), upd.Status)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	requestTransitionsTotal.WithLabelValues(string(request.Status)).Inc()
	s.sendJSONResponse(ctx, fasthttp.StatusOK, messageResponse{Message: "Request status updated successfully"})
}

func (s *Server) requestHistoryHandler(ctx *fasthttp.RequestCtx) {
	requestID, err := pathID(ctx)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	history, err := s.requestService.History(ctx, requestID, currentUserID(ctx))
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	s.sendJSONResponse(ctx, fasthttp.StatusOK, history)
}

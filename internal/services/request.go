package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/denzelpenzel/skillswap/internal/models"
	"go.uber.org/zap"
)

// RequestService drives the skill request lifecycle:
//
//	pending -> accepted -> completed
//	pending -> rejected
//
// Only the skill owner moves a request; the requester never mutates it after
// creation. Sibling requests against the same skill are independent.
type RequestService struct {
	store  RequestStore
	skills SkillLookup
	logger *zap.Logger
}

// NewRequestService creates a new request service
func NewRequestService(store RequestStore, skills SkillLookup, logger *zap.Logger) *RequestService {
	return &RequestService{
		store:  store,
		skills: skills,
		logger: logger,
	}
}

// Create files a pending request from requesterID against a listing,
// snapshotting the listing's current name. Availability is not rechecked.
func (s *RequestService) Create(ctx context.Context, requesterID int64, in models.CreateRequestInput) (*models.SkillRequest, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}

	skill, err := s.skills.GetSkillByID(ctx, in.SkillID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("skill %w", err)
		}
		return nil, err
	}

	if skill.UserID == requesterID {
		return nil, models.ErrSelfRequest
	}

	request, err := s.store.CreateRequest(ctx, models.CreateRequestParams{
		RequesterID:    requesterID,
		SkillOwnerID:   skill.UserID,
		SkillID:        skill.ID,
		RequestedSkill: skill.Name,
		OfferedSkill:   in.OfferedSkill,
		Message:        in.Message,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Skill request created",
		zap.Int64("request_id", request.ID),
		zap.Int64("skill_id", skill.ID),
		zap.Int64("requester_id", requesterID))

	return request, nil
}

// ListReceived returns requests addressed to ownerID
func (s *RequestService) ListReceived(ctx context.Context, ownerID int64) ([]*models.SkillRequest, error) {
	return s.store.ListReceivedRequests(ctx, ownerID)
}

// ListSent returns requests made by requesterID
func (s *RequestService) ListSent(ctx context.Context, requesterID int64) ([]*models.SkillRequest, error) {
	return s.store.ListSentRequests(ctx, requesterID)
}

// UpdateStatus moves a request to status on behalf of its skill owner.
// Non-owners get models.ErrNotFoundOrForbidden; edges outside the lifecycle
// get models.ErrInvalidTransition.
func (s *RequestService) UpdateStatus(ctx context.Context, requestID, ownerID int64, status models.RequestStatus) (*models.SkillRequest, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status must be one of: pending, accepted, rejected, completed", models.ErrValidation)
	}

	request, err := s.store.TransitionStatus(ctx, models.StatusTransition{
		RequestID:   requestID,
		OwnerID:     ownerID,
		To:          status,
		AllowedFrom: status.AllowedFrom(),
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFoundOrForbidden) {
			return nil, fmt.Errorf("request %w", err)
		}
		return nil, err
	}

	s.logger.Info("Skill request status changed",
		zap.Int64("request_id", requestID),
		zap.String("status", string(status)))

	return request, nil
}

// History returns the status changes of a request visible to userID
func (s *RequestService) History(ctx context.Context, requestID, userID int64) ([]*models.StatusChange, error) {
	history, err := s.store.ListStatusHistory(ctx, requestID, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFoundOrForbidden) {
			return nil, fmt.Errorf("request %w", err)
		}
		return nil, err
	}
	return history, nil
}

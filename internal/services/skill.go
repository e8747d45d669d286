package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/denzelpenzel/skillswap/internal/models"
	"go.uber.org/zap"
)

// SkillService handles the skill catalog and its category index
type SkillService struct {
	store  SkillStore
	cache  CategoryCache
	logger *zap.Logger
}

// NewSkillService creates a new skill service. cache may be nil.
func NewSkillService(store SkillStore, cache CategoryCache, logger *zap.Logger) *SkillService {
	return &SkillService{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// ListAvailable returns the public catalog, optionally filtered
func (s *SkillService) ListAvailable(ctx context.Context, filter models.SkillFilter) ([]*models.CatalogSkill, error) {
	return s.store.ListAvailableSkills(ctx, filter)
}

// ListOwned returns every listing of userID, available or not
func (s *SkillService) ListOwned(ctx context.Context, userID int64) ([]*models.Skill, error) {
	return s.store.ListSkillsByOwner(ctx, userID)
}

// Create adds a listing owned by userID
func (s *SkillService) Create(ctx context.Context, userID int64, req models.CreateSkillRequest) (*models.Skill, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	skill, err := s.store.CreateSkill(ctx, models.CreateSkillParams{
		UserID:           userID,
		Name:             req.Name,
		Description:      req.Description,
		ProficiencyLevel: req.ProficiencyLevel,
		Category:         req.Category,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCategories(ctx)
	s.logger.Info("Skill created", zap.Int64("skill_id", skill.ID), zap.Int64("user_id", userID))

	return skill, nil
}

// Update applies a partial update to a listing owned by userID
func (s *SkillService) Update(ctx context.Context, skillID, userID int64, upd models.SkillUpdate) error {
	if err := models.Validate(upd); err != nil {
		return err
	}

	if err := s.store.UpdateSkill(ctx, skillID, userID, upd); err != nil {
		if errors.Is(err, models.ErrNotFoundOrForbidden) {
			return fmt.Errorf("skill %w", err)
		}
		return err
	}

	s.invalidateCategories(ctx)

	return nil
}

// Remove deletes a listing owned by userID
func (s *SkillService) Remove(ctx context.Context, skillID, userID int64) error {
	if err := s.store.DeleteSkill(ctx, skillID, userID); err != nil {
		if errors.Is(err, models.ErrNotFoundOrForbidden) {
			return fmt.Errorf("skill %w", err)
		}
		return err
	}

	s.invalidateCategories(ctx)
	s.logger.Info("Skill deleted", zap.Int64("skill_id", skillID), zap.Int64("user_id", userID))

	return nil
}

// ListCategories returns the distinct categories in use, served from the
// cache when one is configured
func (s *SkillService) ListCategories(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		categories, ok, err := s.cache.GetCategories(ctx)
		if err != nil {
			s.logger.Warn("Category cache read failed", zap.Error(err))
		} else if ok {
			return categories, nil
		}
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories); err != nil {
			s.logger.Warn("Category cache write failed", zap.Error(err))
		}
	}

	return categories, nil
}

func (s *SkillService) invalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCategories(ctx); err != nil {
		s.logger.Warn("Category cache invalidation failed", zap.Error(err))
	}
}

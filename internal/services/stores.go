package services

import (
	"context"

	"github.com/denzelpenzel/skillswap/internal/models"
)

// UserStore persists identities and profiles
type UserStore interface {
	CreateUser(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) error
}

// SkillStore persists skill listings. Update and delete match on both the
// listing id and the owner id.
type SkillStore interface {
	ListAvailableSkills(ctx context.Context, filter models.SkillFilter) ([]*models.CatalogSkill, error)
	ListSkillsByOwner(ctx context.Context, userID int64) ([]*models.Skill, error)
	GetSkillByID(ctx context.Context, skillID int64) (*models.Skill, error)
	CreateSkill(ctx context.Context, params models.CreateSkillParams) (*models.Skill, error)
	UpdateSkill(ctx context.Context, skillID, userID int64, upd models.SkillUpdate) error
	DeleteSkill(ctx context.Context, skillID, userID int64) error
	ListCategories(ctx context.Context) ([]string, error)
}

// SkillLookup resolves a listing to its owner and current name
type SkillLookup interface {
	GetSkillByID(ctx context.Context, skillID int64) (*models.Skill, error)
}

// RequestStore persists skill requests and their status history
type RequestStore interface {
	CreateRequest(ctx context.Context, params models.CreateRequestParams) (*models.SkillRequest, error)
	ListReceivedRequests(ctx context.Context, ownerID int64) ([]*models.SkillRequest, error)
	ListSentRequests(ctx context.Context, requesterID int64) ([]*models.SkillRequest, error)
	TransitionStatus(ctx context.Context, t models.StatusTransition) (*models.SkillRequest, error)
	ListStatusHistory(ctx context.Context, requestID, userID int64) ([]*models.StatusChange, error)
}

// CategoryCache holds the derived category list between catalog writes
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]string, bool, error)
	SetCategories(ctx context.Context, categories []string) error
	InvalidateCategories(ctx context.Context) error
}

// Package memory provides an in-process implementation of the service
// stores with the same ownership, uniqueness and cascade rules as the
// PostgreSQL schema. It backs the service and API tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/denzelpenzel/skillswap/internal/models"
)

// Store keeps users, skills, requests and status history in maps
type Store struct {
	mu sync.RWMutex

	// Now stamps created_at/updated_at; tests may replace it.
	Now func() time.Time

	users    map[int64]*models.User
	skills   map[int64]*models.Skill
	requests map[int64]*models.SkillRequest
	history  []*models.StatusChange

	nextUserID    int64
	nextSkillID   int64
	nextRequestID int64
	nextHistoryID int64
}

// New creates an empty store
func New() *Store {
	return &Store{
		Now:      time.Now,
		users:    make(map[int64]*models.User),
		skills:   make(map[int64]*models.Skill),
		requests: make(map[int64]*models.SkillRequest),
	}
}

// CreateUser inserts a user, rejecting duplicate usernames or emails
func (s *Store) CreateUser(_ context.Context, params models.CreateUserParams) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == params.Username || u.Email == params.Email {
			return nil, models.ErrConflict
		}
	}

	s.nextUserID++
	user := &models.User{
		ID:           s.nextUserID,
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		FullName:     params.FullName,
		Bio:          params.Bio,
		Location:     params.Location,
		CreatedAt:    s.Now(),
	}
	s.users[user.ID] = user

	out := *user
	return &out, nil
}

// GetUserByLogin looks a user up by username first, then by email
func (s *Store) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var byEmail *models.User
	for _, u := range s.users {
		if u.Username == login {
			out := *u
			return &out, nil
		}
		if u.Email == login {
			byEmail = u
		}
	}
	if byEmail == nil {
		return nil, models.ErrNotFound
	}
	out := *byEmail
	return &out, nil
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(_ context.Context, userID int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *u
	return &out, nil
}

// UpdateProfile overwrites the provided profile fields
func (s *Store) UpdateProfile(_ context.Context, userID int64, upd models.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Location != nil {
		u.Location = *upd.Location
	}
	return nil
}

// ListAvailableSkills returns available listings with owner details, newest first
func (s *Store) ListAvailableSkills(_ context.Context, filter models.SkillFilter) ([]*models.CatalogSkill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	out := []*models.CatalogSkill{}
	for _, sk := range s.sortedSkills() {
		if !sk.Available {
			continue
		}
		if filter.Category != "" && (sk.Category == nil || *sk.Category != filter.Category) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(sk.Name), search) &&
			(sk.Description == nil || !strings.Contains(strings.ToLower(*sk.Description), search)) {
			continue
		}
		owner := s.users[sk.UserID]
		out = append(out, &models.CatalogSkill{
			Skill:    *sk,
			Username: owner.Username,
			FullName: owner.FullName,
			Location: owner.Location,
		})
	}
	return out, nil
}

// ListSkillsByOwner returns every listing of userID, newest first
func (s *Store) ListSkillsByOwner(_ context.Context, userID int64) ([]*models.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Skill{}
	for _, sk := range s.sortedSkills() {
		if sk.UserID == userID {
			cp := *sk
			out = append(out, &cp)
		}
	}
	return out, nil
}

// GetSkillByID retrieves a listing regardless of availability
func (s *Store) GetSkillByID(_ context.Context, skillID int64) (*models.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sk, ok := s.skills[skillID]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *sk
	return &out, nil
}

// CreateSkill inserts an available listing
func (s *Store) CreateSkill(_ context.Context, params models.CreateSkillParams) (*models.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[params.UserID]; !ok {
		return nil, fmt.Errorf("failed to create skill: unknown user %d", params.UserID)
	}

	s.nextSkillID++
	sk := &models.Skill{
		ID:               s.nextSkillID,
		UserID:           params.UserID,
		Name:             params.Name,
		Description:      params.Description,
		ProficiencyLevel: params.ProficiencyLevel,
		Category:         params.Category,
		Available:        true,
		CreatedAt:        s.Now(),
	}
	s.skills[sk.ID] = sk

	out := *sk
	return &out, nil
}

// UpdateSkill applies a partial update to a listing owned by userID
func (s *Store) UpdateSkill(_ context.Context, skillID, userID int64, upd models.SkillUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sk, ok := s.skills[skillID]
	if !ok || sk.UserID != userID {
		return models.ErrNotFoundOrForbidden
	}
	if upd.Name != nil {
		sk.Name = *upd.Name
	}
	if upd.Description != nil {
		sk.Description = upd.Description
	}
	if upd.ProficiencyLevel != nil {
		sk.ProficiencyLevel = *upd.ProficiencyLevel
	}
	if upd.Category != nil {
		sk.Category = upd.Category
	}
	if upd.Available != nil {
		sk.Available = *upd.Available
	}
	return nil
}

// DeleteSkill removes a listing owned by userID. Its requests survive with
// SkillID cleared.
func (s *Store) DeleteSkill(_ context.Context, skillID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sk, ok := s.skills[skillID]
	if !ok || sk.UserID != userID {
		return models.ErrNotFoundOrForbidden
	}
	delete(s.skills, skillID)

	for _, req := range s.requests {
		if req.SkillID != nil && *req.SkillID == skillID {
			req.SkillID = nil
		}
	}
	return nil
}

// ListCategories returns the distinct non-empty categories
func (s *Store) ListCategories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	out := []string{}
	for _, sk := range s.skills {
		if sk.Category == nil || *sk.Category == "" {
			continue
		}
		if _, ok := seen[*sk.Category]; ok {
			continue
		}
		seen[*sk.Category] = struct{}{}
		out = append(out, *sk.Category)
	}
	return out, nil
}

// CreateRequest inserts a pending request and its initial history entry
func (s *Store) CreateRequest(_ context.Context, params models.CreateRequestParams) (*models.SkillRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if params.RequesterID == params.SkillOwnerID {
		return nil, fmt.Errorf("failed to create request: requester owns skill %d", params.SkillID)
	}
	if _, ok := s.skills[params.SkillID]; !ok {
		return nil, fmt.Errorf("failed to create request: unknown skill %d", params.SkillID)
	}

	skillID := params.SkillID
	now := s.Now()
	s.nextRequestID++
	req := &models.SkillRequest{
		ID:             s.nextRequestID,
		RequesterID:    params.RequesterID,
		SkillOwnerID:   params.SkillOwnerID,
		SkillID:        &skillID,
		RequestedSkill: params.RequestedSkill,
		OfferedSkill:   params.OfferedSkill,
		Message:        params.Message,
		Status:         models.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.requests[req.ID] = req
	s.recordLocked(req.ID, nil, models.StatusPending, params.RequesterID, now)

	out := *req
	return &out, nil
}

// ListReceivedRequests returns requests addressed to ownerID, newest first
func (s *Store) ListReceivedRequests(_ context.Context, ownerID int64) ([]*models.SkillRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.SkillRequest{}
	for _, req := range s.sortedRequests() {
		if req.SkillOwnerID != ownerID {
			continue
		}
		cp := *req
		requester := s.users[req.RequesterID]
		cp.RequesterUsername = requester.Username
		cp.RequesterName = requester.FullName
		out = append(out, &cp)
	}
	return out, nil
}

// ListSentRequests returns requests made by requesterID, newest first
func (s *Store) ListSentRequests(_ context.Context, requesterID int64) ([]*models.SkillRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.SkillRequest{}
	for _, req := range s.sortedRequests() {
		if req.RequesterID != requesterID {
			continue
		}
		cp := *req
		owner := s.users[req.SkillOwnerID]
		cp.OwnerUsername = owner.Username
		cp.OwnerName = owner.FullName
		out = append(out, &cp)
	}
	return out, nil
}

// TransitionStatus applies a guarded status change
func (s *Store) TransitionStatus(_ context.Context, t models.StatusTransition) (*models.SkillRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[t.RequestID]
	if !ok || req.SkillOwnerID != t.OwnerID {
		return nil, models.ErrNotFoundOrForbidden
	}

	current := req.Status
	if !slices.Contains(t.AllowedFrom, current) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, current, t.To)
	}

	now := s.Now()
	req.Status = t.To
	req.UpdatedAt = now
	s.recordLocked(req.ID, &current, t.To, t.OwnerID, now)

	out := *req
	return &out, nil
}

// ListStatusHistory returns the history of a request visible to userID, oldest first
func (s *Store) ListStatusHistory(_ context.Context, requestID, userID int64) ([]*models.StatusChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[requestID]
	if !ok || (req.RequesterID != userID && req.SkillOwnerID != userID) {
		return nil, models.ErrNotFoundOrForbidden
	}

	out := []*models.StatusChange{}
	for _, c := range s.history {
		if c.RequestID == requestID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) recordLocked(requestID int64, from *models.RequestStatus, to models.RequestStatus, actorID int64, at time.Time) {
	s.nextHistoryID++
	s.history = append(s.history, &models.StatusChange{
		ID:         s.nextHistoryID,
		RequestID:  requestID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  actorID,
		ChangedAt:  at,
	})
}

func (s *Store) sortedSkills() []*models.Skill {
	out := make([]*models.Skill, 0, len(s.skills))
	for _, sk := range s.skills {
		out = append(out, sk)
	}
	slices.SortFunc(out, func(a, b *models.Skill) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func (s *Store) sortedRequests() []*models.SkillRequest {
	out := make([]*models.SkillRequest, 0, len(s.requests))
	for _, req := range s.requests {
		out = append(out, req)
	}
	slices.SortFunc(out, func(a, b *models.SkillRequest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

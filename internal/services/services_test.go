package services

import (
	"context"
	"testing"
	"time"

	"github.com/denzelpenzel/skillswap/internal/config"
	"github.com/denzelpenzel/skillswap/internal/models"
	"github.com/denzelpenzel/skillswap/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	store    *memory.Store
	auth     *AuthService
	users    *UserService
	skills   *SkillService
	requests *RequestService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zaptest.NewLogger(t)
	store := memory.New()
	auth := NewAuthService(config.JWTConfig{Secret: "test-secret", TokenTTL: 7 * 24 * time.Hour}, bcrypt.MinCost, logger)

	return &testEnv{
		store:    store,
		auth:     auth,
		users:    NewUserService(store, auth, logger),
		skills:   NewSkillService(store, nil, logger),
		requests: NewRequestService(store, store, logger),
	}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()

	user, err := e.users.Register(context.Background(), models.UserRegistration{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
		FullName: username + " Tester",
		Location: "Lisbon",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createSkill(t *testing.T, ownerID int64, name, category string) *models.Skill {
	t.Helper()

	req := models.CreateSkillRequest{
		Name:             name,
		ProficiencyLevel: models.ProficiencyAdvanced,
	}
	if category != "" {
		req.Category = &category
	}

	skill, err := e.skills.Create(context.Background(), ownerID, req)
	require.NoError(t, err)
	return skill
}

func ptr[T any](v T) *T {
	return &v
}

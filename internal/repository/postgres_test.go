package repository

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/denzelpenzel/skillswap/internal/config"
	"github.com/denzelpenzel/skillswap/internal/database"
	"github.com/denzelpenzel/skillswap/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// testPool is nil when neither DATABASE_URL nor a container runtime is available
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(runWithPostgres(m))
}

func runWithPostgres(m *testing.M) int {
	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" && !testing.Short() {
		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("skillswap"),
			postgres.WithUsername("skillswap"),
			postgres.WithPassword("skillswap"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			log.Printf("postgres container unavailable, skipping repository tests: %v", err)
			return m.Run()
		}
		defer func() { _ = container.Terminate(ctx) }()

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			log.Printf("resolve connection string: %v", err)
			return 1
		}
	}
	if dsn == "" {
		return m.Run()
	}

	pool, err := database.NewConnection(config.DatabaseConfig{DSN: dsn}, true, zap.NewNop())
	if err != nil {
		log.Printf("connect to postgres: %v", err)
		return 1
	}
	defer pool.Close()
	testPool = pool

	return m.Run()
}

type repos struct {
	users    *UserRepository
	skills   *SkillRepository
	requests *RequestRepository
}

// newRepos truncates every table and returns repositories over the shared pool
func newRepos(t *testing.T) *repos {
	t.Helper()
	if testPool == nil {
		t.Skip("postgres not available")
	}

	_, err := testPool.Exec(context.Background(),
		`TRUNCATE users, skills, skill_requests, request_status_history, exchanges RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	return &repos{
		users:    NewUserRepository(testPool, logger),
		skills:   NewSkillRepository(testPool, logger),
		requests: NewRequestRepository(testPool, logger),
	}
}

func (r *repos) user(t *testing.T, username string) *models.User {
	t.Helper()

	user, err := r.users.CreateUser(context.Background(), models.CreateUserParams{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$hash",
		FullName:     username + " Tester",
		Location:     "Lisbon",
	})
	require.NoError(t, err)
	return user
}

func (r *repos) skill(t *testing.T, ownerID int64, name string, category *string) *models.Skill {
	t.Helper()

	skill, err := r.skills.CreateSkill(context.Background(), models.CreateSkillParams{
		UserID:           ownerID,
		Name:             name,
		ProficiencyLevel: models.ProficiencyIntermediate,
		Category:         category,
	})
	require.NoError(t, err)
	return skill
}

func ptr[T any](v T) *T {
	return &v
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "guitar", want: "%guitar%"},
		{in: "100%", want: `%100\%%`},
		{in: "a_b", want: `%a\_b%`},
		{in: `c:\dir`, want: `%c:\\dir%`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.in))
		})
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	alice := r.user(t, "alice")

	_, err := r.users.CreateUser(ctx, models.CreateUserParams{Username: "alice", Email: "x@example.com", PasswordHash: "h", FullName: "X"})
	assert.ErrorIs(t, err, models.ErrConflict)
	_, err = r.users.CreateUser(ctx, models.CreateUserParams{Username: "x", Email: "alice@example.com", PasswordHash: "h", FullName: "X"})
	assert.ErrorIs(t, err, models.ErrConflict)

	byEmail, err := r.users.GetUserByLogin(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)
	assert.Equal(t, "$2a$10$hash", byEmail.PasswordHash)

	_, err = r.users.GetUserByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, r.users.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Bio: ptr("Luthier")}))
	updated, err := r.users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Luthier", updated.Bio)
	assert.Equal(t, "alice Tester", updated.FullName)

	err = r.users.UpdateProfile(ctx, 999, models.ProfileUpdate{Bio: ptr("x")})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSkillRepository(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	alice := r.user(t, "alice")
	bob := r.user(t, "bob")

	guitar := r.skill(t, alice.ID, "Guitar Lessons", ptr("Music"))
	r.skill(t, alice.ID, "100% Rye", ptr("Cooking"))
	r.skill(t, bob.ID, "Spanish", ptr("Languages"))
	assert.True(t, guitar.Available)

	all, err := r.skills.ListAvailableSkills(ctx, models.SkillFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Spanish", all[0].Name)
	assert.Equal(t, "bob", all[0].Username)

	literal, err := r.skills.ListAvailableSkills(ctx, models.SkillFilter{Search: "0%"})
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "100% Rye", literal[0].Name)

	music, err := r.skills.ListAvailableSkills(ctx, models.SkillFilter{Category: "Music", Search: "GUITAR"})
	require.NoError(t, err)
	require.Len(t, music, 1)

	err = r.skills.UpdateSkill(ctx, guitar.ID, bob.ID, models.SkillUpdate{Available: ptr(false)})
	assert.ErrorIs(t, err, models.ErrNotFoundOrForbidden)

	require.NoError(t, r.skills.UpdateSkill(ctx, guitar.ID, alice.ID, models.SkillUpdate{Available: ptr(false)}))
	require.NoError(t, r.skills.UpdateSkill(ctx, guitar.ID, alice.ID, models.SkillUpdate{}))

	available, err := r.skills.ListAvailableSkills(ctx, models.SkillFilter{Category: "Music"})
	require.NoError(t, err)
	assert.Empty(t, available)

	owned, err := r.skills.ListSkillsByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	categories, err := r.skills.ListCategories(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Music", "Cooking", "Languages"}, categories)

	assert.ErrorIs(t, r.skills.DeleteSkill(ctx, guitar.ID, bob.ID), models.ErrNotFoundOrForbidden)
	require.NoError(t, r.skills.DeleteSkill(ctx, guitar.ID, alice.ID))
	_, err = r.skills.GetSkillByID(ctx, guitar.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRequestRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	alice := r.user(t, "alice")
	bob := r.user(t, "bob")
	guitar := r.skill(t, alice.ID, "Guitar Lessons", ptr("Music"))

	created, err := r.requests.CreateRequest(ctx, models.CreateRequestParams{
		RequesterID:    bob.ID,
		SkillOwnerID:   alice.ID,
		SkillID:        guitar.ID,
		RequestedSkill: guitar.Name,
		OfferedSkill:   "Spanish",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)

	require.NoError(t, r.skills.UpdateSkill(ctx, guitar.ID, alice.ID, models.SkillUpdate{Name: ptr("Bass Lessons")}))

	received, err := r.requests.ListReceivedRequests(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "Guitar Lessons", received[0].RequestedSkill)
	assert.Equal(t, "bob", received[0].RequesterUsername)

	_, err = r.requests.TransitionStatus(ctx, models.StatusTransition{
		RequestID: created.ID, OwnerID: bob.ID, To: models.StatusAccepted, AllowedFrom: models.StatusAccepted.AllowedFrom(),
	})
	assert.ErrorIs(t, err, models.ErrNotFoundOrForbidden)

	_, err = r.requests.TransitionStatus(ctx, models.StatusTransition{
		RequestID: created.ID, OwnerID: alice.ID, To: models.StatusCompleted, AllowedFrom: models.StatusCompleted.AllowedFrom(),
	})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	time.Sleep(10 * time.Millisecond)
	accepted, err := r.requests.TransitionStatus(ctx, models.StatusTransition{
		RequestID: created.ID, OwnerID: alice.ID, To: models.StatusAccepted, AllowedFrom: models.StatusAccepted.AllowedFrom(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)
	assert.True(t, accepted.UpdatedAt.After(created.UpdatedAt))

	sent, err := r.requests.ListSentRequests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, models.StatusAccepted, sent[0].Status)
	assert.Equal(t, "alice", sent[0].OwnerUsername)

	history, err := r.requests.ListStatusHistory(ctx, created.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, models.StatusPending, *history[1].FromStatus)
	assert.Equal(t, alice.ID, history[1].ChangedBy)

	carol := r.user(t, "carol")
	_, err = r.requests.ListStatusHistory(ctx, created.ID, carol.ID)
	assert.ErrorIs(t, err, models.ErrNotFoundOrForbidden)
}

func TestRequestRepository_SurvivesSkillDeletion(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	alice := r.user(t, "alice")
	bob := r.user(t, "bob")
	guitar := r.skill(t, alice.ID, "Guitar Lessons", ptr("Music"))

	created, err := r.requests.CreateRequest(ctx, models.CreateRequestParams{
		RequesterID: bob.ID, SkillOwnerID: alice.ID, SkillID: guitar.ID,
		RequestedSkill: guitar.Name, OfferedSkill: "Spanish",
	})
	require.NoError(t, err)
	require.NotNil(t, created.SkillID)
	assert.Equal(t, guitar.ID, *created.SkillID)

	require.NoError(t, r.skills.DeleteSkill(ctx, guitar.ID, alice.ID))

	sent, err := r.requests.ListSentRequests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "Guitar Lessons", sent[0].RequestedSkill)
	assert.Nil(t, sent[0].SkillID)

	received, err := r.requests.ListReceivedRequests(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)

	history, err := r.requests.ListStatusHistory(ctx, created.ID, alice.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRequestRepository_ConcurrentTransitions(t *testing.T) {
	ctx := context.Background()
	r := newRepos(t)
	alice := r.user(t, "alice")
	bob := r.user(t, "bob")
	guitar := r.skill(t, alice.ID, "Guitar Lessons", nil)

	created, err := r.requests.CreateRequest(ctx, models.CreateRequestParams{
		RequesterID: bob.ID, SkillOwnerID: alice.ID, SkillID: guitar.ID,
		RequestedSkill: guitar.Name, OfferedSkill: "Spanish",
	})
	require.NoError(t, err)

	const workers = 8
	errs := make(chan error, workers)
	for i := range workers {
		to := models.StatusAccepted
		if i%2 == 1 {
			to = models.StatusRejected
		}
		go func() {
			_, err := r.requests.TransitionStatus(ctx, models.StatusTransition{
				RequestID: created.ID, OwnerID: alice.ID, To: to, AllowedFrom: to.AllowedFrom(),
			})
			errs <- err
		}()
	}

	succeeded := 0
	for range workers {
		if err := <-errs; err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, models.ErrInvalidTransition, fmt.Sprint(err))
		}
	}
	assert.Equal(t, 1, succeeded, "the row lock admits exactly one transition out of pending")
}

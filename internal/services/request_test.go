package services

import (
	"context"
	"testing"
	"time"

	"github.com/denzelpenzel/skillswap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createRequest(t *testing.T, requesterID, skillID int64) *models.SkillRequest {
	t.Helper()

	req, err := e.requests.Create(context.Background(), requesterID, models.CreateRequestInput{
		SkillID:      skillID,
		OfferedSkill: "Spanish",
		Message:      ptr("Swap?"),
	})
	require.NoError(t, err)
	return req
}

func TestCreateRequest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	guitar := env.createSkill(t, alice.ID, "Guitar Lessons", "Music")

	req := env.createRequest(t, bob.ID, guitar.ID)

	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, bob.ID, req.RequesterID)
	assert.Equal(t, alice.ID, req.SkillOwnerID)
	assert.Equal(t, "Guitar Lessons", req.RequestedSkill)
	assert.Equal(t, "Spanish", req.OfferedSkill)
}

func TestCreateRequest_Errors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	guitar := env.createSkill(t, alice.ID, "Guitar Lessons", "Music")

	_, err := env.requests.Create(ctx, alice.ID, models.CreateRequestInput{SkillID: guitar.ID, OfferedSkill: "Piano"})
	assert.ErrorIs(t, err, models.ErrSelfRequest)

	_, err = env.requests.Create(ctx, alice.ID, models.CreateRequestInput{SkillID: 999, OfferedSkill: "Piano"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = env.requests.Create(ctx, alice.ID, models.CreateRequestInput{SkillID: guitar.ID})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateRequest_UnavailableSkillStillRequestable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	guitar := env.createSkill(t, alice.ID, "Guitar Lessons", "Music")
	require.NoError(t, env.skills.Update(ctx, guitar.ID, alice.ID, models.SkillUpdate{Available: ptr(false)}))

	req := env.createRequest(t, bob.ID, guitar.ID)
	assert.Equal(t, models.StatusPending, req.Status)
}

func TestRequestedSkillIsSnapshot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	guitar := env.createSkill(t, alice.ID, "Guitar Lessons", "Music")
	env.createRequest(t, bob.ID, guitar.ID)

	require.NoError(t, env.skills.Update(ctx, guitar.ID, alice.ID, models.SkillUpdate{Name: ptr("Bass Lessons")}))

	sent, err := env.requests.ListSent(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "Guitar Lessons", sent[0].RequestedSkill)
}

func TestRequestsSurviveSkillRemoval(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	guitar := env.createSkill(t, alice.ID, "Guitar Lessons", "Music")
	req := env.createRequest(t, bob.ID, guitar.ID)
	_, err := env.requests.UpdateStatus(ctx, req.ID, alice.ID, models.StatusAccepted)
	require.NoError(t, err)

	require.NoError(t, env.skills.Remove(ctx, guitar.ID, alice.ID))

	sent, err := env.requests.ListSent(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, req.ID, sent[0].ID)
	assert.Equal(t, "Guitar Lessons", sent[0].RequestedSkill)
	assert.Nil(t, sent[0].SkillID)

	received, err := env.requests.ListReceived(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, models.StatusAccepted, received[0].Status)

	history, err := env.requests.History(ctx, req.ID, bob.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	completed, err := env.requests.UpdateStatus(ctx, req.ID, alice.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
}

func TestListReceivedAndSent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")
	guitar := env.createSkill(t, alice.ID, "Guitar Lessons", "Music")

	first := env.createRequest(t, bob.ID, guitar.ID)
	second := env.createRequest(t, carol.ID, guitar.ID)

	received, err := env.requests.ListReceived(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, received, 2)
	assert.Equal(t, second.ID, received[0].ID, "newest first")
	assert.Equal(t, first.ID, received[1].ID)
	assert.Equal(t, "carol", received[0].RequesterUsername)
	assert.Equal(t, "carol Tester", received[0].RequesterName)

	sent, err := env.requests.ListSent(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "alice", sent[0].OwnerUsername)
	assert.Equal(t, "alice Tester", sent[0].OwnerName)

	none, err := env.requests.ListReceived(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateStatus_OnlyOwner(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")
	guitar := env.createSkill(t, alice.ID, "Guitar Lessons", "Music")
	req := env.createRequest(t, bob.ID, guitar.ID)

	for _, actor := range []int64{bob.ID, carol.ID} {
		_, err := env.requests.UpdateStatus(ctx, req.ID, actor, models.StatusAccepted)
		assert.ErrorIs(t, err, models.ErrNotFoundOrForbidden)
	}

	_, err := env.requests.UpdateStatus(ctx, 999, alice.ID, models.StatusAccepted)
	assert.ErrorIs(t, err, models.ErrNotFoundOrForbidden)

	sent, err := env.requests.ListSent(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, sent[0].Status)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []models.RequestStatus
		next    models.RequestStatus
		wantErr error
	}{
		{name: "accept pending", next: models.StatusAccepted},
		{name: "reject pending", next: models.StatusRejected},
		{name: "complete accepted", path: []models.RequestStatus{models.StatusAccepted}, next: models.StatusCompleted},
		{name: "complete pending", next: models.StatusCompleted, wantErr: models.ErrInvalidTransition},
		{name: "pending again", next: models.StatusPending, wantErr: models.ErrInvalidTransition},
		{name: "reopen rejected", path: []models.RequestStatus{models.StatusRejected}, next: models.StatusAccepted, wantErr: models.ErrInvalidTransition},
		{name: "accept twice", path: []models.RequestStatus{models.StatusAccepted}, next: models.StatusAccepted, wantErr: models.ErrInvalidTransition},
		{name: "reject completed", path: []models.RequestStatus{models.StatusAccepted, models.StatusCompleted}, next: models.StatusRejected, wantErr: models.ErrInvalidTransition},
		{name: "unknown status", next: models.RequestStatus("cancelled"), wantErr: models.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t)
			alice := env.register(t, "alice")
			bob := env.register(t, "bob")
			guitar := env.createSkill(t, alice.ID, "Guitar Lessons", "Music")
			req := env.createRequest(t, bob.ID, guitar.ID)

			for _, step := range tt.path {
				_, err := env.requests.UpdateStatus(ctx, req.ID, alice.ID, step)
				require.NoError(t, err)
			}

			updated, err := env.requests.UpdateStatus(ctx, req.ID, alice.ID, tt.next)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.next, updated.Status)
		})
	}
}

func TestUpdateStatus_RefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	env.store.Now = func() time.Time { return start }

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	guitar := env.createSkill(t, alice.ID, "Guitar Lessons", "Music")
	req := env.createRequest(t, bob.ID, guitar.ID)

	env.store.Now = func() time.Time { return start.Add(time.Hour) }
	updated, err := env.requests.UpdateStatus(ctx, req.ID, alice.ID, models.StatusAccepted)
	require.NoError(t, err)

	assert.Equal(t, start, updated.CreatedAt)
	assert.Equal(t, start.Add(time.Hour), updated.UpdatedAt)
}

func TestSiblingRequestsAreIndependent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")
	guitar := env.createSkill(t, alice.ID, "Guitar Lessons", "Music")

	first := env.createRequest(t, bob.ID, guitar.ID)
	second := env.createRequest(t, carol.ID, guitar.ID)

	_, err := env.requests.UpdateStatus(ctx, first.ID, alice.ID, models.StatusAccepted)
	require.NoError(t, err)

	sent, err := env.requests.ListSent(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, second.ID, sent[0].ID)
	assert.Equal(t, models.StatusPending, sent[0].Status)

	_, err = env.requests.UpdateStatus(ctx, second.ID, alice.ID, models.StatusRejected)
	assert.NoError(t, err)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")
	guitar := env.createSkill(t, alice.ID, "Guitar Lessons", "Music")
	req := env.createRequest(t, bob.ID, guitar.ID)

	_, err := env.requests.UpdateStatus(ctx, req.ID, alice.ID, models.StatusAccepted)
	require.NoError(t, err)
	_, err = env.requests.UpdateStatus(ctx, req.ID, alice.ID, models.StatusCompleted)
	require.NoError(t, err)

	for _, viewer := range []int64{alice.ID, bob.ID} {
		history, err := env.requests.History(ctx, req.ID, viewer)
		require.NoError(t, err)
		require.Len(t, history, 3)

		assert.Nil(t, history[0].FromStatus)
		assert.Equal(t, models.StatusPending, history[0].ToStatus)
		assert.Equal(t, bob.ID, history[0].ChangedBy)

		assert.Equal(t, models.StatusPending, *history[1].FromStatus)
		assert.Equal(t, models.StatusAccepted, history[1].ToStatus)
		assert.Equal(t, models.StatusCompleted, history[2].ToStatus)
		assert.Equal(t, alice.ID, history[2].ChangedBy)
	}

	_, err = env.requests.History(ctx, req.ID, carol.ID)
	assert.ErrorIs(t, err, models.ErrNotFoundOrForbidden)
}

func TestExchangeScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	guitar := env.createSkill(t, alice.ID, "Guitar Lessons", "Music")

	catalog, err := env.skills.ListAvailable(ctx, models.SkillFilter{Search: "guitar"})
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, guitar.ID, catalog[0].ID)

	req := env.createRequest(t, bob.ID, guitar.ID)

	received, err := env.requests.ListReceived(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, models.StatusPending, received[0].Status)

	_, err = env.requests.UpdateStatus(ctx, req.ID, alice.ID, models.StatusAccepted)
	require.NoError(t, err)
	_, err = env.requests.UpdateStatus(ctx, req.ID, alice.ID, models.StatusCompleted)
	require.NoError(t, err)

	sent, err := env.requests.ListSent(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, models.StatusCompleted, sent[0].Status)
}

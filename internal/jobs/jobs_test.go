package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitmoney/internal/metrics"
	"github.com/mmynk/splitmoney/internal/models"
	"github.com/mmynk/splitmoney/internal/storage/sqlite"
)

type fakeStore struct {
	calls   atomic.Int32
	lastNow atomic.Int64
	deleted int64
	err     error
}

func (f *fakeStore) DeleteStaleInvitations(_ context.Context, now int64) (int64, error) {
	f.calls.Add(1)
	f.lastNow.Store(now)
	return f.deleted, f.err
}

func TestInvitationCleanupRunOnce(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{deleted: 3}

	job := NewInvitationCleanup(store, metrics.New())
	job.now = func() time.Time { return fixed }

	n, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, fixed.Unix(), store.lastNow.Load())
}

func TestInvitationCleanupError(t *testing.T) {
	store := &fakeStore{err: errors.New("disk I/O error")}
	job := NewInvitationCleanup(store, nil)

	_, err := job.RunOnce(context.Background())
	assert.Error(t, err)

	// Run swallows the error after logging it
	assert.NotPanics(t, job.Run)
	assert.Equal(t, int32(2), store.calls.Load())
}

func TestInvitationCleanupAgainstSQLite(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	owner := models.NewUser("owner@example.com", "Owner", "hash")
	require.NoError(t, store.CreateUser(ctx, owner))
	group := &models.Group{Name: "Flat", CreatedBy: owner.ID}
	require.NoError(t, store.CreateGroup(ctx, group))

	now := time.Now().Unix()
	require.NoError(t, store.CreateInvitation(ctx, &models.Invitation{
		GroupID: group.ID, InviteeEmail: "old@example.com", Token: "t-old",
		InvitedBy: owner.ID, ExpiresAt: now - 60,
	}))
	require.NoError(t, store.CreateInvitation(ctx, &models.Invitation{
		GroupID: group.ID, InviteeEmail: "new@example.com", Token: "t-new",
		InvitedBy: owner.ID, ExpiresAt: now + 3600,
	}))

	n, err := NewInvitationCleanup(store, nil).RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetInvitationByToken(ctx, "t-new")
	assert.NoError(t, err, "unexpired invitation should survive")
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler()
	err := s.Add("every now and then", cron.FuncJob(func() {}))
	assert.Error(t, err)
	assert.NoError(t, s.Add("@every 1h", cron.FuncJob(func() {})))
}

func TestSchedulerRunsJobs(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("@every 1s", cron.FuncJob(func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})))

	s.Start()
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

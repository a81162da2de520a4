package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/splitmoney/internal/metrics"
)

// InvitationStore is the subset of storage.Store the cleanup job needs.
type InvitationStore interface {
	DeleteStaleInvitations(ctx context.Context, now int64) (int64, error)
}

// InvitationCleanup deletes accepted and expired invitations. It implements cron.Job.
type InvitationCleanup struct {
	store   InvitationStore
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time
}

// NewInvitationCleanup creates the cleanup job. m may be nil.
func NewInvitationCleanup(store InvitationStore, m *metrics.Metrics) *InvitationCleanup {
	return &InvitationCleanup{
		store:   store,
		metrics: m,
		timeout: time.Minute,
		now:     time.Now,
	}
}

// Run implements cron.Job.
func (j *InvitationCleanup) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		slog.Error("Invitation cleanup failed", "error", err)
	}
}

// RunOnce performs one cleanup pass and returns how many invitations were removed.
func (j *InvitationCleanup) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := j.store.DeleteStaleInvitations(ctx, j.now().Unix())
	j.metrics.CleanupRun(deleted, err)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		slog.Info("Stale invitations deleted", "count", deleted)
	}
	return deleted, nil
}

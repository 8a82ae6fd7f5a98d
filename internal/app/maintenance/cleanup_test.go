package maintenance

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/charlesng35/otpdash/internal/auth"
	testutil "github.com/charlesng35/otpdash/internal/database/testutil"
	"github.com/charlesng35/otpdash/internal/models"
)

type countingPruner struct {
	calls atomic.Int32
}

func (p *countingPruner) Prune() int {
	p.calls.Add(1)
	return 0
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	clock := &fixedClock{current: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)}

	signer, err := iauth.NewTokenSigner(iauth.TokenConfig{Secret: "cleanup-secret", Issuer: "test-suite", Clock: clock.Now})
	require.NoError(t, err)

	sessionSvc, err := iauth.NewSessionService(db, signer, iauth.SessionConfig{TTL: time.Hour, Clock: clock.Now})
	require.NoError(t, err)

	user := &models.User{Email: "cleanup@example.com", Verified: true}
	require.NoError(t, db.Create(user).Error)

	ctx := context.Background()
	expired, err := sessionSvc.CreateSession(ctx, nil, user, iauth.SessionMetadata{})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Session{}).Where("id = ?", expired.Session.ID).
		Update("expires_at", clock.Now().Add(-2*time.Hour)).Error)

	active, err := sessionSvc.CreateSession(ctx, nil, user, iauth.SessionMetadata{})
	require.NoError(t, err)

	revoked, err := sessionSvc.CreateSession(ctx, nil, user, iauth.SessionMetadata{})
	require.NoError(t, err)
	require.NoError(t, sessionSvc.RevokeSession(ctx, revoked.Session.ID))

	pruner := &countingPruner{}
	c := NewCleaner(sessionSvc,
		WithRatePruner(pruner),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)

	require.NoError(t, c.RunOnce(ctx))

	assertNotFound := func(id string) {
		var s models.Session
		err := db.First(&s, "id = ?", id).Error
		require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	}

	assertNotFound(expired.Session.ID)
	assertNotFound(revoked.Session.ID)

	var remaining models.Session
	require.NoError(t, db.First(&remaining, "id = ?", active.Session.ID).Error)
	require.EqualValues(t, 1, pruner.calls.Load())
}

func TestCleanerRunOnceReportsCancelledContext(t *testing.T) {
	c := NewCleaner(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, c.RunOnce(ctx), context.Canceled)
}

func TestCleanerStartSchedulesJobs(t *testing.T) {
	scheduler := cron.New(cron.WithLogger(cron.DiscardLogger))
	pruner := &countingPruner{}

	c := NewCleaner(nil, WithRatePruner(pruner), WithCron(scheduler))
	require.NoError(t, c.Start())
	t.Cleanup(func() { <-c.Stop().Done() })

	require.Len(t, scheduler.Entries(), 1)
}

func TestCleanerStartRejectsBadSchedule(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	signer, err := iauth.NewTokenSigner(iauth.TokenConfig{Secret: "cleanup-secret"})
	require.NoError(t, err)
	sessionSvc, err := iauth.NewSessionService(db, signer, iauth.SessionConfig{})
	require.NoError(t, err)

	c := NewCleaner(sessionSvc, WithSessionSchedule("not a schedule"))
	require.Error(t, c.Start())
}

func TestCleanerWithoutJobsIsNoop(t *testing.T) {
	c := NewCleaner(nil)
	require.NoError(t, c.Start())
	require.NoError(t, c.RunOnce(context.Background()))
	<-c.Stop().Done()
}

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}

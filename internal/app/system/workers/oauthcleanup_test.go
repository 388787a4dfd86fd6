package workers_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/whoseturn/internal/app/store/memstore"
	"github.com/dalemusser/whoseturn/internal/app/system/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingCleaner struct {
	inner   *memstore.OAuthStates
	removed atomic.Int64
}

func (r *recordingCleaner) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := r.inner.CleanupExpired(ctx)
	r.removed.Add(n)
	return n, err
}

func TestOAuthStateCleanup_RemovesExpired(t *testing.T) {
	ctx := context.Background()
	states := memstore.NewOAuthStates()
	require.NoError(t, states.Save(ctx, "stale", "/", time.Now().Add(-time.Minute)))
	require.NoError(t, states.Save(ctx, "fresh", "/groups", time.Now().Add(time.Hour)))
	rec := &recordingCleaner{inner: states}

	w := workers.NewOAuthStateCleanup(rec, zap.NewNop(), 5*time.Millisecond)
	w.Start()
	t.Cleanup(w.Stop)

	require.Eventually(t, func() bool { return rec.removed.Load() == 1 }, time.Second, 5*time.Millisecond)

	ret, ok, err := states.Validate(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/groups", ret)
}

func TestOAuthStateCleanup_StopIsIdempotent(t *testing.T) {
	w := workers.NewOAuthStateCleanup(memstore.NewOAuthStates(), zap.NewNop(), time.Hour)
	w.Start()
	w.Stop()
	w.Stop()
}

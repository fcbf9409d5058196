package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJanitor_RunOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := epoch
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, New(epoch)))
	require.NoError(t, store.Save(ctx, New(epoch)))
	now = epoch.Add(25 * time.Hour)

	j := NewJanitor(store, "@every 1h", 24*time.Hour, nil)
	assert.Equal(t, 2, j.RunOnce(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestJanitor_StartRejectsBadSpec(t *testing.T) {
	j := NewJanitor(NewMemoryStore(), "not a schedule", time.Hour, nil)
	assert.Error(t, j.Start(context.Background()))
}

func TestJanitor_StartStop(t *testing.T) {
	j := NewJanitor(NewMemoryStore(), "@every 1h", time.Hour, nil)
	require.NoError(t, j.Start(context.Background()))
	j.Stop()
}

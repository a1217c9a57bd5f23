package openai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_BurstThenBlocks(t *testing.T) {
	bucket := newTokenBucketWithRate(60, 2)

	ctx := context.Background()
	require.NoError(t, bucket.Wait(ctx))
	require.NoError(t, bucket.Wait(ctx))

	// Burst exhausted; the next wait must respect cancellation instead of
	// blocking for the refill.
	cancelled, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := bucket.Wait(cancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewTokenBucket_Defaults(t *testing.T) {
	assert.NotNil(t, newTokenBucket(0, 0))
	assert.Nil(t, newTokenBucket(-1, 5))
}

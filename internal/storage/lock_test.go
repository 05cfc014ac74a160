package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func (ts *StorageTestSuite) TestLock() {
	ctx := context.Background()

	ts.T().Run("Acquire", func(t *testing.T) {
		assert := require.New(t)

		acquired, err := AcquireLock(ctx, "test:lock", "gw-1", time.Minute)
		assert.NoError(err)
		assert.True(acquired)

		t.Run("Acquire by other token is denied", func(t *testing.T) {
			assert := require.New(t)

			acquired, err := AcquireLock(ctx, "test:lock", "gw-2", time.Minute)
			assert.NoError(err)
			assert.False(acquired)
		})

		t.Run("Release by other token is a no-op", func(t *testing.T) {
			assert := require.New(t)

			assert.NoError(ReleaseLock(ctx, "test:lock", "gw-2"))

			acquired, err := AcquireLock(ctx, "test:lock", "gw-2", time.Minute)
			assert.NoError(err)
			assert.False(acquired)
		})

		t.Run("Release", func(t *testing.T) {
			assert := require.New(t)

			assert.NoError(ReleaseLock(ctx, "test:lock", "gw-1"))

			acquired, err := AcquireLock(ctx, "test:lock", "gw-2", time.Minute)
			assert.NoError(err)
			assert.True(acquired)
		})

		t.Run("Release is idempotent", func(t *testing.T) {
			assert := require.New(t)

			assert.NoError(ReleaseLock(ctx, "test:lock", "gw-1"))
			assert.NoError(ReleaseLock(ctx, "test:lock", "gw-1"))
		})
	})

	ts.T().Run("Lease expires", func(t *testing.T) {
		assert := require.New(t)

		acquired, err := AcquireLock(ctx, "test:lock:expire", "gw-1", time.Millisecond*100)
		assert.NoError(err)
		assert.True(acquired)

		time.Sleep(time.Millisecond * 150)

		acquired, err = AcquireLock(ctx, "test:lock:expire", "gw-2", time.Minute)
		assert.NoError(err)
		assert.True(acquired)

		// the previous holder must not release the re-acquired lock
		assert.NoError(ReleaseLock(ctx, "test:lock:expire", "gw-1"))

		acquired, err = AcquireLock(ctx, "test:lock:expire", "gw-3", time.Minute)
		assert.NoError(err)
		assert.False(acquired)
	})

	ts.T().Run("Empty token", func(t *testing.T) {
		assert := require.New(t)

		acquired, err := AcquireLock(ctx, "test:lock:anon", "", time.Minute)
		assert.NoError(err)
		assert.True(acquired)

		assert.NoError(ReleaseLock(ctx, "test:lock:anon", ""))

		acquired, err = AcquireLock(ctx, "test:lock:anon", "", time.Minute)
		assert.NoError(err)
		assert.True(acquired)
	})
}

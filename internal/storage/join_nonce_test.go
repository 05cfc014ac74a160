package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brocaar/lorawan"
)

func (ts *StorageTestSuite) TestJoinNonce() {
	ctx := context.Background()
	devEUI := lorawan.EUI64{1, 2, 3, 4, 5, 6, 7, 8}

	ts.T().Run("Get non-existing", func(t *testing.T) {
		assert := require.New(t)

		_, err := GetJoinNonce(ctx, devEUI, "00AA")
		assert.Equal(ErrDoesNotExist, err)
	})

	ts.T().Run("Create", func(t *testing.T) {
		assert := require.New(t)

		created, err := CreateJoinNonce(ctx, devEUI, "00AA", time.Minute)
		assert.NoError(err)
		assert.True(created)

		t.Run("Get", func(t *testing.T) {
			assert := require.New(t)

			val, err := GetJoinNonce(ctx, devEUI, "00AA")
			assert.NoError(err)
			assert.Equal("00AA", val)
		})

		t.Run("Create again within TTL", func(t *testing.T) {
			assert := require.New(t)

			created, err := CreateJoinNonce(ctx, devEUI, "00AA", time.Minute)
			assert.NoError(err)
			assert.False(created)
		})

		t.Run("Other nonce is independent", func(t *testing.T) {
			assert := require.New(t)

			created, err := CreateJoinNonce(ctx, devEUI, "00AB", time.Minute)
			assert.NoError(err)
			assert.True(created)
		})
	})

	ts.T().Run("Create after TTL expiry", func(t *testing.T) {
		assert := require.New(t)

		created, err := CreateJoinNonce(ctx, devEUI, "00AC", time.Millisecond*100)
		assert.NoError(err)
		assert.True(created)

		time.Sleep(time.Millisecond * 150)

		_, err = GetJoinNonce(ctx, devEUI, "00AC")
		assert.Equal(ErrDoesNotExist, err)

		created, err = CreateJoinNonce(ctx, devEUI, "00AC", time.Minute)
		assert.NoError(err)
		assert.True(created)
	})
}

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brocaar/lorawan"
)

func (ts *StorageTestSuite) TestFrameCounter() {
	ctx := context.Background()
	devEUI := lorawan.EUI64{1, 2, 3, 4, 5, 6, 7, 8}

	ts.T().Run("Get non-existing", func(t *testing.T) {
		assert := require.New(t)

		_, err := GetFrameCounter(ctx, devEUI)
		assert.Equal(ErrDoesNotExist, err)
	})

	ts.T().Run("Delete non-existing", func(t *testing.T) {
		assert := require.New(t)

		assert.Equal(ErrDoesNotExist, DeleteFrameCounter(ctx, devEUI))
	})

	ts.T().Run("Save", func(t *testing.T) {
		assert := require.New(t)

		assert.NoError(SaveFrameCounter(ctx, devEUI, 123))

		t.Run("Get", func(t *testing.T) {
			assert := require.New(t)

			fCnt, err := GetFrameCounter(ctx, devEUI)
			assert.NoError(err)
			assert.EqualValues(123, fCnt)
		})

		t.Run("Delete", func(t *testing.T) {
			assert := require.New(t)

			assert.NoError(DeleteFrameCounter(ctx, devEUI))

			_, err := GetFrameCounter(ctx, devEUI)
			assert.Equal(ErrDoesNotExist, err)
		})
	})
}

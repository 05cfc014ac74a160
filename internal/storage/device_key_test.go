package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brocaar/lorawan"
)

func (ts *StorageTestSuite) TestDeviceKey() {
	ctx := context.Background()

	ts.T().Run("Get non-existing", func(t *testing.T) {
		assert := require.New(t)

		_, err := GetDeviceKey(ctx, DB(), lorawan.EUI64{1, 2, 3, 4, 5, 6, 7, 8})
		assert.Equal(ErrDoesNotExist, err)
	})

	ts.T().Run("Create", func(t *testing.T) {
		assert := require.New(t)

		devAddr := lorawan.DevAddr{1, 2, 0xaa, 0xbb}
		dk := DeviceKey{
			DevEUI:         lorawan.EUI64{1, 2, 3, 4, 5, 6, 7, 8},
			PrimaryKey:     lorawan.AES128Key{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
			DesiredDevAddr: &devAddr,
		}
		assert.NoError(CreateDeviceKey(ctx, DB(), &dk))
		dk.CreatedAt = dk.CreatedAt.UTC().Truncate(time.Millisecond)
		dk.UpdatedAt = dk.UpdatedAt.UTC().Truncate(time.Millisecond)

		t.Run("Create duplicate", func(t *testing.T) {
			assert := require.New(t)

			dup := dk
			assert.Equal(ErrAlreadyExists, CreateDeviceKey(ctx, DB(), &dup))
		})

		t.Run("Get", func(t *testing.T) {
			assert := require.New(t)

			dkGet, err := GetDeviceKey(ctx, DB(), dk.DevEUI)
			assert.NoError(err)

			dkGet.CreatedAt = dkGet.CreatedAt.UTC().Truncate(time.Millisecond)
			dkGet.UpdatedAt = dkGet.UpdatedAt.UTC().Truncate(time.Millisecond)
			assert.Equal(dk, dkGet)
			assert.Equal(&devAddr, dkGet.DevAddr())
		})

		t.Run("Update", func(t *testing.T) {
			assert := require.New(t)

			reported := lorawan.DevAddr{3, 4, 0xcc, 0xdd}
			dk.ReportedDevAddr = &reported
			assert.NoError(UpdateDeviceKey(ctx, DB(), &dk))

			dkGet, err := GetDeviceKey(ctx, DB(), dk.DevEUI)
			assert.NoError(err)
			assert.Equal(&reported, dkGet.ReportedDevAddr)
			assert.Equal(&reported, dkGet.DevAddr())
		})

		t.Run("Delete", func(t *testing.T) {
			assert := require.New(t)

			assert.NoError(DeleteDeviceKey(ctx, DB(), dk.DevEUI))
			assert.Equal(ErrDoesNotExist, DeleteDeviceKey(ctx, DB(), dk.DevEUI))

			_, err := GetDeviceKey(ctx, DB(), dk.DevEUI)
			assert.Equal(ErrDoesNotExist, err)
		})
	})

	ts.T().Run("Get DevEUIs for DevAddr", func(t *testing.T) {
		assert := require.New(t)

		devAddr := lorawan.DevAddr{1, 2, 0xaa, 0xbb}
		otherAddr := lorawan.DevAddr{9, 9, 9, 9}

		devices := []DeviceKey{
			{
				DevEUI:         lorawan.EUI64{1, 1, 1, 1, 1, 1, 1, 1},
				PrimaryKey:     lorawan.AES128Key{1},
				DesiredDevAddr: &devAddr,
			},
			{
				DevEUI:          lorawan.EUI64{2, 2, 2, 2, 2, 2, 2, 2},
				PrimaryKey:      lorawan.AES128Key{2},
				ReportedDevAddr: &devAddr,
			},
			{
				DevEUI:          lorawan.EUI64{3, 3, 3, 3, 3, 3, 3, 3},
				PrimaryKey:      lorawan.AES128Key{3},
				DesiredDevAddr:  &devAddr,
				ReportedDevAddr: &devAddr,
			},
			{
				DevEUI:         lorawan.EUI64{4, 4, 4, 4, 4, 4, 4, 4},
				PrimaryKey:     lorawan.AES128Key{4},
				DesiredDevAddr: &otherAddr,
			},
			{
				DevEUI:     lorawan.EUI64{5, 5, 5, 5, 5, 5, 5, 5},
				PrimaryKey: lorawan.AES128Key{5},
			},
		}
		for i := range devices {
			assert.NoError(CreateDeviceKey(ctx, DB(), &devices[i]))
		}

		devEUIs, err := GetDeviceEUIsForDevAddr(ctx, DB(), devAddr)
		assert.NoError(err)
		assert.Equal([]lorawan.EUI64{
			{1, 1, 1, 1, 1, 1, 1, 1},
			{2, 2, 2, 2, 2, 2, 2, 2},
			{3, 3, 3, 3, 3, 3, 3, 3},
		}, devEUIs)

		devEUIs, err = GetDeviceEUIsForDevAddr(ctx, DB(), lorawan.DevAddr{0, 0, 0, 1})
		assert.NoError(err)
		assert.Len(devEUIs, 0)
	})
}

package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"github.com/brocaar/lorawan"
	"github.com/lorahub/lorahub-keyserver/internal/logging"
)

// DeviceKey defines the device-key record as stored in the registry. The
// DevAddr columns hold the address the device is expected to use (desired)
// and the address last seen on the air (reported); both may be unset for an
// OTAA device that has not been activated yet.
type DeviceKey struct {
	DevEUI          lorawan.EUI64     `db:"dev_eui"`
	CreatedAt       time.Time         `db:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at"`
	PrimaryKey      lorawan.AES128Key `db:"primary_key"`
	DesiredDevAddr  *lorawan.DevAddr  `db:"desired_dev_addr"`
	ReportedDevAddr *lorawan.DevAddr  `db:"reported_dev_addr"`
}

// DevAddr returns the current device address, preferring the reported over
// the desired one. Nil is returned when the device has no address bound.
func (d DeviceKey) DevAddr() *lorawan.DevAddr {
	if d.ReportedDevAddr != nil {
		return d.ReportedDevAddr
	}
	return d.DesiredDevAddr
}

// CreateDeviceKey creates the given device-key record.
func CreateDeviceKey(ctx context.Context, db sqlx.Execer, dk *DeviceKey) error {
	now := time.Now()
	dk.CreatedAt = now
	dk.UpdatedAt = now

	_, err := db.Exec(`
		insert into device_key (
			dev_eui,
			created_at,
			updated_at,
			primary_key,
			desired_dev_addr,
			reported_dev_addr
		) values ($1, $2, $3, $4, $5, $6)`,
		dk.DevEUI[:],
		dk.CreatedAt,
		dk.UpdatedAt,
		dk.PrimaryKey[:],
		devAddrBytes(dk.DesiredDevAddr),
		devAddrBytes(dk.ReportedDevAddr),
	)
	if err != nil {
		return handlePSQLError(err, "insert error")
	}

	log.WithFields(log.Fields{
		"dev_eui": dk.DevEUI,
		"ctx_id":  ctx.Value(logging.ContextIDKey),
	}).Info("device-key created")

	return nil
}

// GetDeviceKey returns the device-key record matching the given DevEUI.
func GetDeviceKey(ctx context.Context, db sqlx.Queryer, devEUI lorawan.EUI64) (DeviceKey, error) {
	var dk DeviceKey
	err := sqlx.Get(db, &dk, "select * from device_key where dev_eui = $1", devEUI[:])
	if err != nil {
		return dk, handlePSQLError(err, "select error")
	}

	return dk, nil
}

// UpdateDeviceKey updates the given device-key record.
func UpdateDeviceKey(ctx context.Context, db sqlx.Execer, dk *DeviceKey) error {
	dk.UpdatedAt = time.Now()

	res, err := db.Exec(`
		update device_key set
			updated_at = $2,
			primary_key = $3,
			desired_dev_addr = $4,
			reported_dev_addr = $5
		where
			dev_eui = $1`,
		dk.DevEUI[:],
		dk.UpdatedAt,
		dk.PrimaryKey[:],
		devAddrBytes(dk.DesiredDevAddr),
		devAddrBytes(dk.ReportedDevAddr),
	)
	if err != nil {
		return handlePSQLError(err, "update error")
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return handlePSQLError(err, "get rows affected error")
	}
	if ra == 0 {
		return ErrDoesNotExist
	}

	log.WithFields(log.Fields{
		"dev_eui": dk.DevEUI,
		"ctx_id":  ctx.Value(logging.ContextIDKey),
	}).Info("device-key updated")

	return nil
}

// DeleteDeviceKey deletes the device-key record matching the given DevEUI.
func DeleteDeviceKey(ctx context.Context, db sqlx.Execer, devEUI lorawan.EUI64) error {
	res, err := db.Exec("delete from device_key where dev_eui = $1", devEUI[:])
	if err != nil {
		return handlePSQLError(err, "delete error")
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return handlePSQLError(err, "get rows affected error")
	}
	if ra == 0 {
		return ErrDoesNotExist
	}

	log.WithFields(log.Fields{
		"dev_eui": devEUI,
		"ctx_id":  ctx.Value(logging.ContextIDKey),
	}).Info("device-key deleted")

	return nil
}

// GetDeviceEUIsForDevAddr returns the DevEUIs of all devices whose desired
// or reported DevAddr matches the given one. The DevAddr is not guaranteed
// to be unique: during an address handover window multiple devices can be
// bound to the same address. Only identities are returned; the key material
// comes from a secondary GetDeviceKey per device.
func GetDeviceEUIsForDevAddr(ctx context.Context, db sqlx.Queryer, devAddr lorawan.DevAddr) ([]lorawan.EUI64, error) {
	rows, err := db.Queryx(`
		select
			dev_eui
		from
			device_key
		where
			desired_dev_addr = $1
			or reported_dev_addr = $1
		order by
			created_at, dev_eui`,
		devAddr[:],
	)
	if err != nil {
		return nil, handlePSQLError(err, "select error")
	}
	defer rows.Close()

	var out []lorawan.EUI64
	for rows.Next() {
		var devEUI lorawan.EUI64
		if err := rows.Scan(&devEUI); err != nil {
			return nil, handlePSQLError(err, "scan error")
		}
		out = append(out, devEUI)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePSQLError(err, "rows error")
	}

	return out, nil
}

func devAddrBytes(a *lorawan.DevAddr) []byte {
	if a == nil {
		return nil
	}
	return a[:]
}

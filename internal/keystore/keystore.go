// Package keystore implements the device-key lookup flows: the join
// resolution path with distributed deduplication and anti-replay protection,
// the direct DevEUI lookup and the DevAddr fallback query.
package keystore

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/brocaar/lorawan"
	"github.com/lorahub/lorahub-keyserver/internal/config"
	"github.com/lorahub/lorahub-keyserver/internal/storage"
)

var (
	joinNonceTTL     time.Duration
	joinLockDuration time.Duration

	store DeviceStore
)

// DeviceStore defines the device registry interface. A missing device must
// be reported as storage.ErrDoesNotExist; any other error is treated as a
// registry fault and propagated to the caller.
type DeviceStore interface {
	// GetDeviceKey returns the device-key record for the given DevEUI.
	GetDeviceKey(ctx context.Context, devEUI lorawan.EUI64) (storage.DeviceKey, error)

	// GetDeviceEUIsForDevAddr returns the identities of all devices bound
	// to the given DevAddr (desired or reported).
	GetDeviceEUIsForDevAddr(ctx context.Context, devAddr lorawan.DevAddr) ([]lorawan.EUI64, error)
}

// DeviceKeyRecord holds a resolved device key. It is the per-request result
// shape shared by all lookup flows.
type DeviceKeyRecord struct {
	DevEUI     lorawan.EUI64     `json:"devEUI"`
	PrimaryKey lorawan.AES128Key `json:"primaryKey"`
	DevAddr    *lorawan.DevAddr  `json:"devAddr,omitempty"`
}

// JoinStatus defines the join resolution outcome.
type JoinStatus int

// Join resolution outcomes.
const (
	// JoinAccepted means the (DevEUI, DevNonce) pair was admitted. The key
	// list is empty when the device is unknown to the registry.
	JoinAccepted JoinStatus = iota

	// JoinUsedNonce means the pair was already admitted within the nonce
	// TTL window and is rejected as a replay or duplicate reception.
	JoinUsedNonce

	// JoinLockDenied means another caller holds the join lock for the
	// pair. The gateway is expected to rely on the join retransmission
	// built into the radio protocol.
	JoinLockDenied
)

// String implements fmt.Stringer.
func (s JoinStatus) String() string {
	switch s {
	case JoinAccepted:
		return "accepted"
	case JoinUsedNonce:
		return "used_nonce"
	case JoinLockDenied:
		return "lock_denied"
	default:
		return "unknown"
	}
}

// JoinResult holds the join resolution outcome and, on admission of a known
// device, the resolved key.
type JoinResult struct {
	Status JoinStatus
	Keys   []DeviceKeyRecord
}

// Setup configures the keystore.
func Setup(c config.Config) error {
	log.WithFields(log.Fields{
		"join_nonce_ttl":     c.KeyServer.Join.NonceTTL,
		"join_lock_duration": c.KeyServer.Join.LockDuration,
	}).Info("keystore: setting up keystore")

	joinNonceTTL = c.KeyServer.Join.NonceTTL
	joinLockDuration = c.KeyServer.Join.LockDuration
	store = &deviceKeyStore{}

	return nil
}

// SetDeviceStore sets the device registry implementation.
func SetDeviceStore(s DeviceStore) {
	store = s
}

// deviceKeyStore implements DeviceStore on top of the PostgreSQL-backed
// storage.
type deviceKeyStore struct{}

func (s *deviceKeyStore) GetDeviceKey(ctx context.Context, devEUI lorawan.EUI64) (storage.DeviceKey, error) {
	return storage.GetDeviceKey(ctx, storage.DB(), devEUI)
}

func (s *deviceKeyStore) GetDeviceEUIsForDevAddr(ctx context.Context, devAddr lorawan.DevAddr) ([]lorawan.EUI64, error) {
	return storage.GetDeviceEUIsForDevAddr(ctx, storage.DB(), devAddr)
}

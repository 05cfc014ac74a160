package storage

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/brocaar/lorawan"
)

// Templates used for generating Redis keys
const (
	joinNonceKeyTempl  = "lora:ks:join:%s:%s"
	joinNonceLockTempl = "lora:ks:join:%s:%s:lock"
)

// GetJoinNonce returns the join-nonce marker for the given DevEUI and
// DevNonce. The presence of the marker means the pair was already admitted
// within the marker TTL.
func GetJoinNonce(ctx context.Context, devEUI lorawan.EUI64, devNonce string) (string, error) {
	key := GetRedisKey(joinNonceKeyTempl, devEUI, devNonce)
	val, err := RedisClient().Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrDoesNotExist
		}
		return "", errors.Wrap(err, "get join-nonce error")
	}

	return val, nil
}

// CreateJoinNonce creates the join-nonce marker for the given DevEUI and
// DevNonce. The marker is created only when it does not yet exist, so for a
// given (DevEUI, DevNonce) pair at most one caller ever creates it within
// the TTL window. The returned bool indicates whether this caller created
// the marker.
func CreateJoinNonce(ctx context.Context, devEUI lorawan.EUI64, devNonce string, ttl time.Duration) (bool, error) {
	key := GetRedisKey(joinNonceKeyTempl, devEUI, devNonce)
	set, err := RedisClient().SetNX(ctx, key, devNonce, ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "create join-nonce error")
	}

	return set, nil
}

// AcquireJoinLock tries to acquire the join lock for the given DevEUI and
// DevNonce, using the gateway ID as holder token.
func AcquireJoinLock(ctx context.Context, devEUI lorawan.EUI64, devNonce, gatewayID string, lease time.Duration) (bool, error) {
	return AcquireLock(ctx, GetRedisKey(joinNonceLockTempl, devEUI, devNonce), gatewayID, lease)
}

// ReleaseJoinLock releases the join lock for the given DevEUI and DevNonce.
// The lock is only released when it is still held by the given gateway ID.
func ReleaseJoinLock(ctx context.Context, devEUI lorawan.EUI64, devNonce, gatewayID string) error {
	return ReleaseLock(ctx, GetRedisKey(joinNonceLockTempl, devEUI, devNonce), gatewayID)
}

package storage

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/brocaar/lorawan"
	"github.com/lorahub/lorahub-keyserver/internal/logging"
)

const frameCounterKeyTempl = "lora:ks:device:%s:fcnt"

// SaveFrameCounter saves the uplink frame-counter for the given device.
// The entry does not expire; it is removed on a fresh join.
func SaveFrameCounter(ctx context.Context, devEUI lorawan.EUI64, fCnt uint32) error {
	key := GetRedisKey(frameCounterKeyTempl, devEUI)
	if err := RedisClient().Set(ctx, key, fCnt, 0).Err(); err != nil {
		return errors.Wrap(err, "save frame-counter error")
	}

	return nil
}

// GetFrameCounter returns the stored uplink frame-counter for the given
// device.
func GetFrameCounter(ctx context.Context, devEUI lorawan.EUI64) (uint32, error) {
	key := GetRedisKey(frameCounterKeyTempl, devEUI)
	val, err := RedisClient().Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, ErrDoesNotExist
		}
		return 0, errors.Wrap(err, "get frame-counter error")
	}

	fCnt, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, "parse frame-counter error")
	}

	return uint32(fCnt), nil
}

// DeleteFrameCounter deletes the frame-counter entry for the given device,
// so the replay-protection counter starts over for the new session.
func DeleteFrameCounter(ctx context.Context, devEUI lorawan.EUI64) error {
	key := GetRedisKey(frameCounterKeyTempl, devEUI)
	val, err := RedisClient().Del(ctx, key).Result()
	if err != nil {
		return errors.Wrap(err, "delete frame-counter error")
	}
	if val == 0 {
		return ErrDoesNotExist
	}

	log.WithFields(log.Fields{
		"dev_eui": devEUI,
		"ctx_id":  ctx.Value(logging.ContextIDKey),
	}).Info("storage: frame-counter deleted")

	return nil
}

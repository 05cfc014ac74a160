package storage

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// releaseLockScript deletes the lock key only when it is still held by the
// given token, so a lock that expired and was re-acquired by another caller
// is never released by the previous holder.
var releaseLockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// AcquireLock tries to acquire the lock on the given key for the given
// holder token. It does not block: when the lock is already held within its
// lease, false is returned.
func AcquireLock(ctx context.Context, key, token string, lease time.Duration) (bool, error) {
	set, err := RedisClient().SetNX(ctx, key, token, lease).Result()
	if err != nil {
		return false, errors.Wrap(err, "acquire lock error")
	}

	return set, nil
}

// ReleaseLock releases the lock on the given key. It is a no-op when the
// lock is not held or is held by a different token.
func ReleaseLock(ctx context.Context, key, token string) error {
	if err := releaseLockScript.Run(ctx, RedisClient(), []string{key}, token).Err(); err != nil {
		return errors.Wrap(err, "release lock error")
	}

	return nil
}

package test

import (
	"context"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"

	"github.com/lorahub/lorahub-keyserver/internal/config"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// GetConfig returns the test configuration.
func GetConfig() config.Config {
	var c config.Config

	c.Redis.Servers = []string{"localhost:6379"}
	c.PostgreSQL.DSN = "postgres://localhost/lorahub_ks_test?sslmode=disable"
	c.PostgreSQL.Automigrate = true
	c.KeyServer.Join.NonceTTL = time.Second * 60
	c.KeyServer.Join.LockDuration = time.Second * 10

	if v := os.Getenv("TEST_REDIS_SERVER"); v != "" {
		c.Redis.Servers = []string{v}
	}
	if v := os.Getenv("TEST_POSTGRES_DSN"); v != "" {
		c.PostgreSQL.DSN = v
	}

	return c
}

// MustFlushRedis flushes the Redis database.
func MustFlushRedis(c redis.UniversalClient) {
	if err := c.FlushAll(context.Background()).Err(); err != nil {
		log.Fatal("must flush redis error", err)
	}
}

// MustResetDB removes all data from the database tables.
func MustResetDB(db *sqlx.DB) {
	if _, err := db.Exec("delete from device_key"); err != nil {
		log.Fatal("reset db error", err)
	}
}

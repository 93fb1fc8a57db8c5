// Package distlock keeps the collection jobs single-flight across
// instances. Redis is the primary backend; deployments that run
// without Redis fall back to advisory locks on the job database.
package distlock

import (
	"context"
	"database/sql"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistLock serializes one job across processes. A lock instance
// belongs to one goroutine; concurrent holders need their own.
type DistLock interface {
	// Acquire claims the lock without blocking. false means another
	// instance holds it.
	Acquire(ctx context.Context) (bool, error)
	// Release frees the lock when this instance still owns it.
	Release(ctx context.Context) error
}

// Extender renews a held lock so a long collection run outlives the
// initial TTL. Advisory locks last for the whole session and do not
// need it, so only the Redis lock implements this.
type Extender interface {
	Extend(ctx context.Context) error
}

// NewLock picks the backend for a job key: Redis when a client is
// configured, otherwise an advisory lock derived from the key hash.
func NewLock(redisClient *redis.Client, db *sql.DB, key string, ttl time.Duration) DistLock {
	if redisClient != nil {
		return NewRedisLock(redisClient, key, ttl)
	}
	return NewAdvisoryLock(db, key)
}

// AdvisoryLock maps a job key onto a pg_try_advisory_lock id. The
// session scope gives the same crash-safety as a Redis TTL: a dropped
// connection frees the lock.
type AdvisoryLock struct {
	db     *sql.DB
	lockID int64
}

// NewAdvisoryLock hashes the job key into the advisory lock space.
func NewAdvisoryLock(db *sql.DB, key string) *AdvisoryLock {
	h := fnv.New64a()
	h.Write([]byte(key))
	return &AdvisoryLock{db: db, lockID: int64(h.Sum64())}
}

func (l *AdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	var held bool
	err := l.db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.lockID).Scan(&held)
	return held, err
}

func (l *AdvisoryLock) Release(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.lockID)
	return err
}

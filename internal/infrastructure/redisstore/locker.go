package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Locker ejecuta tareas bajo un lock distribuido (una sola instancia a la vez).
type Locker struct {
	client *redislock.Client
}

// NewLocker construye el locker sobre el cliente Redis.
func NewLocker(rdb redis.Scripter) *Locker {
	return &Locker{client: redislock.New(rdb)}
}

// WithLock obtiene key por ttl y ejecuta fn. Si otra instancia lo tiene devuelve (false, nil)
// sin ejecutar fn.
func (l *Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) (bool, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis: obtener lock %s: %w", key, err)
	}
	defer func() { _ = lock.Release(context.WithoutCancel(ctx)) }()

	return true, fn(ctx)
}

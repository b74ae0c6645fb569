package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Importaciones-api/internal/application/auth"
)

var _ auth.TokenDenylist = (*TokenDenylist)(nil)

const revokedPrefix = "auth:revoked:"

// TokenDenylist guarda el jti de los tokens cerrados hasta su expiración natural.
type TokenDenylist struct {
	rdb redis.Cmdable
	now func() time.Time
}

// NewTokenDenylist construye la lista sobre el cliente dado.
func NewTokenDenylist(rdb redis.Cmdable) *TokenDenylist {
	return &TokenDenylist{rdb: rdb, now: time.Now}
}

// RevokedKey clave Redis de un jti revocado.
func RevokedKey(tokenID string) string {
	return revokedPrefix + tokenID
}

// Revoke marca el token como revocado. Un token ya expirado no se guarda.
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(d.now()).Truncate(time.Second)
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, RevokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis: revocar token: %w", err)
	}
	return nil
}

// IsRevoked indica si el jti está en la lista.
func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.rdb.Exists(ctx, RevokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis: consultar token: %w", err)
	}
	return n > 0, nil
}

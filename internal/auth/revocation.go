package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/redis/go-redis/v9"
)

// Revoker remembers blacklisted refresh tokens until they would have expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

var revoker Revoker = NewMemoryRevoker()

func SetRevoker(r Revoker) {
	revoker = r
}

// VerifyRefresh additionally rejects refresh tokens that were blacklisted.
func VerifyRefresh(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := Verify(tokenString, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	revoked, err := revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

func Revoke(ctx context.Context, claims *Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return revoker.Revoke(ctx, claims.ID, ttl)
}

type MemoryRevoker struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{entries: make(map[string]time.Time)}
}

func (m *MemoryRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, expires := range m.entries {
		if now.After(expires) {
			delete(m.entries, id)
		}
	}

	m.entries[jti] = now.Add(ttl)
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expires, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expires) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

const redisRevokedPrefix = "timetrack:revoked:"

type RedisRevoker struct {
	rdb *redis.Client
}

// NewRedisRevoker connects to url and verifies the server answers.
func NewRedisRevoker(url string) (*RedisRevoker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisRevoker{rdb: rdb}, nil
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return r.rdb.Set(ctx, redisRevokedPrefix+jti, "1", ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, redisRevokedPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisRevoker) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisRevoker) Close() error {
	return r.rdb.Close()
}

// Refresh exchanges a live refresh token for a new access token. The user row
// is reloaded by the authentication middleware on every request, so the
// identity carried over from the refresh claims is enough here.
func Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	user := &models.User{
		BaseModel: models.BaseModel{ID: claims.UserID},
		Username:  claims.Username,
		IsStaff:   claims.IsStaff,
	}
	return IssueAccess(user)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the revocation store when it is remote.
func Ping(ctx context.Context) error {
	if p, ok := revoker.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPNotFound is returned when no code is outstanding for an email,
// whether because none was requested, it expired, or it was consumed.
var ErrOTPNotFound = errors.New("otp not found")

// OTPStore keeps at most one outstanding code hash per email. Put on an
// existing email overwrites, which is what invalidates a superseded code.
type OTPStore interface {
	Put(ctx context.Context, email, hash string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

const otpKeyPrefix = "otp:"

// RedisOTPStore stores code hashes in Redis with a TTL.
type RedisOTPStore struct {
	rdb *redis.Client
}

func NewRedisOTPStore(rdb *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{rdb: rdb}
}

func (s *RedisOTPStore) Put(ctx context.Context, email, hash string, ttl time.Duration) error {
	return s.rdb.Set(ctx, otpKeyPrefix+email, hash, ttl).Err()
}

func (s *RedisOTPStore) Get(ctx context.Context, email string) (string, error) {
	hash, err := s.rdb.Get(ctx, otpKeyPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (s *RedisOTPStore) Delete(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, otpKeyPrefix+email).Err()
}

type otpEntry struct {
	hash      string
	expiresAt time.Time
}

// MemoryOTPStore is the in-process fallback used when Redis is not
// configured, and the fixture for tests.
type MemoryOTPStore struct {
	mu      sync.Mutex
	entries map[string]otpEntry

	now func() time.Time
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{
		entries: make(map[string]otpEntry),
		now:     time.Now,
	}
}

func (s *MemoryOTPStore) Put(_ context.Context, email, hash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = otpEntry{hash: hash, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryOTPStore) Get(_ context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	if !ok {
		return "", ErrOTPNotFound
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, email)
		return "", ErrOTPNotFound
	}
	return e.hash, nil
}

func (s *MemoryOTPStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
	return nil
}

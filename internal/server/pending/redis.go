package pending

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/dmitrijs2005/imagekeeper/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "pending"
	redisMaxRetries  = 4
	defaultRetention = 5 * time.Minute
)

// ErrContention means a WATCH transaction kept losing to concurrent
// writers. The record may well exist.
var ErrContention = errors.New("pending store contention")

// RedisStore keeps pending registrations in Redis so several server
// instances can share them. Keys live for the time left until expiry plus a
// retention window, so an expired record is still seen (and reported as
// expired) for a while; Redis key expiry stands in for Sweep.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
	now       func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:    client,
		prefix:    redisKeyPrefix,
		retention: defaultRetention,
		now:       time.Now,
	}
}

func (s *RedisStore) key(email string) string {
	return s.prefix + ":" + email
}

func (s *RedisStore) ttl(rec *models.PendingRegistration) time.Duration {
	left := rec.ExpiresAt.Sub(s.now())
	if left < 0 {
		left = 0
	}
	return left + s.retention
}

func (s *RedisStore) Put(ctx context.Context, rec *models.PendingRegistration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(rec.Email), data, s.ttl(rec)).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, email string) (*models.PendingRegistration, error) {
	data, err := s.client.Get(ctx, s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNoPendingRequest
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decode(data)
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, s.key(email)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, email, otp string, now time.Time) (*models.PendingRegistration, error) {
	key := s.key(email)

	var matched *models.PendingRegistration
	err := s.watch(ctx, key, func(tx *redis.Tx) error {
		rec, err := s.load(ctx, tx, key)
		if err != nil {
			return err
		}

		if rec.Expired(now) {
			if err := del(ctx, tx, key); err != nil {
				return err
			}
			return common.ErrOTPExpired
		}
		if subtle.ConstantTimeCompare([]byte(rec.OTP), []byte(otp)) != 1 {
			return common.ErrInvalidOTP
		}
		if err := del(ctx, tx, key); err != nil {
			return err
		}
		matched = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}

func (s *RedisStore) Reissue(ctx context.Context, email, otp string, expiresAt time.Time) (*models.PendingRegistration, error) {
	key := s.key(email)

	var updated *models.PendingRegistration
	err := s.watch(ctx, key, func(tx *redis.Tx) error {
		rec, err := s.load(ctx, tx, key)
		if err != nil {
			return err
		}
		rec.OTP = otp
		rec.ExpiresAt = expiresAt

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl(rec))
			return nil
		})
		if err != nil {
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RedisStore) Restore(ctx context.Context, rec *models.PendingRegistration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.client.SetNX(ctx, s.key(rec.Email), data, s.ttl(rec)).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}

// Sweep is a no-op: keys carry their own TTL.
func (s *RedisStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

// watch runs fn under WATCH key, retrying when a concurrent writer
// invalidates the transaction.
func (s *RedisStore) watch(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for i := 0; i < redisMaxRetries; i++ {
		err := s.client.Watch(ctx, fn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, common.ErrNoPendingRequest),
				errors.Is(err, common.ErrOTPExpired),
				errors.Is(err, common.ErrInvalidOTP):
				return err
			default:
				return fmt.Errorf("redis watch: %w", err)
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %w after %d attempts", common.ErrorInternal, ErrContention, redisMaxRetries)
}

func (s *RedisStore) load(ctx context.Context, tx *redis.Tx, key string) (*models.PendingRegistration, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNoPendingRequest
		}
		return nil, err
	}
	return decode(data)
}

func del(ctx context.Context, tx *redis.Tx, key string) error {
	_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		return nil
	})
	return err
}

func decode(data []byte) (*models.PendingRegistration, error) {
	rec := &models.PendingRegistration{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode pending record: %w", err)
	}
	return rec, nil
}

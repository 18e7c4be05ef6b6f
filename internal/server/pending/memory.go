package pending

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/dmitrijs2005/imagekeeper/internal/server/models"
)

const defaultShardCount = 32

type shard struct {
	mu      sync.Mutex
	records map[string]*models.PendingRegistration
}

// MemoryStore is an in-process Store. Emails are spread over a fixed set of
// mutex-guarded shards so unrelated keys do not contend and a sweep never
// holds more than one shard lock.
type MemoryStore struct {
	shards []*shard
}

func NewMemoryStore() *MemoryStore {
	return newMemoryStore(defaultShardCount)
}

func newMemoryStore(n int) *MemoryStore {
	s := &MemoryStore{shards: make([]*shard, n)}
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[string]*models.PendingRegistration)}
	}
	return s
}

func (s *MemoryStore) shardFor(email string) *shard {
	return s.shards[xxhash.Sum64String(email)%uint64(len(s.shards))]
}

func (s *MemoryStore) Put(_ context.Context, rec *models.PendingRegistration) error {
	sh := s.shardFor(rec.Email)
	sh.mu.Lock()
	sh.records[rec.Email] = clone(rec)
	sh.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, email string) (*models.PendingRegistration, error) {
	sh := s.shardFor(email)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[email]
	if !ok {
		return nil, common.ErrNoPendingRequest
	}
	return clone(rec), nil
}

func (s *MemoryStore) Delete(_ context.Context, email string) error {
	sh := s.shardFor(email)
	sh.mu.Lock()
	delete(sh.records, email)
	sh.mu.Unlock()
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, email, otp string, now time.Time) (*models.PendingRegistration, error) {
	sh := s.shardFor(email)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[email]
	if !ok {
		return nil, common.ErrNoPendingRequest
	}
	if rec.Expired(now) {
		delete(sh.records, email)
		return nil, common.ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(rec.OTP), []byte(otp)) != 1 {
		return nil, common.ErrInvalidOTP
	}

	delete(sh.records, email)
	return rec, nil
}

func (s *MemoryStore) Reissue(_ context.Context, email, otp string, expiresAt time.Time) (*models.PendingRegistration, error) {
	sh := s.shardFor(email)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[email]
	if !ok {
		return nil, common.ErrNoPendingRequest
	}
	rec.OTP = otp
	rec.ExpiresAt = expiresAt
	return clone(rec), nil
}

func (s *MemoryStore) Restore(_ context.Context, rec *models.PendingRegistration) error {
	sh := s.shardFor(rec.Email)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.records[rec.Email]; !ok {
		sh.records[rec.Email] = clone(rec)
	}
	return nil
}

func (s *MemoryStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	for _, sh := range s.shards {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		sh.mu.Lock()
		for email, rec := range sh.records {
			if rec.ExpiresAt.Before(now) {
				delete(sh.records, email)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed, nil
}

// Len reports the number of records currently held.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.records)
		sh.mu.Unlock()
	}
	return n
}

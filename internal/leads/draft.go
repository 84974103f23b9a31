package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DraftStore persists a partially filled record so a visitor who closes
// the quote modal can resume it later. Persistence is an optional
// enhancement: a nil store is valid and means "no drafts".
type DraftStore interface {
	Save(ctx context.Context, sessionID string, draft *Record) error
	Load(ctx context.Context, sessionID string) (*Record, error)
	Clear(ctx context.Context, sessionID string) error
}

// RedisDraftStore keeps drafts in Redis under a TTL so abandoned drafts
// age out on their own.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{client: client, ttl: ttl}
}

func draftKey(sessionID string) string {
	return fmt.Sprintf("lead:draft:%s", sessionID)
}

func (s *RedisDraftStore) Save(ctx context.Context, sessionID string, draft *Record) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Load returns (nil, nil) when no draft exists.
func (s *RedisDraftStore) Load(ctx context.Context, sessionID string) (*Record, error) {
	data, err := s.client.Get(ctx, draftKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	var record Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &record, nil
}

func (s *RedisDraftStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, draftKey(sessionID)).Err()
}

// MemoryDraftStore is the in-process fallback used when Redis is not
// configured, and in tests.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]*Record
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]*Record)}
}

func (s *MemoryDraftStore) Save(_ context.Context, sessionID string, draft *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *draft
	s.drafts[sessionID] = &copied
	return nil
}

func (s *MemoryDraftStore) Load(_ context.Context, sessionID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *draft
	return &copied, nil
}

func (s *MemoryDraftStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, sessionID)
	return nil
}

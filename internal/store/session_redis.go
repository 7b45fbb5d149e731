package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "chaperone:session:"

// RedisSessionStore keeps detector sessions in Redis so they survive process
// restarts and are shared across replicas. Entries expire after the
// configured TTL; an idle conversation simply starts over with an empty
// session.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, conversationID uuid.UUID) (*domain.DetectorSession, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &domain.DetectorSession{ConversationID: conversationID}, nil
		}
		return nil, err
	}
	var sess domain.DetectorSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		// A corrupt entry is dropped rather than poisoning the conversation.
		_ = s.rdb.Del(ctx, sessionKey(conversationID)).Err()
		return &domain.DetectorSession{ConversationID: conversationID}, nil
	}
	return &sess, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, sess *domain.DetectorSession) error {
	sess.UpdatedAt = time.Now()
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionKey(sess.ConversationID), raw, s.ttl).Err()
}

func (s *RedisSessionStore) Clear(ctx context.Context, conversationID uuid.UUID) error {
	return s.rdb.Del(ctx, sessionKey(conversationID)).Err()
}

func sessionKey(conversationID uuid.UUID) string {
	return sessionKeyPrefix + conversationID.String()
}

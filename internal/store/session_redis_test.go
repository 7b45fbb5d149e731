package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dfarias/chaperone/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisSessionStore(rdb, time.Hour), mr
}

func TestRedisSessionStore_GetMissingReturnsEmptySession(t *testing.T) {
	s, _ := setupRedisStore(t)
	id := uuid.New()

	sess, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, id, sess.ConversationID)
	require.Empty(t, sess.Replies)
}

func TestRedisSessionStore_PutGetRoundTrip(t *testing.T) {
	s, _ := setupRedisStore(t)
	ctx := context.Background()
	id := uuid.New()

	sess := &domain.DetectorSession{ConversationID: id}
	sess.AppendReply("the shift pays R$ 2.500")
	sess.AppendAmount(domain.AmountMention{Raw: "R$ 2.500", Value: 2500})
	sess.AppendEntity("Hospital Santa Clara")
	require.NoError(t, s.Put(ctx, sess))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, sess.Replies, got.Replies)
	require.Equal(t, sess.Amounts, got.Amounts)
	require.Equal(t, sess.Entities, got.Entities)
}

func TestRedisSessionStore_PutSetsTTL(t *testing.T) {
	s, mr := setupRedisStore(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, s.Put(ctx, &domain.DetectorSession{ConversationID: id}))
	require.Greater(t, mr.TTL(sessionKey(id)), time.Duration(0))
}

func TestRedisSessionStore_Clear(t *testing.T) {
	s, _ := setupRedisStore(t)
	ctx := context.Background()
	id := uuid.New()

	sess := &domain.DetectorSession{ConversationID: id}
	sess.AppendReply("hello")
	require.NoError(t, s.Put(ctx, sess))
	require.NoError(t, s.Clear(ctx, id))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Empty(t, got.Replies)
}

func TestRedisSessionStore_CorruptEntryDropped(t *testing.T) {
	s, mr := setupRedisStore(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, mr.Set(sessionKey(id), "{not json"))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Empty(t, got.Replies)
	require.False(t, mr.Exists(sessionKey(id)))
}

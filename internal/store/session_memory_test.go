package store

import (
	"context"
	"testing"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/google/uuid"
)

func TestMemorySessionStore_LazyCreate(t *testing.T) {
	s := NewMemorySessionStore()
	id := uuid.New()

	sess, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess.ConversationID != id {
		t.Fatalf("expected session for %s, got %s", id, sess.ConversationID)
	}
	if len(sess.Replies) != 0 {
		t.Fatalf("expected empty session, got %d replies", len(sess.Replies))
	}
}

func TestMemorySessionStore_CopiesOnPutAndGet(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()
	id := uuid.New()

	sess := &domain.DetectorSession{ConversationID: id}
	sess.AppendReply("first")
	if err := s.Put(ctx, sess); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	// Mutating the original must not leak into the store.
	sess.AppendReply("second")

	got, _ := s.Get(ctx, id)
	if len(got.Replies) != 1 {
		t.Fatalf("expected 1 stored reply, got %d", len(got.Replies))
	}

	// Mutating the returned copy must not leak either.
	got.AppendReply("third")
	again, _ := s.Get(ctx, id)
	if len(again.Replies) != 1 {
		t.Fatalf("expected stored session unchanged, got %d replies", len(again.Replies))
	}
}

func TestMemorySessionStore_Clear(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()
	id := uuid.New()

	sess := &domain.DetectorSession{ConversationID: id}
	sess.AppendReply("hello")
	_ = s.Put(ctx, sess)
	_ = s.Clear(ctx, id)

	got, _ := s.Get(ctx, id)
	if len(got.Replies) != 0 {
		t.Fatal("expected cleared session")
	}
}

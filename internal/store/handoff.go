package store

import (
	"context"
	"errors"
	"time"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HandoffStore struct {
	db *pgxpool.Pool
}

func NewHandoffStore(db *pgxpool.Pool) *HandoffStore {
	return &HandoffStore{db: db}
}

func (s *HandoffStore) Create(ctx context.Context, h *domain.HandoffRecord) error {
	if h.Status == "" {
		h.Status = domain.HandoffPending
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO handoffs (conversation_id, reason, trigger_type, status,
		                       last_reply_excerpt, interaction_count, duration_seconds,
		                       policy_decision_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		h.ConversationID, h.Reason, h.TriggerType, h.Status,
		h.LastReplyExcerpt, h.InteractionCount, int64(h.Duration.Seconds()),
		h.PolicyDecisionID,
	).Scan(&h.ID, &h.CreatedAt)
}

func (s *HandoffStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.HandoffRecord, error) {
	h, err := s.scanOne(s.db.QueryRow(ctx,
		selectHandoff+` WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

// Resolve marks a single record resolved and returns its updated form. The
// caller decides what an already-resolved record means.
func (s *HandoffStore) Resolve(ctx context.Context, id uuid.UUID, resolvedBy, notes string) (*domain.HandoffRecord, error) {
	h, err := s.scanOne(s.db.QueryRow(ctx,
		`UPDATE handoffs
		 SET status = $2, resolved_by = $3, notes = $4, resolved_at = now()
		 WHERE id = $1
		 RETURNING `+handoffColumns,
		id, domain.HandoffResolved, resolvedBy, notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

// ResolvePendingByConversation closes out every pending record for the
// conversation, returning how many were updated.
func (s *HandoffStore) ResolvePendingByConversation(ctx context.Context, conversationID uuid.UUID, resolvedBy, notes string) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE handoffs
		 SET status = $2, resolved_by = $3, notes = $4, resolved_at = now()
		 WHERE conversation_id = $1 AND status = $5`,
		conversationID, domain.HandoffResolved, resolvedBy, notes, domain.HandoffPending,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *HandoffStore) ListPendingOlderThan(ctx context.Context, age time.Duration) ([]domain.HandoffRecord, error) {
	rows, err := s.db.Query(ctx,
		selectHandoff+` WHERE status = $1 AND created_at < now() - $2::interval
		 ORDER BY created_at`,
		domain.HandoffPending, age.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.HandoffRecord
	for rows.Next() {
		h, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *h)
	}
	return records, rows.Err()
}

const handoffColumns = `id, conversation_id, reason, trigger_type, status,
	last_reply_excerpt, interaction_count, duration_seconds,
	policy_decision_id, resolved_by, notes, resolved_at, created_at`

const selectHandoff = `SELECT ` + handoffColumns + ` FROM handoffs`

func (s *HandoffStore) scanOne(row pgx.Row) (*domain.HandoffRecord, error) {
	var h domain.HandoffRecord
	var durationSeconds int64
	var resolvedBy, notes *string
	if err := row.Scan(&h.ID, &h.ConversationID, &h.Reason, &h.TriggerType, &h.Status,
		&h.LastReplyExcerpt, &h.InteractionCount, &durationSeconds,
		&h.PolicyDecisionID, &resolvedBy, &notes, &h.ResolvedAt, &h.CreatedAt); err != nil {
		return nil, err
	}
	h.Duration = time.Duration(durationSeconds) * time.Second
	if resolvedBy != nil {
		h.ResolvedBy = *resolvedBy
	}
	if notes != nil {
		h.Notes = *notes
	}
	return &h, nil
}

package store

import (
	"context"
	"errors"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversationStore struct {
	db *pgxpool.Pool
}

func NewConversationStore(db *pgxpool.Pool) *ConversationStore {
	return &ConversationStore{db: db}
}

func (s *ConversationStore) Create(ctx context.Context, c *domain.Conversation) error {
	if c.State == "" {
		c.State = domain.StateActive
	}
	if c.Controller == "" {
		c.Controller = domain.ControllerAgent
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO conversations (counterparty_id, state, controller)
		 VALUES ($1, $2, $3)
		 RETURNING id, confrontation_count, created_at, updated_at`,
		c.CounterpartyID, c.State, c.Controller,
	).Scan(&c.ID, &c.ConfrontationCount, &c.CreatedAt, &c.UpdatedAt)
}

func (s *ConversationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	var c domain.Conversation
	err := s.db.QueryRow(ctx,
		`SELECT id, counterparty_id, state, controller, escalation_reason,
		        confrontation_count, created_at, updated_at
		 FROM conversations WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.CounterpartyID, &c.State, &c.Controller, &c.EscalationReason,
		&c.ConfrontationCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *ConversationStore) UpdateState(ctx context.Context, id uuid.UUID, state domain.ConversationState, controller domain.Controller, escalationReason *string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE conversations
		 SET state = $2, controller = $3, escalation_reason = $4, updated_at = now()
		 WHERE id = $1`,
		id, state, controller, escalationReason,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementConfrontations bumps the counter in a single statement so
// concurrent deliveries cannot lose an observation.
func (s *ConversationStore) IncrementConfrontations(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`UPDATE conversations
		 SET confrontation_count = confrontation_count + 1, updated_at = now()
		 WHERE id = $1
		 RETURNING confrontation_count`,
		id,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return count, nil
}

package store

import (
	"context"
	"errors"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CounterpartyStore struct {
	db *pgxpool.Pool
}

func NewCounterpartyStore(db *pgxpool.Pool) *CounterpartyStore {
	return &CounterpartyStore{db: db}
}

func (s *CounterpartyStore) Create(ctx context.Context, p *domain.Counterparty) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO counterparties (name, contact, specialty)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		p.Name, p.Contact, p.Specialty,
	).Scan(&p.ID, &p.CreatedAt)
}

func (s *CounterpartyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Counterparty, error) {
	var p domain.Counterparty
	err := s.db.QueryRow(ctx,
		`SELECT id, name, contact, specialty, created_at
		 FROM counterparties WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Contact, &p.Specialty, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

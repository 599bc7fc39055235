package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"talentgate/internal/candidate/models"
	id "talentgate/pkg/domain"
	"talentgate/pkg/requestcontext"
)

// PostgresCandidateStore persists each candidate as one JSONB document.
// Document-per-aggregate keeps the storage model aligned with the
// no-multi-document-transaction assumption: a Save never touches another
// aggregate's row.
type PostgresCandidateStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresCandidateStore {
	return &PostgresCandidateStore{pool: pool}
}

func (s *PostgresCandidateStore) Save(ctx context.Context, candidate *models.Candidate) error {
	doc, err := json.Marshal(candidate)
	if err != nil {
		return fmt.Errorf("marshal candidate document: %w", err)
	}

	query := `
		INSERT INTO candidates (id, email, document, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.pool.Exec(ctx, query,
		candidate.ID.String(), candidate.Email, doc, requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("save candidate: %w", err)
	}
	return nil
}

func (s *PostgresCandidateStore) FindByID(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	query := `SELECT document FROM candidates WHERE id = $1`
	return s.scanOne(s.pool.QueryRow(ctx, query, candidateID.String()))
}

func (s *PostgresCandidateStore) FindByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	query := `SELECT document FROM candidates WHERE lower(email) = lower($1)`
	return s.scanOne(s.pool.QueryRow(ctx, query, email))
}

func (s *PostgresCandidateStore) scanOne(row pgx.Row) (*models.Candidate, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find candidate: %w", err)
	}
	var candidate models.Candidate
	if err := json.Unmarshal(doc, &candidate); err != nil {
		return nil, fmt.Errorf("unmarshal candidate document: %w", err)
	}
	return &candidate, nil
}

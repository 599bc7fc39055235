package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"talentgate/internal/evaluation/models"
	id "talentgate/pkg/domain"
)

// PostgresResultStore persists each attempt as one JSONB document. The
// (candidate_id, round_id, completed_at) columns are lifted out of the
// document for querying; the document stays the source of truth.
type PostgresResultStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresResultStore {
	return &PostgresResultStore{pool: pool}
}

func (s *PostgresResultStore) Append(ctx context.Context, result *models.RoundResult) error {
	doc, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal round result: %w", err)
	}
	query := `
		INSERT INTO round_results (id, candidate_id, round_id, completed_at, document)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.pool.Exec(ctx, query,
		result.ID.String(), result.CandidateID.String(), result.RoundID.String(),
		result.CompletedAt, doc)
	if err != nil {
		return fmt.Errorf("append round result: %w", err)
	}
	return nil
}

func (s *PostgresResultStore) ListByCandidateAndRound(ctx context.Context, candidateID id.CandidateID, roundID id.RoundID) ([]*models.RoundResult, error) {
	query := `
		SELECT document FROM round_results
		WHERE candidate_id = $1 AND round_id = $2
		ORDER BY completed_at DESC
	`
	rows, err := s.pool.Query(ctx, query, candidateID.String(), roundID.String())
	if err != nil {
		return nil, fmt.Errorf("list round results: %w", err)
	}
	return scanResults(rows)
}

func (s *PostgresResultStore) ListByCandidate(ctx context.Context, candidateID id.CandidateID) ([]*models.RoundResult, error) {
	query := `
		SELECT document FROM round_results
		WHERE candidate_id = $1
		ORDER BY completed_at DESC
	`
	rows, err := s.pool.Query(ctx, query, candidateID.String())
	if err != nil {
		return nil, fmt.Errorf("list round results: %w", err)
	}
	return scanResults(rows)
}

func scanResults(rows pgx.Rows) ([]*models.RoundResult, error) {
	defer rows.Close()
	var out []*models.RoundResult
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan round result: %w", err)
		}
		var result models.RoundResult
		if err := json.Unmarshal(doc, &result); err != nil {
			return nil, fmt.Errorf("unmarshal round result: %w", err)
		}
		out = append(out, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate round results: %w", err)
	}
	return out, nil
}

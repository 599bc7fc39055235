package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"talentgate/internal/interviewer/models"
	id "talentgate/pkg/domain"
	"talentgate/pkg/requestcontext"
)

// PostgresInterviewerStore persists each interviewer as one JSONB document.
type PostgresInterviewerStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresInterviewerStore {
	return &PostgresInterviewerStore{pool: pool}
}

func (s *PostgresInterviewerStore) Save(ctx context.Context, interviewer *models.Interviewer) error {
	doc, err := json.Marshal(interviewer)
	if err != nil {
		return fmt.Errorf("marshal interviewer document: %w", err)
	}
	query := `
		INSERT INTO interviewers (id, email, document, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.pool.Exec(ctx, query,
		interviewer.ID.String(), interviewer.Email, doc, requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("save interviewer: %w", err)
	}
	return nil
}

func (s *PostgresInterviewerStore) FindByID(ctx context.Context, interviewerID id.InterviewerID) (*models.Interviewer, error) {
	query := `SELECT document FROM interviewers WHERE id = $1`
	row := s.pool.QueryRow(ctx, query, interviewerID.String())
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find interviewer: %w", err)
	}
	return unmarshalInterviewer(doc)
}

func (s *PostgresInterviewerStore) List(ctx context.Context) ([]*models.Interviewer, error) {
	query := `SELECT document FROM interviewers`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list interviewers: %w", err)
	}
	defer rows.Close()

	var out []*models.Interviewer
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan interviewer: %w", err)
		}
		interviewer, err := unmarshalInterviewer(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, interviewer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list interviewers: %w", err)
	}
	return out, nil
}

func unmarshalInterviewer(doc []byte) (*models.Interviewer, error) {
	var interviewer models.Interviewer
	if err := json.Unmarshal(doc, &interviewer); err != nil {
		return nil, fmt.Errorf("unmarshal interviewer document: %w", err)
	}
	return &interviewer, nil
}

// Package postgres implements audit.Store using the transactional outbox
// pattern. Events are written to the outbox table and published to Kafka by
// the outbox worker; Kafka is the source of truth for downstream consumers.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // postgres driver for database/sql

	audit "talentgate/pkg/platform/audit"
)

type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects a database/sql pool for the outbox store.
func Open(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open audit outbox db: %w", err)
	}
	return db, nil
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// audit.Event for deserialization by consumers.
type outboxPayload struct {
	ID          string `json:"ID"`
	Category    string `json:"Category"`
	Timestamp   string `json:"Timestamp"`
	CandidateID string `json:"CandidateID,omitempty"`
	Subject     string `json:"Subject"`
	Action      string `json:"Action"`
	ActorID     string `json:"ActorID,omitempty"`
	Decision    string `json:"Decision,omitempty"`
	Reason      string `json:"Reason,omitempty"`
	RequestID   string `json:"RequestID,omitempty"`
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	// Always derive category from action - eventCategories is the source of truth.
	category := audit.AuditEvent(event.Action).Category()

	payload := outboxPayload{
		ID:          eventID.String(),
		Category:    string(category),
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		CandidateID: event.CandidateID,
		Subject:     event.Subject,
		Action:      event.Action,
		ActorID:     event.ActorID,
		Decision:    event.Decision,
		Reason:      event.Reason,
		RequestID:   event.RequestID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	query := `
		INSERT INTO audit_outbox (id, category, candidate_id, action, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		eventID, string(category), event.CandidateID, event.Action, body, event.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit outbox event: %w", err)
	}
	return nil
}

// ListByCandidate returns events recorded for one candidate, oldest first.
func (s *Store) ListByCandidate(ctx context.Context, candidateID string) ([]audit.Event, error) {
	query := `
		SELECT payload FROM audit_outbox
		WHERE candidate_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		var payload outboxPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal audit event: %w", err)
		}
		ts, _ := time.Parse(time.RFC3339Nano, payload.Timestamp)
		events = append(events, audit.Event{
			Category:    audit.EventCategory(payload.Category),
			Timestamp:   ts,
			CandidateID: payload.CandidateID,
			Subject:     payload.Subject,
			Action:      payload.Action,
			ActorID:     payload.ActorID,
			Decision:    payload.Decision,
			Reason:      payload.Reason,
			RequestID:   payload.RequestID,
		})
	}
	return events, rows.Err()
}

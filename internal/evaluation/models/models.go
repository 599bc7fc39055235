// Package models defines round results. A RoundResult is immutable once
// created; repeat attempts at the same round coexist as separate records
// distinguished by their completion time.
package models

import (
	"fmt"
	"time"

	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
)

// QuestionType classifies a question for scoring purposes.
type QuestionType string

const (
	QuestionMCQ          QuestionType = "mcq"
	QuestionCoding       QuestionType = "coding"
	QuestionSystemDesign QuestionType = "system_design"
	QuestionProject      QuestionType = "project"
)

// IsValid checks if the question type is one of the supported values.
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionMCQ, QuestionCoding, QuestionSystemDesign, QuestionProject:
		return true
	}
	return false
}

// NeedsOracle reports whether the question's answer is free-form and must be
// scored by the evaluation oracle.
func (t QuestionType) NeedsOracle() bool {
	return t == QuestionCoding || t == QuestionSystemDesign
}

// CodeEvaluation holds the oracle's rubric scores for one free-form answer.
// Each sub-score is an integer in [0,10].
type CodeEvaluation struct {
	Correctness   int    `json:"correctness"`
	Understanding int    `json:"understanding"`
	Quality       int    `json:"quality"`
	Efficiency    int    `json:"efficiency"`
	Feedback      string `json:"feedback,omitempty"`
}

// Sum returns the total of the four sub-scores.
func (e CodeEvaluation) Sum() int {
	return e.Correctness + e.Understanding + e.Quality + e.Efficiency
}

// AllAboveBar reports whether every sub-score exceeds the correctness bar.
// A free-form answer counts as correct only when all four clear it.
func (e CodeEvaluation) AllAboveBar(bar int) bool {
	return e.Correctness > bar && e.Understanding > bar && e.Quality > bar && e.Efficiency > bar
}

// QuestionAttempt is one raw answer in a round submission.
type QuestionAttempt struct {
	Question        string       `json:"question"`
	CandidateAnswer string       `json:"candidate_answer"`
	CorrectAnswer   string       `json:"correct_answer,omitempty"`
	IsCorrect       bool         `json:"is_correct"`
	Type            QuestionType `json:"type"`
}

// RoundSubmission is a completed attempt at a round, pre-scoring.
type RoundSubmission struct {
	CandidateID id.CandidateID    `json:"candidate_id"`
	DomainID    id.DomainID       `json:"domain_id"`
	DomainName  string            `json:"domain_name,omitempty"`
	RoundID     id.RoundID        `json:"round_id"`
	RoundName   string            `json:"round_name,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	Questions   []QuestionAttempt `json:"questions"`
}

// Validate rejects submissions missing required fields.
func (s *RoundSubmission) Validate() error {
	if s.CandidateID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "candidate id is required")
	}
	if s.DomainID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "domain id is required")
	}
	if s.RoundID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "round id is required")
	}
	if len(s.Questions) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "questions list cannot be empty")
	}
	for i, q := range s.Questions {
		if q.Question == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "question text is required")
		}
		if !q.Type.IsValid() {
			return dErrors.New(dErrors.CodeInvalidInput,
				fmt.Sprintf("invalid question type at index %d: %s", i, q.Type))
		}
	}
	return nil
}

// UniformType returns the question type shared by every question, or false
// when the submission mixes types.
func (s *RoundSubmission) UniformType() (QuestionType, bool) {
	if len(s.Questions) == 0 {
		return "", false
	}
	first := s.Questions[0].Type
	for _, q := range s.Questions[1:] {
		if q.Type != first {
			return "", false
		}
	}
	return first, true
}

// QuestionResult is one scored answer inside a RoundResult.
type QuestionResult struct {
	Question          string          `json:"question"`
	CandidateAnswer   string          `json:"candidate_answer"`
	CorrectAnswer     string          `json:"correct_answer,omitempty"`
	IsCorrect         bool            `json:"is_correct"`
	Type              QuestionType    `json:"type"`
	CodeEvaluation    *CodeEvaluation `json:"code_evaluation,omitempty"`
	FollowUpQuestions []string        `json:"follow_up_questions,omitempty"`
}

// RoundResult is the persisted verdict for one attempt at a round.
type RoundResult struct {
	ID              id.ResultID      `json:"id"`
	CandidateID     id.CandidateID   `json:"candidate_id"`
	DomainID        id.DomainID      `json:"domain_id"`
	DomainName      string           `json:"domain_name,omitempty"`
	RoundID         id.RoundID       `json:"round_id"`
	RoundName       string           `json:"round_name,omitempty"`
	StartedAt       time.Time        `json:"started_at"`
	CompletedAt     time.Time        `json:"completed_at"`
	DurationSeconds int              `json:"duration_seconds"`
	Questions       []QuestionResult `json:"questions"`
	TotalQuestions  int              `json:"total_questions"`
	CorrectAnswers  int              `json:"correct_answers"`
	Percentage      float64          `json:"percentage"`
	Passed          bool             `json:"passed"`
	Feedback        string           `json:"feedback,omitempty"`
}

// RetryStatus is the retry gate's verdict for one (candidate, round) pair.
type RetryStatus struct {
	Allowed         bool         `json:"allowed"`
	HasResult       bool         `json:"has_result"`
	NextAvailableAt *time.Time   `json:"next_available_at,omitempty"`
	LastResult      *RoundResult `json:"last_result,omitempty"`
}

// Package oracle wraps the external evaluation service that scores free-form
// coding and system-design answers against a fixed rubric.
package oracle

import "context"

//go:generate mockgen -source=oracle.go -destination=../mocks/oracle_mock.go -package=mocks

// Evaluation is the oracle's rubric verdict for one answer. Sub-scores are
// integers in [0,10]; FollowUpQuestions carries two or three probes for the
// live interview that follows.
type Evaluation struct {
	Correctness       int      `json:"correctness"`
	Understanding     int      `json:"understanding"`
	Quality           int      `json:"quality"`
	Efficiency        int      `json:"efficiency"`
	Feedback          string   `json:"feedback"`
	FollowUpQuestions []string `json:"follow_up_questions"`
}

// Oracle scores a free-form answer. Implementations must treat malformed
// upstream responses as errors; the caller degrades the question rather than
// aborting the round.
type Oracle interface {
	Evaluate(ctx context.Context, question, answer string) (*Evaluation, error)
}

// FallbackFollowUps is substituted when the oracle fails or returns
// unparseable output. The set is fixed so a degraded round still hands the
// evaluator something to probe.
func FallbackFollowUps() []string {
	return []string{
		"Walk through your solution and explain the approach you took.",
		"What edge cases does your solution handle, and which does it miss?",
		"How would you improve the time or space complexity of your answer?",
	}
}

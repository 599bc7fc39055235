package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"talentgate/internal/platform/config"
)

// ErrMalformedResponse marks upstream output that could not be turned into a
// rubric verdict. Callers degrade the affected question instead of failing
// the round.
var ErrMalformedResponse = errors.New("oracle returned malformed response")

const scoringPrompt = `You are a strict technical interviewer. Score the candidate's answer
to the question on four criteria, each an integer from 0 to 10:
correctness, understanding, quality, efficiency. Provide short feedback
and 2-3 follow-up questions to probe deeper.

Respond with JSON only, no prose, in this exact shape:
{"correctness":0,"understanding":0,"quality":0,"efficiency":0,"feedback":"","follow_up_questions":["",""]}`

// Client scores answers through an OpenAI-compatible chat completion API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds an oracle client from configuration. Returns nil when no
// base URL is configured so callers can fall back to degraded scoring.
func NewClient(cfg config.Oracle, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Evaluate sends the question and answer upstream and parses the rubric
// verdict out of the completion text.
func (c *Client) Evaluate(ctx context.Context, question, answer string) (*Evaluation, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: scoringPrompt},
			{Role: "user", Content: fmt.Sprintf("Question:\n%s\n\nCandidate answer:\n%s", question, answer)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal oracle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build oracle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call oracle: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read oracle response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	var completion chatResponse
	if err := json.Unmarshal(raw, &completion); err != nil || len(completion.Choices) == 0 {
		return nil, ErrMalformedResponse
	}
	return parseEvaluation(completion.Choices[0].Message.Content)
}

// parseEvaluation extracts the rubric JSON from completion text. Models
// sometimes wrap the JSON in prose or code fences, so the parser scans for
// the outermost object instead of trusting the whole payload.
func parseEvaluation(content string) (*Evaluation, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, ErrMalformedResponse
	}

	var evaluation Evaluation
	if err := json.Unmarshal([]byte(content[start:end+1]), &evaluation); err != nil {
		return nil, ErrMalformedResponse
	}
	for _, score := range []int{evaluation.Correctness, evaluation.Understanding, evaluation.Quality, evaluation.Efficiency} {
		if score < 0 || score > 10 {
			return nil, ErrMalformedResponse
		}
	}
	if len(evaluation.FollowUpQuestions) < 2 || len(evaluation.FollowUpQuestions) > 3 {
		return nil, ErrMalformedResponse
	}
	return &evaluation, nil
}

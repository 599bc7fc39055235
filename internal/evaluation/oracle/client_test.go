package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentgate/internal/platform/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.Oracle{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 2 * time.Second,
	}, nil)
}

func completion(content string) string {
	return `{"choices":[{"message":{"content":` + content + `}}]}`
}

func TestClientEvaluate(t *testing.T) {
	t.Run("parses clean rubric JSON", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.Write([]byte(completion(`"{\"correctness\":8,\"understanding\":7,\"quality\":6,\"efficiency\":9,\"feedback\":\"solid\",\"follow_up_questions\":[\"a\",\"b\"]}"`)))
		})

		evaluation, err := client.Evaluate(context.Background(), "q", "a")
		require.NoError(t, err)
		assert.Equal(t, 8, evaluation.Correctness)
		assert.Equal(t, 9, evaluation.Efficiency)
		assert.Len(t, evaluation.FollowUpQuestions, 2)
	})

	t.Run("extracts JSON wrapped in prose", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(completion(`"Here is my verdict:\n{\"correctness\":6,\"understanding\":6,\"quality\":6,\"efficiency\":6,\"feedback\":\"ok\",\"follow_up_questions\":[\"a\",\"b\",\"c\"]}\nDone."`)))
		})

		evaluation, err := client.Evaluate(context.Background(), "q", "a")
		require.NoError(t, err)
		assert.Equal(t, 6, evaluation.Quality)
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.Evaluate(context.Background(), "q", "a")
		assert.Error(t, err)
	})

	t.Run("unconfigured base URL returns nil client", func(t *testing.T) {
		assert.Nil(t, NewClient(config.Oracle{}, nil))
	})
}

func TestParseEvaluation(t *testing.T) {
	t.Run("out-of-range sub-score is malformed", func(t *testing.T) {
		_, err := parseEvaluation(`{"correctness":11,"understanding":5,"quality":5,"efficiency":5,"feedback":"","follow_up_questions":["a","b"]}`)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("wrong follow-up count is malformed", func(t *testing.T) {
		_, err := parseEvaluation(`{"correctness":5,"understanding":5,"quality":5,"efficiency":5,"feedback":"","follow_up_questions":["a"]}`)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("no JSON object is malformed", func(t *testing.T) {
		_, err := parseEvaluation("I refuse to answer in JSON.")
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/teamforge/internal/pkg/apperrors"
)

func rankingServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: server.URL}, zerolog.Nop())
}

// modelReply wraps a raw model text part into the generateContent envelope
func modelReply(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
}

func TestRankCandidates(t *testing.T) {
	var gotPath string
	client := rankingServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
		assert.Equal(t, "ARRAY", req.GenerationConfig.ResponseSchema.Type)

		json.NewEncoder(w).Encode(modelReply(`["7", "3"]`))
	})

	ids, err := client.RankCandidates(context.Background(), "backend developer", []Candidate{
		{ID: 3, FullName: "Alice", Skills: []string{"Go"}},
		{ID: 7, FullName: "Bob", Skills: []string{"Go", "PostgreSQL"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{7, 3}, ids)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", gotPath)
}

func TestRankCandidatesSkipsMangledIDs(t *testing.T) {
	client := rankingServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(modelReply(`["7", "not-a-number", "-2", "3"]`))
	})

	ids, err := client.RankCandidates(context.Background(), "q", []Candidate{{ID: 3}, {ID: 7}})
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 3}, ids)
}

func TestRankCandidatesMalformedRanking(t *testing.T) {
	client := rankingServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(modelReply(`this is not json`))
	})

	_, err := client.RankCandidates(context.Background(), "q", []Candidate{{ID: 1}})
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
}

func TestRankCandidatesNonOKStatus(t *testing.T) {
	client := rankingServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.RankCandidates(context.Background(), "q", []Candidate{{ID: 1}})
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
}

func TestRankCandidatesUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore
	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL}, zerolog.Nop())

	_, err := client.RankCandidates(context.Background(), "q", []Candidate{{ID: 1}})
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
}

func TestRankCandidatesEmptyInputs(t *testing.T) {
	client := NewClient(Config{APIKey: "test-key"}, zerolog.Nop())

	ids, err := client.RankCandidates(context.Background(), "", []Candidate{{ID: 1}})
	require.NoError(t, err)
	assert.Nil(t, ids)

	ids, err = client.RankCandidates(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestRankCandidatesEmptyModelResponse(t *testing.T) {
	client := rankingServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	})

	ids, err := client.RankCandidates(context.Background(), "q", []Candidate{{ID: 1}})
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestParseIDArray(t *testing.T) {
	ids, err := parseIDArray(`["12", "7", "31"]`)
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 7, 31}, ids)

	_, err = parseIDArray(`{"not": "an array"}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrExternalService))
}

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/emre/teamforge/internal/pkg/apperrors"
)

// Candidate is the compact profile shape sent to the ranking model
type Candidate struct {
	ID       int64    `json:"id"`
	FullName string   `json:"fullName"`
	Year     string   `json:"year"`
	Bio      string   `json:"bio"`
	Skills   []string `json:"skills"`
}

// Ranker orders candidates by relevance to a free-text query. The ordering
// is opaque and never authoritative beyond display order; callers must
// tolerate empty results and failure.
type Ranker interface {
	RankCandidates(ctx context.Context, query string, candidates []Candidate) ([]int64, error)
}

// Config holds the generative-language API settings
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client calls the Gemini generateContent endpoint
type Client struct {
	config Config
	http   *http.Client
	logger zerolog.Logger
}

// NewClient creates a new Gemini client
func NewClient(config Config, logger zerolog.Logger) *Client {
	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if config.Timeout == 0 {
		config.Timeout = 20 * time.Second
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// request/response shapes for the generateContent endpoint

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   *responseSchema `json:"responseSchema,omitempty"`
}

type responseSchema struct {
	Type  string          `json:"type"`
	Items *responseSchema `json:"items,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// RankCandidates sends the query and candidate list to the model and parses
// the returned JSON array of candidate ids. Ids the model invents are kept
// here and filtered by the caller against the real candidate set.
func (c *Client) RankCandidates(ctx context.Context, query string, candidates []Candidate) ([]int64, error) {
	if query == "" || len(candidates) == 0 {
		return nil, nil
	}

	candidateJSON, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode candidates: %w", err)
	}

	prompt := fmt.Sprintf(
		"Based on the following query: %q, analyze the list of students provided below.\n"+
			"Return a JSON array containing the IDs of the students who are the best match, sorted from most to least relevant.\n"+
			"Do not include any students who are a poor match. Only return the student IDs.\n\n"+
			"Student Data:\n%s\n\n"+
			"Your response must be a valid JSON array of id strings, like this: [\"12\", \"7\", \"31\"]",
		query, candidateJSON)

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema: &responseSchema{
				Type:  "ARRAY",
				Items: &responseSchema{Type: "STRING"},
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.config.BaseURL, c.config.Model, c.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("Gemini request failed")
		return nil, apperrors.NewCustomError(apperrors.ErrExternalService, "AI service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("status", resp.StatusCode).Msg("Gemini returned non-OK status")
		return nil, apperrors.NewCustomError(apperrors.ErrExternalService,
			fmt.Sprintf("AI service returned status %d", resp.StatusCode))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrExternalService, "AI service returned unreadable response")
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		c.logger.Warn().Msg("Gemini response contained no candidates")
		return nil, nil
	}

	return parseIDArray(genResp.Candidates[0].Content.Parts[0].Text)
}

// parseIDArray decodes the model output, which must be a JSON array of
// strings holding decimal ids. Anything else counts as an external-service
// failure per the ranking contract.
func parseIDArray(text string) ([]int64, error) {
	var raw []string
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrExternalService, "AI service returned malformed ranking")
	}

	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		var id int64
		if _, err := fmt.Sscanf(s, "%d", &id); err != nil || id <= 0 {
			// Skip ids the model invented or mangled
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/emre/teamforge/internal/app/models"
	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/pkg/apperrors"
	"github.com/emre/teamforge/internal/pkg/gemini"
	"github.com/emre/teamforge/internal/pkg/metrics"
)

// SearchService finds teammate candidates for a free-text query
type SearchService interface {
	FindCandidates(ctx context.Context, req *dto.CandidateSearchRequest) (*dto.CandidateSearchResponse, error)
}

// searchServiceImpl implements SearchService
type searchServiceImpl struct {
	userStore UserStore
	ranker    gemini.Ranker
	logger    zerolog.Logger
}

// NewSearchService creates a new SearchService
func NewSearchService(userStore UserStore, ranker gemini.Ranker, logger zerolog.Logger) SearchService {
	return &searchServiceImpl{
		userStore: userStore,
		ranker:    ranker,
		logger:    logger,
	}
}

// FindCandidates sends the currently teamless users to the ranking model
// and returns their profiles in the model's order. Ids the model invents
// are dropped; the caller themselves never appears in the results.
func (s *searchServiceImpl) FindCandidates(ctx context.Context, req *dto.CandidateSearchRequest) (*dto.CandidateSearchResponse, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}

	metrics.CandidateSearches.Inc()

	teamless, err := s.userStore.ListTeamless(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*models.User, len(teamless))
	candidates := make([]gemini.Candidate, 0, len(teamless))
	for _, user := range teamless {
		if user.ID == userID {
			continue
		}
		byID[user.ID] = user
		candidates = append(candidates, gemini.Candidate{
			ID:       user.ID,
			FullName: user.FullName,
			Year:     string(user.Year),
			Bio:      user.Bio,
			Skills:   user.Skills,
		})
	}

	if len(candidates) == 0 {
		return &dto.CandidateSearchResponse{Results: []dto.UserResponse{}}, nil
	}

	rankedIDs, err := s.ranker.RankCandidates(ctx, req.Query, candidates)
	if err != nil {
		metrics.CandidateSearchFailures.Inc()
		s.logger.Error().Err(err).Str("query", req.Query).Msg("Candidate ranking failed")
		return nil, err
	}

	// Re-read the ranked profiles: a candidate may have joined a team while
	// the model was ranking, and must not be recommended anymore
	ranked, err := s.userStore.GetByIDs(ctx, rankedIDs)
	if err != nil {
		return nil, err
	}
	fresh := make(map[int64]*models.User, len(ranked))
	for _, user := range ranked {
		fresh[user.ID] = user
	}

	results := make([]dto.UserResponse, 0, len(rankedIDs))
	for _, id := range rankedIDs {
		if _, offered := byID[id]; !offered {
			// The model returned an id outside the candidate set
			continue
		}
		user, ok := fresh[id]
		if !ok || user.TeamID != nil {
			continue
		}
		results = append(results, dto.ToUserResponse(user))
	}

	s.logger.Debug().
		Str("query", req.Query).
		Int("candidates", len(candidates)).
		Int("matches", len(results)).
		Msg("Candidate search completed")

	return &dto.CandidateSearchResponse{Results: results}, nil
}

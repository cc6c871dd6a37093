package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/app/services"
	"github.com/emre/teamforge/internal/middleware"
)

// SearchController handles AI-assisted candidate search
type SearchController struct {
	searchService services.SearchService
}

// NewSearchController creates a new SearchController
func NewSearchController(searchService services.SearchService) *SearchController {
	return &SearchController{searchService: searchService}
}

// FindCandidates ranks teamless users against a free-text query
// @Summary Search for teammate candidates
// @Description Sends the currently teamless users and the query to the ranking model and returns matching profiles from most to least relevant. The ranking only affects display order.
// @Tags search
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CandidateSearchRequest true "Free-text query"
// @Success 200 {object} dto.APIResponse{data=dto.CandidateSearchResponse} "Ranked candidates"
// @Failure 502 {object} dto.ErrorResponse "Ranking service unavailable"
// @Router /search/candidates [post]
func (c *SearchController) FindCandidates(ctx *gin.Context) {
	var req dto.CandidateSearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.searchService.FindCandidates(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/app/services"
	"github.com/emre/teamforge/internal/middleware"
)

// SkillController handles the shared skill vocabulary
type SkillController struct {
	skillService services.SkillService
}

// NewSkillController creates a new SkillController
func NewSkillController(skillService services.SkillService) *SkillController {
	return &SkillController{skillService: skillService}
}

// ListSkills returns the skill vocabulary
// @Summary List skills
// @Tags skills
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.SkillResponse} "Skill vocabulary"
// @Router /skills [get]
func (c *SkillController) ListSkills(ctx *gin.Context) {
	resp, err := c.skillService.ListSkills(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// AddSkill appends a tag to the vocabulary
// @Summary Add a skill
// @Description Appends a normalized tag to the vocabulary. Adding an existing tag returns the existing entry.
// @Tags skills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddSkillRequest true "Skill name"
// @Success 201 {object} dto.APIResponse{data=dto.SkillResponse} "Skill entry"
// @Router /skills [post]
func (c *SkillController) AddSkill(ctx *gin.Context) {
	var req dto.AddSkillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.skillService.AddSkill(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/app/services"
	"github.com/emre/teamforge/internal/middleware"
)

// TeamController handles team and membership operations
type TeamController struct {
	teamService services.TeamService
}

// NewTeamController creates a new TeamController
func NewTeamController(teamService services.TeamService) *TeamController {
	return &TeamController{teamService: teamService}
}

// CreateTeam founds a team with the caller as leader
// @Summary Create a team
// @Description Founds a team with the caller as leader and only member. Fails if the caller already belongs to a team.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTeamRequest true "Team data"
// @Success 201 {object} dto.APIResponse{data=dto.TeamResponse} "Team created"
// @Failure 409 {object} dto.ErrorResponse "Caller already on a team"
// @Router /teams [post]
func (c *TeamController) CreateTeam(ctx *gin.Context) {
	var req dto.CreateTeamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.teamService.CreateTeam(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// ListTeams returns all teams
// @Summary List teams
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param recruiting query bool false "Only teams currently recruiting"
// @Success 200 {object} dto.APIResponse{data=[]dto.TeamResponse} "Teams"
// @Router /teams [get]
func (c *TeamController) ListTeams(ctx *gin.Context) {
	recruitingOnly := ctx.Query("recruiting") == "true"

	resp, err := c.teamService.ListTeams(ctx, recruitingOnly)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetTeam returns a team with its roster
// @Summary Get a team
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Success 200 {object} dto.APIResponse{data=dto.TeamResponse} "Team"
// @Failure 404 {object} dto.ErrorResponse "Team not found"
// @Router /teams/{id} [get]
func (c *TeamController) GetTeam(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.teamService.GetTeam(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UpdateTeam rewrites team settings
// @Summary Update a team
// @Description Rewrites team settings. Leader only. A recruiting team must carry an appeal pitch and required skills; a closed team must not.
// @Tags teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Param request body dto.UpdateTeamRequest true "Team data"
// @Success 200 {object} dto.APIResponse{data=dto.TeamResponse} "Updated team"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the leader"
// @Router /teams/{id} [put]
func (c *TeamController) UpdateTeam(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateTeamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.teamService.UpdateTeam(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// DeleteTeam disbands a team
// @Summary Disband a team
// @Description Deletes the team, frees every member, and discards its pending requests, invitations, and chat. Leader only.
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Success 200 {object} dto.SuccessResponse "Team disbanded"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the leader"
// @Router /teams/{id} [delete]
func (c *TeamController) DeleteTeam(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.teamService.DeleteTeam(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Team disbanded"})
}

// RequestToJoin records the caller's request to join a team
// @Summary Request to join a team
// @Tags membership
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Success 201 {object} dto.APIResponse{data=dto.JoinRequestResponse} "Request created"
// @Failure 409 {object} dto.ErrorResponse "Caller already on a team or duplicate request"
// @Router /teams/{id}/requests [post]
func (c *TeamController) RequestToJoin(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.teamService.RequestToJoin(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// ListJoinRequests returns a team's pending requests
// @Summary List pending join requests
// @Tags membership
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.JoinRequestResponse} "Pending requests"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the leader"
// @Router /teams/{id}/requests [get]
func (c *TeamController) ListJoinRequests(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.teamService.ListJoinRequests(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// InviteToTeam invites a teamless user onto the caller's team
// @Summary Invite a user
// @Tags membership
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Param request body dto.InviteRequest true "Target user"
// @Success 201 {object} dto.APIResponse{data=dto.InvitationResponse} "Invitation created"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the leader"
// @Failure 409 {object} dto.ErrorResponse "Target already on a team or duplicate invitation"
// @Router /teams/{id}/invitations [post]
func (c *TeamController) InviteToTeam(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.InviteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.teamService.InviteToTeam(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// ResolveJoinRequest accepts or declines a pending join request
// @Summary Resolve a join request
// @Description Consumes the request. On accept, membership is granted only if the requester is still teamless; the response reports the outcome.
// @Tags membership
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param request body dto.ResolveRequest true "Accept or decline"
// @Success 200 {object} dto.APIResponse{data=dto.ResolveResult} "Outcome"
// @Failure 403 {object} dto.ErrorResponse "Caller does not lead the request's team"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /requests/{id} [post]
func (c *TeamController) ResolveJoinRequest(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ResolveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.teamService.ResolveJoinRequest(ctx, id, *req.Accept)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListMyInvitations returns the caller's pending invitations
// @Summary List own invitations
// @Tags membership
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.InvitationResponse} "Pending invitations"
// @Router /invitations [get]
func (c *TeamController) ListMyInvitations(ctx *gin.Context) {
	resp, err := c.teamService.ListMyInvitations(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ResolveInvitation accepts or declines a pending invitation
// @Summary Resolve an invitation
// @Description Consumes the invitation. On accept, membership is granted only if the caller is still teamless; the response reports the outcome.
// @Tags membership
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invitation ID"
// @Param request body dto.ResolveRequest true "Accept or decline"
// @Success 200 {object} dto.APIResponse{data=dto.ResolveResult} "Outcome"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the invited user"
// @Failure 404 {object} dto.ErrorResponse "Invitation not found"
// @Router /invitations/{id} [post]
func (c *TeamController) ResolveInvitation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.ResolveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.teamService.ResolveInvitation(ctx, id, *req.Accept)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// RemoveMember ejects a member from the team
// @Summary Remove a member
// @Description Removes a member from the team. Leader only; the leader cannot remove themselves.
// @Tags membership
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Param userId path int true "User ID"
// @Success 200 {object} dto.SuccessResponse "Member removed"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the leader"
// @Router /teams/{id}/members/{userId} [delete]
func (c *TeamController) RemoveMember(ctx *gin.Context) {
	teamID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	targetID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	if err := c.teamService.RemoveMember(ctx, teamID, targetID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Member removed"})
}

// LeaveTeam removes the caller from their team
// @Summary Leave a team
// @Description The caller leaves the team voluntarily. The leader cannot leave; they disband instead.
// @Tags membership
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Success 200 {object} dto.SuccessResponse "Left the team"
// @Failure 400 {object} dto.ErrorResponse "The leader cannot leave"
// @Router /teams/{id}/members/me [delete]
func (c *TeamController) LeaveTeam(ctx *gin.Context) {
	teamID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.teamService.LeaveTeam(ctx, teamID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Left the team"})
}

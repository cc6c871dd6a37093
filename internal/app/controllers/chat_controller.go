package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/app/services"
	"github.com/emre/teamforge/internal/middleware"
)

// ChatController handles community and team chat operations
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// SendCommunityMessage posts a message into the community chat
// @Summary Send a community message
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendMessageRequest true "Message body"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse} "Message sent"
// @Router /chat/community/messages [post]
func (c *ChatController) SendCommunityMessage(ctx *gin.Context) {
	c.sendMessage(ctx, nil)
}

// SendTeamMessage posts a message into a team chat
// @Summary Send a team message
// @Description Posts into the team chat. Members only.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Param request body dto.SendMessageRequest true "Message body"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse} "Message sent"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a member"
// @Router /chat/teams/{id}/messages [post]
func (c *ChatController) SendTeamMessage(ctx *gin.Context) {
	teamID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	c.sendMessage(ctx, &teamID)
}

func (c *ChatController) sendMessage(ctx *gin.Context, teamID *int64) {
	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.chatService.SendMessage(ctx, teamID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// ListCommunityMessages returns community chat history
// @Summary List community messages
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(50) maximum(200)
// @Param before query int false "Return messages older than this id"
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageResponse} "Messages in chronological order"
// @Router /chat/community/messages [get]
func (c *ChatController) ListCommunityMessages(ctx *gin.Context) {
	c.listMessages(ctx, nil)
}

// ListTeamMessages returns team chat history
// @Summary List team messages
// @Description Returns team chat history. Members only.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Team ID"
// @Param limit query int false "Page size" default(50) maximum(200)
// @Param before query int false "Return messages older than this id"
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageResponse} "Messages in chronological order"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a member"
// @Router /chat/teams/{id}/messages [get]
func (c *ChatController) ListTeamMessages(ctx *gin.Context) {
	teamID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	c.listMessages(ctx, &teamID)
}

func (c *ChatController) listMessages(ctx *gin.Context, teamID *int64) {
	var query dto.MessageListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.chatService.ListMessages(ctx, teamID, &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// DeleteMessage removes a message the caller sent
// @Summary Delete a message
// @Description Deletes a message. Only the sender may do this.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.SuccessResponse "Message deleted"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the sender"
// @Router /chat/messages/{id} [delete]
func (c *ChatController) DeleteMessage(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.chatService.DeleteMessage(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Message deleted"})
}

// MarkMessageRead records the caller's read receipt
// @Summary Mark a message read
// @Description Upserts the caller's read receipt. Re-reading is a no-op.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.SuccessResponse "Marked read"
// @Router /chat/messages/{id}/read [post]
func (c *ChatController) MarkMessageRead(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.chatService.MarkRead(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Marked read"})
}

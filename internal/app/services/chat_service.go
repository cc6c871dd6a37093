package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emre/teamforge/internal/app/models"
	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/pkg/apperrors"
	"github.com/emre/teamforge/internal/pkg/metrics"
	"github.com/emre/teamforge/internal/pkg/realtime"
)

// ChatService defines the interface for chat operations. A nil team id
// means the community scope, which every verified user can read and write;
// a team scope requires membership.
type ChatService interface {
	SendMessage(ctx context.Context, teamID *int64, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	ListMessages(ctx context.Context, teamID *int64, query *dto.MessageListQuery) ([]dto.MessageResponse, error)
	DeleteMessage(ctx context.Context, messageID int64) error
	MarkRead(ctx context.Context, messageID int64) error
}

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	chatStore ChatStore
	userStore UserStore
	publisher realtime.Publisher
	logger    zerolog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	chatStore ChatStore,
	userStore UserStore,
	publisher realtime.Publisher,
	logger zerolog.Logger,
) ChatService {
	return &chatServiceImpl{
		chatStore: chatStore,
		userStore: userStore,
		publisher: publisher,
		logger:    logger,
	}
}

// SendMessage posts a message into the community or a team scope. The
// sender's name and avatar are snapshotted onto the message so history
// survives profile edits, and the sender reads their own message on insert.
func (s *chatServiceImpl) SendMessage(ctx context.Context, teamID *int64, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, apperrors.NewBadRequestError("Message body cannot be empty")
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.requireScopeAccess(user, teamID); err != nil {
		return nil, err
	}

	msg, err := s.chatStore.CreateMessage(ctx, &models.Message{
		TeamID:       teamID,
		SenderID:     userID,
		SenderName:   user.FullName,
		SenderAvatar: user.AvatarURL,
		Body:         body,
	})
	if err != nil {
		return nil, err
	}

	metrics.MessagesSent.Inc()

	resp := dto.ToMessageResponse(msg)
	s.publisher.Publish(channelFor(teamID), realtime.Event{Type: realtime.EventMessageCreated, Payload: resp})
	return &resp, nil
}

// ListMessages returns chat history for a scope in chronological order
func (s *chatServiceImpl) ListMessages(ctx context.Context, teamID *int64, query *dto.MessageListQuery) ([]dto.MessageResponse, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.requireScopeAccess(user, teamID); err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	msgs, err := s.chatStore.ListMessages(ctx, teamID, limit, query.Before)
	if err != nil {
		return nil, err
	}
	return dto.ToMessageResponses(msgs), nil
}

// DeleteMessage removes a message. Only the sender may delete it.
func (s *chatServiceImpl) DeleteMessage(ctx context.Context, messageID int64) error {
	userID, ok := callerID(ctx)
	if !ok {
		return apperrors.ErrPermissionDenied
	}

	msg, err := s.chatStore.DeleteMessage(ctx, messageID, userID)
	if err != nil {
		return err
	}

	s.logger.Info().Int64("messageID", messageID).Int64("senderID", userID).Msg("Message deleted")

	payload := map[string]interface{}{"messageId": messageID, "teamId": msg.TeamID}
	s.publisher.Publish(channelFor(msg.TeamID), realtime.Event{Type: realtime.EventMessageDeleted, Payload: payload})
	return nil
}

// MarkRead upserts the caller's read receipt for a message
func (s *chatServiceImpl) MarkRead(ctx context.Context, messageID int64) error {
	userID, ok := callerID(ctx)
	if !ok {
		return apperrors.ErrPermissionDenied
	}

	msg, err := s.chatStore.GetMessageByID(ctx, messageID)
	if err != nil {
		return err
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.requireScopeAccess(user, msg.TeamID); err != nil {
		return err
	}

	if err := s.chatStore.MarkRead(ctx, messageID, userID); err != nil {
		return err
	}

	payload := map[string]interface{}{"messageId": messageID, "userId": userID}
	s.publisher.Publish(channelFor(msg.TeamID), realtime.Event{Type: realtime.EventMessageRead, Payload: payload})
	return nil
}

// requireScopeAccess rejects team-scope operations by non-members. The
// community scope is open to everyone.
func (s *chatServiceImpl) requireScopeAccess(user *models.User, teamID *int64) error {
	if teamID == nil {
		return nil
	}
	if user.TeamID == nil || *user.TeamID != *teamID {
		return apperrors.ErrNotTeamMember
	}
	return nil
}

// channelFor maps a chat scope to its feed channel
func channelFor(teamID *int64) string {
	if teamID == nil {
		return realtime.ChannelCommunity
	}
	return realtime.TeamChannel(*teamID)
}

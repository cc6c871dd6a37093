package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/pkg/apperrors"
)

// HandleAPIError maps service errors onto the standard error envelope
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	message := ""
	if errors.As(err, &custom) {
		message = custom.Message
	}

	respond := func(status int, code dto.ErrorCode, fallback string) {
		if message == "" {
			message = fallback
		}
		c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
	}

	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound),
		errors.Is(err, apperrors.ErrUserNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found")
	case errors.Is(err, apperrors.ErrTeamNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Team not found")
	case errors.Is(err, apperrors.ErrRequestNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Join request not found")
	case errors.Is(err, apperrors.ErrInvitationNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Invitation not found")
	case errors.Is(err, apperrors.ErrMessageNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Message not found")

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid),
		errors.Is(err, apperrors.ErrTokenRevoked):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		respond(http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found")

	case errors.Is(err, apperrors.ErrNotTeamLeader):
		respond(http.StatusForbidden, dto.ErrorCodeNotTeamLeader, "Only the team leader can perform this action")
	case errors.Is(err, apperrors.ErrNotSender):
		respond(http.StatusForbidden, dto.ErrorCodeForbidden, "Only the sender can delete a message")
	case errors.Is(err, apperrors.ErrNotTeamMember):
		respond(http.StatusForbidden, dto.ErrorCodeNotTeamMember, "You are not a member of this team")
	case errors.Is(err, apperrors.ErrEmailNotVerified):
		respond(http.StatusForbidden, dto.ErrorCodeEmailNotVerified, "Email not verified")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respond(http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")

	case errors.Is(err, apperrors.ErrAlreadyOnTeam):
		respond(http.StatusConflict, dto.ErrorCodeAlreadyOnTeam, "The user already belongs to a team")
	case errors.Is(err, apperrors.ErrDuplicateRequest):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "A pending request for this team already exists")
	case errors.Is(err, apperrors.ErrDuplicateInvite):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "A pending invitation for this user already exists")
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrEmailAlreadyVerified):
		respond(http.StatusConflict, dto.ErrorCodeResourceInvalid, "Email is already verified")
	case errors.Is(err, apperrors.ErrConflict):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Conflict")

	case errors.Is(err, apperrors.ErrResendCooldown):
		respond(http.StatusTooManyRequests, dto.ErrorCodeResendCooldown, "A verification email was sent recently, wait before retrying")

	case errors.Is(err, apperrors.ErrLeaderCannotLeave):
		respond(http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "The leader cannot leave; disband the team instead")
	case errors.Is(err, apperrors.ErrInvalidEmailToken):
		respond(http.StatusBadRequest, dto.ErrorCodeInvalidToken, "Invalid or expired verification token")
	case errors.Is(err, apperrors.ErrValidationFailed):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, apperrors.ErrBadRequest):
		respond(http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "Bad request")

	case errors.Is(err, apperrors.ErrExternalService):
		respond(http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "An external service is unavailable")

	default:
		respond(http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	}
}

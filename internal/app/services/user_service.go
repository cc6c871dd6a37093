package services

import (
	"context"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/pkg/apperrors"
	"github.com/emre/teamforge/internal/pkg/filestorage"
	"github.com/emre/teamforge/internal/pkg/realtime"
)

// UserService defines the interface for profile operations
type UserService interface {
	GetProfile(ctx context.Context) (*dto.UserResponse, error)
	GetUser(ctx context.Context, id int64) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UpdateAvatar(ctx context.Context, file *multipart.FileHeader) (*dto.UserResponse, error)
	ListTeamless(ctx context.Context) ([]dto.UserResponse, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userStore   UserStore
	skillStore  SkillStore
	fileStorage filestorage.FileStorage
	publisher   realtime.Publisher
	logger      zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userStore UserStore,
	skillStore SkillStore,
	fileStorage filestorage.FileStorage,
	publisher realtime.Publisher,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		userStore:   userStore,
		skillStore:  skillStore,
		fileStorage: fileStorage,
		publisher:   publisher,
		logger:      logger,
	}
}

// GetProfile returns the authenticated user's own profile
func (s *userServiceImpl) GetProfile(ctx context.Context) (*dto.UserResponse, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}
	return s.GetUser(ctx, userID)
}

// GetUser returns any user's public profile
func (s *userServiceImpl) GetUser(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile rewrites the caller's editable profile fields. Skill tags
// the vocabulary has not seen yet are appended to it, so free-typed skills
// become suggestions for everyone else.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FullName = req.FullName
	user.Year = req.Year
	user.Bio = req.Bio
	user.Skills = normalizeSkills(req.Skills)

	updated, err := s.userStore.UpdateProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	for _, skill := range updated.Skills {
		if _, err := s.skillStore.Ensure(ctx, skill); err != nil {
			// The vocabulary append is best-effort
			s.logger.Warn().Err(err).Str("skill", skill).Msg("Failed to append skill to vocabulary")
		}
	}

	resp := dto.ToUserResponse(updated)
	s.publisher.Publish(realtime.ChannelCommunity, realtime.Event{Type: realtime.EventUserUpdated, Payload: resp})

	s.logger.Info().Int64("userID", userID).Msg("Profile updated")
	return &resp, nil
}

// UpdateAvatar stores a new avatar image and swaps it onto the profile. The
// previous image is removed after the swap succeeds.
func (s *userServiceImpl) UpdateAvatar(ctx context.Context, file *multipart.FileHeader) (*dto.UserResponse, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	path, err := s.fileStorage.SaveAvatar(file)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to save avatar")
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	oldAvatar := user.AvatarURL
	if err := s.userStore.UpdateAvatar(ctx, userID, &path); err != nil {
		_ = s.fileStorage.DeleteFile(path)
		return nil, err
	}

	if oldAvatar != nil {
		if err := s.fileStorage.DeleteFile(*oldAvatar); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to delete previous avatar")
		}
	}

	user.AvatarURL = &path
	resp := dto.ToUserResponse(user)
	s.publisher.Publish(realtime.ChannelCommunity, realtime.Event{Type: realtime.EventUserUpdated, Payload: resp})

	return &resp, nil
}

// ListTeamless returns every user currently without a team
func (s *userServiceImpl) ListTeamless(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.userStore.ListTeamless(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToUserResponses(users), nil
}

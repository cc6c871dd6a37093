package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/emre/teamforge/internal/app/models"
	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/pkg/apperrors"
	"github.com/emre/teamforge/internal/pkg/metrics"
	"github.com/emre/teamforge/internal/pkg/realtime"
)

// TeamService defines the interface for team and membership operations
type TeamService interface {
	CreateTeam(ctx context.Context, req *dto.CreateTeamRequest) (*dto.TeamResponse, error)
	GetTeam(ctx context.Context, id int64) (*dto.TeamResponse, error)
	ListTeams(ctx context.Context, recruitingOnly bool) ([]dto.TeamResponse, error)
	UpdateTeam(ctx context.Context, id int64, req *dto.UpdateTeamRequest) (*dto.TeamResponse, error)
	DeleteTeam(ctx context.Context, id int64) error
	RequestToJoin(ctx context.Context, teamID int64) (*dto.JoinRequestResponse, error)
	InviteToTeam(ctx context.Context, teamID int64, req *dto.InviteRequest) (*dto.InvitationResponse, error)
	ResolveJoinRequest(ctx context.Context, requestID int64, accept bool) (*dto.ResolveResult, error)
	ResolveInvitation(ctx context.Context, invitationID int64, accept bool) (*dto.ResolveResult, error)
	RemoveMember(ctx context.Context, teamID, targetID int64) error
	LeaveTeam(ctx context.Context, teamID int64) error
	ListJoinRequests(ctx context.Context, teamID int64) ([]dto.JoinRequestResponse, error)
	ListMyInvitations(ctx context.Context) ([]dto.InvitationResponse, error)
}

// teamServiceImpl implements TeamService
type teamServiceImpl struct {
	teamStore       TeamStore
	membershipStore MembershipStore
	userStore       UserStore
	publisher       realtime.Publisher
	logger          zerolog.Logger
}

// NewTeamService creates a new TeamService
func NewTeamService(
	teamStore TeamStore,
	membershipStore MembershipStore,
	userStore UserStore,
	publisher realtime.Publisher,
	logger zerolog.Logger,
) TeamService {
	return &teamServiceImpl{
		teamStore:       teamStore,
		membershipStore: membershipStore,
		userStore:       userStore,
		publisher:       publisher,
		logger:          logger,
	}
}

// CreateTeam founds a team with the caller as leader and first member. The
// appeal rules apply from the start: recruiting requires a complete appeal.
func (s *teamServiceImpl) CreateTeam(ctx context.Context, req *dto.CreateTeamRequest) (*dto.TeamResponse, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}

	if err := validateAppeal(req.IsRecruiting, req.AppealPitch, req.AppealSkills); err != nil {
		return nil, err
	}

	team, err := s.teamStore.CreateWithLeader(ctx, &models.Team{
		Name:         req.Name,
		ProjectIdea:  req.ProjectIdea,
		LeaderID:     userID,
		IsRecruiting: req.IsRecruiting,
		AppealPitch:  req.AppealPitch,
		AppealSkills: req.AppealSkills,
	})
	if err != nil {
		return nil, err
	}

	metrics.TeamsCreated.Inc()
	s.logger.Info().Int64("teamID", team.ID).Int64("leaderID", userID).Msg("Team created")

	resp, err := s.toResponse(ctx, team)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(realtime.ChannelCommunity, realtime.Event{Type: realtime.EventTeamCreated, Payload: resp})
	return resp, nil
}

// GetTeam returns a team with its roster
func (s *teamServiceImpl) GetTeam(ctx context.Context, id int64) (*dto.TeamResponse, error) {
	team, err := s.teamStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, team)
}

// ListTeams returns all teams, optionally only those recruiting
func (s *teamServiceImpl) ListTeams(ctx context.Context, recruitingOnly bool) ([]dto.TeamResponse, error) {
	teams, err := s.teamStore.List(ctx, recruitingOnly)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TeamResponse, 0, len(teams))
	for _, team := range teams {
		resp, err := s.toResponse(ctx, team)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// UpdateTeam rewrites team settings. Only the leader may call this, and the
// appeal must be present exactly when the team is recruiting.
func (s *teamServiceImpl) UpdateTeam(ctx context.Context, id int64, req *dto.UpdateTeamRequest) (*dto.TeamResponse, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}

	if err := validateAppeal(req.IsRecruiting, req.AppealPitch, req.AppealSkills); err != nil {
		return nil, err
	}

	team := &models.Team{
		ID:           id,
		Name:         req.Name,
		ProjectIdea:  req.ProjectIdea,
		IsRecruiting: req.IsRecruiting,
		AppealPitch:  req.AppealPitch,
		AppealSkills: req.AppealSkills,
	}
	if !req.IsRecruiting {
		team.AppealPitch = nil
		team.AppealSkills = nil
	}

	updated, err := s.teamStore.Update(ctx, team, userID)
	if err != nil {
		return nil, err
	}

	resp, err := s.toResponse(ctx, updated)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(realtime.ChannelCommunity, realtime.Event{Type: realtime.EventTeamUpdated, Payload: resp})
	return resp, nil
}

// validateAppeal enforces that a recruiting team carries a complete appeal
// and a closed team carries none
func validateAppeal(isRecruiting bool, pitch *string, skills []string) error {
	if isRecruiting {
		if pitch == nil || len(skills) == 0 {
			return apperrors.NewBadRequestError("A recruiting team needs an appeal pitch and at least one required skill")
		}
	} else if pitch != nil || len(skills) > 0 {
		return apperrors.NewBadRequestError("A team that is not recruiting cannot carry an appeal")
	}
	return nil
}

// DeleteTeam disbands the caller's team, freeing every member
func (s *teamServiceImpl) DeleteTeam(ctx context.Context, id int64) error {
	userID, ok := callerID(ctx)
	if !ok {
		return apperrors.ErrPermissionDenied
	}

	memberIDs, err := s.teamStore.DeleteCascade(ctx, id, userID)
	if err != nil {
		return err
	}

	metrics.TeamsDeleted.Inc()
	s.logger.Info().Int64("teamID", id).Ints64("memberIDs", memberIDs).Msg("Team disbanded")

	payload := map[string]interface{}{"teamId": id, "memberIds": memberIDs}
	s.publisher.Publish(realtime.ChannelCommunity, realtime.Event{Type: realtime.EventTeamDeleted, Payload: payload})
	s.publisher.Publish(realtime.TeamChannel(id), realtime.Event{Type: realtime.EventTeamDeleted, Payload: payload})
	return nil
}

// RequestToJoin records the caller's request to join a recruiting team
func (s *teamServiceImpl) RequestToJoin(ctx context.Context, teamID int64) (*dto.JoinRequestResponse, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}

	team, err := s.teamStore.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.IsRecruiting {
		return nil, apperrors.NewBadRequestError("This team is not recruiting")
	}

	req, err := s.membershipStore.CreateJoinRequest(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.JoinRequestResponse{
		ID:        req.ID,
		UserID:    req.UserID,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
		TeamID:    req.TeamID,
		TeamName:  team.Name,
		CreatedAt: req.CreatedAt,
	}

	s.publisher.Publish(realtime.TeamChannel(teamID), realtime.Event{Type: realtime.EventRequestCreated, Payload: resp})
	return resp, nil
}

// InviteToTeam records the leader's invitation of a teamless user
func (s *teamServiceImpl) InviteToTeam(ctx context.Context, teamID int64, req *dto.InviteRequest) (*dto.InvitationResponse, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}

	team, err := s.teamStore.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	inv, err := s.membershipStore.CreateInvitation(ctx, teamID, userID, req.UserID)
	if err != nil {
		return nil, err
	}

	resp := &dto.InvitationResponse{
		ID:        inv.ID,
		UserID:    inv.UserID,
		TeamID:    inv.TeamID,
		TeamName:  team.Name,
		CreatedAt: inv.CreatedAt,
	}

	// The invited user sees it on the community channel; their client
	// filters by user id
	s.publisher.Publish(realtime.ChannelCommunity, realtime.Event{Type: realtime.EventInvitationCreated, Payload: resp})
	return resp, nil
}

// ResolveJoinRequest consumes a pending request addressed to the caller's
// team. An accept grants membership only if the requester is still
// teamless; the response says which way it went.
func (s *teamServiceImpl) ResolveJoinRequest(ctx context.Context, requestID int64, accept bool) (*dto.ResolveResult, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}

	req, granted, err := s.membershipStore.ResolveJoinRequest(ctx, requestID, userID, accept)
	if err != nil {
		return nil, err
	}

	result := resolveResult(granted, accept)
	s.recordGrantOutcome(granted, accept)
	s.logger.Info().
		Int64("requestID", requestID).
		Bool("accept", accept).
		Bool("granted", granted).
		Msg("Join request resolved")

	payload := map[string]interface{}{"requestId": requestID, "userId": req.UserID, "teamId": req.TeamID, "result": result}
	s.publisher.Publish(realtime.TeamChannel(req.TeamID), realtime.Event{Type: realtime.EventRequestResolved, Payload: payload})
	s.publisher.Publish(realtime.ChannelCommunity, realtime.Event{Type: realtime.EventRequestResolved, Payload: payload})
	return result, nil
}

// ResolveInvitation consumes a pending invitation addressed to the caller
func (s *teamServiceImpl) ResolveInvitation(ctx context.Context, invitationID int64, accept bool) (*dto.ResolveResult, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}

	inv, granted, err := s.membershipStore.ResolveInvitation(ctx, invitationID, userID, accept)
	if err != nil {
		return nil, err
	}

	result := resolveResult(granted, accept)
	s.recordGrantOutcome(granted, accept)
	s.logger.Info().
		Int64("invitationID", invitationID).
		Bool("accept", accept).
		Bool("granted", granted).
		Msg("Invitation resolved")

	payload := map[string]interface{}{"invitationId": invitationID, "userId": inv.UserID, "teamId": inv.TeamID, "result": result}
	s.publisher.Publish(realtime.TeamChannel(inv.TeamID), realtime.Event{Type: realtime.EventInvitationResolved, Payload: payload})
	s.publisher.Publish(realtime.ChannelCommunity, realtime.Event{Type: realtime.EventInvitationResolved, Payload: payload})
	return result, nil
}

func resolveResult(granted, accept bool) *dto.ResolveResult {
	result := &dto.ResolveResult{MembershipGranted: granted}
	if !granted {
		if accept {
			result.Reason = dto.ReasonUserAlreadyOnTeam
		} else {
			result.Reason = dto.ReasonDeclined
		}
	}
	return result
}

func (s *teamServiceImpl) recordGrantOutcome(granted, accept bool) {
	if granted {
		metrics.MembershipsGranted.Inc()
	} else if accept {
		metrics.MembershipGrantsSkipped.Inc()
	}
}

// RemoveMember ejects a member from the caller's team
func (s *teamServiceImpl) RemoveMember(ctx context.Context, teamID, targetID int64) error {
	userID, ok := callerID(ctx)
	if !ok {
		return apperrors.ErrPermissionDenied
	}

	if err := s.teamStore.RemoveMember(ctx, teamID, userID, targetID); err != nil {
		return err
	}

	s.logger.Info().Int64("teamID", teamID).Int64("targetID", targetID).Msg("Member removed")

	payload := map[string]interface{}{"teamId": teamID, "userId": targetID}
	s.publisher.Publish(realtime.TeamChannel(teamID), realtime.Event{Type: realtime.EventMemberRemoved, Payload: payload})
	s.publisher.Publish(realtime.ChannelCommunity, realtime.Event{Type: realtime.EventMemberRemoved, Payload: payload})
	return nil
}

// LeaveTeam removes the caller from their team voluntarily
func (s *teamServiceImpl) LeaveTeam(ctx context.Context, teamID int64) error {
	userID, ok := callerID(ctx)
	if !ok {
		return apperrors.ErrPermissionDenied
	}

	if err := s.teamStore.Leave(ctx, teamID, userID); err != nil {
		return err
	}

	s.logger.Info().Int64("teamID", teamID).Int64("userID", userID).Msg("Member left team")

	payload := map[string]interface{}{"teamId": teamID, "userId": userID}
	s.publisher.Publish(realtime.TeamChannel(teamID), realtime.Event{Type: realtime.EventMemberRemoved, Payload: payload})
	s.publisher.Publish(realtime.ChannelCommunity, realtime.Event{Type: realtime.EventMemberRemoved, Payload: payload})
	return nil
}

// ListJoinRequests returns the pending requests for a team. Leader only.
func (s *teamServiceImpl) ListJoinRequests(ctx context.Context, teamID int64) ([]dto.JoinRequestResponse, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}

	team, err := s.teamStore.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.LeaderID != userID {
		return nil, apperrors.ErrNotTeamLeader
	}

	infos, err := s.membershipStore.ListJoinRequestsByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.JoinRequestResponse, 0, len(infos))
	for _, info := range infos {
		responses = append(responses, dto.JoinRequestResponse{
			ID:        info.ID,
			UserID:    info.UserID,
			FullName:  info.FullName,
			AvatarURL: info.AvatarURL,
			TeamID:    info.TeamID,
			TeamName:  info.TeamName,
			CreatedAt: info.CreatedAt,
		})
	}
	return responses, nil
}

// ListMyInvitations returns the caller's pending invitations
func (s *teamServiceImpl) ListMyInvitations(ctx context.Context) ([]dto.InvitationResponse, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return nil, apperrors.ErrPermissionDenied
	}

	infos, err := s.membershipStore.ListInvitationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.InvitationResponse, 0, len(infos))
	for _, info := range infos {
		responses = append(responses, dto.InvitationResponse{
			ID:        info.ID,
			UserID:    info.UserID,
			TeamID:    info.TeamID,
			TeamName:  info.TeamName,
			CreatedAt: info.CreatedAt,
		})
	}
	return responses, nil
}

func (s *teamServiceImpl) toResponse(ctx context.Context, team *models.Team) (*dto.TeamResponse, error) {
	roster, err := s.teamStore.GetRoster(ctx, team.ID)
	if err != nil {
		return nil, err
	}

	members := make([]dto.TeamMemberResponse, 0, len(roster))
	for _, entry := range roster {
		members = append(members, dto.TeamMemberResponse{
			UserID:    entry.UserID,
			FullName:  entry.FullName,
			AvatarURL: entry.AvatarURL,
			IsLeader:  entry.UserID == team.LeaderID,
			JoinedAt:  entry.JoinedAt,
		})
	}

	resp := dto.ToTeamResponse(team, members)
	return &resp, nil
}

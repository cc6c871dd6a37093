package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/pkg/apperrors"
	"github.com/emre/teamforge/internal/pkg/realtime"
)

func newTeamService(store *memoryStore, pub *fakePublisher) TeamService {
	return NewTeamService(store.teamsView(), store.membershipsView(), store.usersView(), pub, zerolog.Nop())
}

func TestCreateTeam(t *testing.T) {
	store := newMemoryStore()
	pub := &fakePublisher{}
	svc := newTeamService(store, pub)
	leader := store.addUser("Ada Lovelace")

	resp, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{
		Name:        "Rocket",
		ProjectIdea: "A carpooling app for campus",
	})
	require.NoError(t, err)

	assert.Equal(t, "Rocket", resp.Name)
	assert.Equal(t, leader.ID, resp.LeaderID)
	assert.False(t, resp.IsRecruiting, "no appeal means the team starts closed")
	require.Len(t, resp.Members, 1)
	assert.True(t, resp.Members[0].IsLeader)

	// The founder is attached immediately
	teamID, err := store.usersView().GetTeamID(asUser(leader.ID), leader.ID)
	require.NoError(t, err)
	require.NotNil(t, teamID)
	assert.Equal(t, resp.ID, *teamID)

	assert.Contains(t, pub.typesOn(realtime.ChannelCommunity), realtime.EventTeamCreated)
}

func TestCreateTeamRecruitingFromTheStart(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leader := store.addUser("Ada Lovelace")

	pitch := "We need builders for a campus carpooling app"
	resp, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{
		Name:         "Rocket",
		ProjectIdea:  "A carpooling app for campus",
		IsRecruiting: true,
		AppealPitch:  &pitch,
		AppealSkills: []string{"Go", "React.js"},
	})
	require.NoError(t, err)

	assert.True(t, resp.IsRecruiting)
	require.NotNil(t, resp.AppealPitch)
	assert.Equal(t, pitch, *resp.AppealPitch)
	assert.Equal(t, []string{"Go", "React.js"}, resp.AppealSkills)
}

func TestCreateTeamAppealRules(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leader := store.addUser("Ada Lovelace")
	pitch := "We need builders for a campus carpooling app"

	// Recruiting without an appeal is rejected
	_, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{
		Name:         "Rocket",
		ProjectIdea:  "A carpooling app for campus",
		IsRecruiting: true,
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	// An appeal on a closed team is rejected
	_, err = svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{
		Name:        "Rocket",
		ProjectIdea: "A carpooling app for campus",
		AppealPitch: &pitch,
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	// Neither rejected attempt founded the team or attached the caller
	teamID, err := store.usersView().GetTeamID(asUser(leader.ID), leader.ID)
	require.NoError(t, err)
	assert.Nil(t, teamID)
}

func TestCreateTeamWhileOnTeam(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leader := store.addUser("Ada Lovelace")

	_, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)

	_, err = svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Second", ProjectIdea: "y"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyOnTeam)
}

func TestUpdateTeamAppealRules(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leader := store.addUser("Ada Lovelace")
	team, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)

	pitch := "We need a designer for our carpooling app"

	// Recruiting without an appeal is rejected
	_, err = svc.UpdateTeam(asUser(leader.ID), team.ID, &dto.UpdateTeamRequest{
		Name: "Rocket", ProjectIdea: "x", IsRecruiting: true,
	})
	assert.Error(t, err)

	// Appeal on a closed team is rejected
	_, err = svc.UpdateTeam(asUser(leader.ID), team.ID, &dto.UpdateTeamRequest{
		Name: "Rocket", ProjectIdea: "x", IsRecruiting: false,
		AppealPitch: &pitch, AppealSkills: []string{"UI/UX Design"},
	})
	assert.Error(t, err)

	// Recruiting with a complete appeal succeeds
	updated, err := svc.UpdateTeam(asUser(leader.ID), team.ID, &dto.UpdateTeamRequest{
		Name: "Rocket", ProjectIdea: "x", IsRecruiting: true,
		AppealPitch: &pitch, AppealSkills: []string{"UI/UX Design"},
	})
	require.NoError(t, err)
	assert.True(t, updated.IsRecruiting)
	require.NotNil(t, updated.AppealPitch)
	assert.Equal(t, pitch, *updated.AppealPitch)

	// Closing recruiting clears the appeal
	closed, err := svc.UpdateTeam(asUser(leader.ID), team.ID, &dto.UpdateTeamRequest{
		Name: "Rocket", ProjectIdea: "x", IsRecruiting: false,
	})
	require.NoError(t, err)
	assert.Nil(t, closed.AppealPitch)
	assert.Empty(t, closed.AppealSkills)
}

func TestUpdateTeamNotLeader(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leader := store.addUser("Ada Lovelace")
	outsider := store.addUser("Grace Hopper")
	team, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)

	_, err = svc.UpdateTeam(asUser(outsider.ID), team.ID, &dto.UpdateTeamRequest{
		Name: "Hijacked", ProjectIdea: "x",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotTeamLeader)
}

// openRecruiting flips a team into recruiting with a minimal appeal
func openRecruiting(t *testing.T, svc TeamService, leaderID, teamID int64) {
	t.Helper()
	pitch := "Join us"
	_, err := svc.UpdateTeam(asUser(leaderID), teamID, &dto.UpdateTeamRequest{
		Name: "Rocket", ProjectIdea: "x", IsRecruiting: true,
		AppealPitch: &pitch, AppealSkills: []string{"Go"},
	})
	require.NoError(t, err)
}

func TestRequestToJoinAndAccept(t *testing.T) {
	store := newMemoryStore()
	pub := &fakePublisher{}
	svc := newTeamService(store, pub)
	leader := store.addUser("Ada Lovelace")
	joiner := store.addUser("Grace Hopper")
	team, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)
	openRecruiting(t, svc, leader.ID, team.ID)

	req, err := svc.RequestToJoin(asUser(joiner.ID), team.ID)
	require.NoError(t, err)
	assert.Equal(t, joiner.ID, req.UserID)
	assert.Equal(t, "Grace Hopper", req.FullName)
	assert.Equal(t, "Rocket", req.TeamName)

	result, err := svc.ResolveJoinRequest(asUser(leader.ID), req.ID, true)
	require.NoError(t, err)
	assert.True(t, result.MembershipGranted)
	assert.Empty(t, result.Reason)

	teamID, err := store.usersView().GetTeamID(asUser(joiner.ID), joiner.ID)
	require.NoError(t, err)
	require.NotNil(t, teamID)
	assert.Equal(t, team.ID, *teamID)
}

func TestRequestToJoinClosedTeam(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leader := store.addUser("Ada Lovelace")
	joiner := store.addUser("Grace Hopper")
	team, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)

	_, err = svc.RequestToJoin(asUser(joiner.ID), team.ID)
	assert.Error(t, err, "a team not recruiting cannot receive requests")
}

func TestResolveJoinRequestDeclined(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leader := store.addUser("Ada Lovelace")
	joiner := store.addUser("Grace Hopper")
	team, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)
	openRecruiting(t, svc, leader.ID, team.ID)

	req, err := svc.RequestToJoin(asUser(joiner.ID), team.ID)
	require.NoError(t, err)

	result, err := svc.ResolveJoinRequest(asUser(leader.ID), req.ID, false)
	require.NoError(t, err)
	assert.False(t, result.MembershipGranted)
	assert.Equal(t, dto.ReasonDeclined, result.Reason)

	// The request is consumed either way
	_, err = svc.ResolveJoinRequest(asUser(leader.ID), req.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
}

func TestResolveStaleJoinRequest(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leaderA := store.addUser("Ada Lovelace")
	leaderB := store.addUser("Alan Turing")
	joiner := store.addUser("Grace Hopper")

	teamA, err := svc.CreateTeam(asUser(leaderA.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)
	openRecruiting(t, svc, leaderA.ID, teamA.ID)
	teamB, err := svc.CreateTeam(asUser(leaderB.ID), &dto.CreateTeamRequest{Name: "Comet", ProjectIdea: "y"})
	require.NoError(t, err)

	reqA, err := svc.RequestToJoin(asUser(joiner.ID), teamA.ID)
	require.NoError(t, err)

	// The joiner lands on team B via an invitation before A's leader acts
	inv, err := svc.InviteToTeam(asUser(leaderB.ID), teamB.ID, &dto.InviteRequest{UserID: joiner.ID})
	require.NoError(t, err)
	result, err := svc.ResolveInvitation(asUser(joiner.ID), inv.ID, true)
	require.NoError(t, err)
	require.True(t, result.MembershipGranted)

	// Joining team B consumed the pending request to team A
	_, err = svc.ResolveJoinRequest(asUser(leaderA.ID), reqA.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
}

func TestResolveStaleAcceptReportsSkip(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leader := store.addUser("Ada Lovelace")
	joiner := store.addUser("Grace Hopper")
	team, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)
	openRecruiting(t, svc, leader.ID, team.ID)

	req, err := svc.RequestToJoin(asUser(joiner.ID), team.ID)
	require.NoError(t, err)

	// Sidestep the cleanup to simulate a race: the requester gains a team
	// while their request row still exists
	otherTeam := int64(999)
	store.mu.Lock()
	store.users[joiner.ID].TeamID = &otherTeam
	store.mu.Unlock()

	result, err := svc.ResolveJoinRequest(asUser(leader.ID), req.ID, true)
	require.NoError(t, err)
	assert.False(t, result.MembershipGranted)
	assert.Equal(t, dto.ReasonUserAlreadyOnTeam, result.Reason)
}

func TestResolveInvitationDeclined(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leader := store.addUser("Ada Lovelace")
	invitee := store.addUser("Grace Hopper")
	team, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)

	inv, err := svc.InviteToTeam(asUser(leader.ID), team.ID, &dto.InviteRequest{UserID: invitee.ID})
	require.NoError(t, err)

	result, err := svc.ResolveInvitation(asUser(invitee.ID), inv.ID, false)
	require.NoError(t, err)
	assert.False(t, result.MembershipGranted)
	assert.Equal(t, dto.ReasonDeclined, result.Reason)

	teamID, err := store.usersView().GetTeamID(asUser(invitee.ID), invitee.ID)
	require.NoError(t, err)
	assert.Nil(t, teamID)
}

func TestInviteRules(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leader := store.addUser("Ada Lovelace")
	member := store.addUser("Grace Hopper")
	outsider := store.addUser("Alan Turing")
	team, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)

	// Only the leader may invite
	_, err = svc.InviteToTeam(asUser(outsider.ID), team.ID, &dto.InviteRequest{UserID: member.ID})
	assert.ErrorIs(t, err, apperrors.ErrNotTeamLeader)

	// Inviting someone already on a team is rejected
	inv, err := svc.InviteToTeam(asUser(leader.ID), team.ID, &dto.InviteRequest{UserID: member.ID})
	require.NoError(t, err)
	_, err = svc.ResolveInvitation(asUser(member.ID), inv.ID, true)
	require.NoError(t, err)
	_, err = svc.InviteToTeam(asUser(leader.ID), team.ID, &dto.InviteRequest{UserID: member.ID})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyOnTeam)

	// Duplicate pending invitations are rejected
	_, err = svc.InviteToTeam(asUser(leader.ID), team.ID, &dto.InviteRequest{UserID: outsider.ID})
	require.NoError(t, err)
	_, err = svc.InviteToTeam(asUser(leader.ID), team.ID, &dto.InviteRequest{UserID: outsider.ID})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateInvite)
}

func TestLeaveAndRemove(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leader := store.addUser("Ada Lovelace")
	member := store.addUser("Grace Hopper")
	team, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)

	inv, err := svc.InviteToTeam(asUser(leader.ID), team.ID, &dto.InviteRequest{UserID: member.ID})
	require.NoError(t, err)
	_, err = svc.ResolveInvitation(asUser(member.ID), inv.ID, true)
	require.NoError(t, err)

	// The leader cannot leave their own team
	err = svc.LeaveTeam(asUser(leader.ID), team.ID)
	assert.ErrorIs(t, err, apperrors.ErrLeaderCannotLeave)

	// Only the leader may remove a member
	err = svc.RemoveMember(asUser(member.ID), team.ID, leader.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotTeamLeader)

	// A member may leave voluntarily
	err = svc.LeaveTeam(asUser(member.ID), team.ID)
	require.NoError(t, err)

	teamID, err := store.usersView().GetTeamID(asUser(member.ID), member.ID)
	require.NoError(t, err)
	assert.Nil(t, teamID)
}

func TestDeleteTeamFreesMembers(t *testing.T) {
	store := newMemoryStore()
	pub := &fakePublisher{}
	svc := newTeamService(store, pub)
	leader := store.addUser("Ada Lovelace")
	member := store.addUser("Grace Hopper")
	team, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)

	inv, err := svc.InviteToTeam(asUser(leader.ID), team.ID, &dto.InviteRequest{UserID: member.ID})
	require.NoError(t, err)
	_, err = svc.ResolveInvitation(asUser(member.ID), inv.ID, true)
	require.NoError(t, err)

	err = svc.DeleteTeam(asUser(leader.ID), team.ID)
	require.NoError(t, err)

	for _, id := range []int64{leader.ID, member.ID} {
		teamID, err := store.usersView().GetTeamID(asUser(id), id)
		require.NoError(t, err)
		assert.Nil(t, teamID)
	}

	_, err = svc.GetTeam(asUser(leader.ID), team.ID)
	assert.ErrorIs(t, err, apperrors.ErrTeamNotFound)

	assert.Contains(t, pub.typesOn(realtime.ChannelCommunity), realtime.EventTeamDeleted)
	assert.Contains(t, pub.typesOn(realtime.TeamChannel(team.ID)), realtime.EventTeamDeleted)
}

func TestListJoinRequestsLeaderOnly(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leader := store.addUser("Ada Lovelace")
	joiner := store.addUser("Grace Hopper")
	team, err := svc.CreateTeam(asUser(leader.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)
	openRecruiting(t, svc, leader.ID, team.ID)

	_, err = svc.RequestToJoin(asUser(joiner.ID), team.ID)
	require.NoError(t, err)

	_, err = svc.ListJoinRequests(asUser(joiner.ID), team.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotTeamLeader)

	reqs, err := svc.ListJoinRequests(asUser(leader.ID), team.ID)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, joiner.ID, reqs[0].UserID)
	assert.Equal(t, "Grace Hopper", reqs[0].FullName)
}

func TestListTeamsRecruitingFilter(t *testing.T) {
	store := newMemoryStore()
	svc := newTeamService(store, &fakePublisher{})
	leaderA := store.addUser("Ada Lovelace")
	leaderB := store.addUser("Alan Turing")
	teamA, err := svc.CreateTeam(asUser(leaderA.ID), &dto.CreateTeamRequest{Name: "Rocket", ProjectIdea: "x"})
	require.NoError(t, err)
	_, err = svc.CreateTeam(asUser(leaderB.ID), &dto.CreateTeamRequest{Name: "Comet", ProjectIdea: "y"})
	require.NoError(t, err)
	openRecruiting(t, svc, leaderA.ID, teamA.ID)

	all, err := svc.ListTeams(asUser(leaderA.ID), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	recruiting, err := svc.ListTeams(asUser(leaderA.ID), true)
	require.NoError(t, err)
	require.Len(t, recruiting, 1)
	assert.Equal(t, teamA.ID, recruiting[0].ID)
}

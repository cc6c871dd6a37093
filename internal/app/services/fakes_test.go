package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/emre/teamforge/internal/app/models"
	"github.com/emre/teamforge/internal/pkg/apperrors"
	"github.com/emre/teamforge/internal/pkg/realtime"
)

// memoryStore is an in-memory stand-in for the repository layer. It enforces
// the same membership invariants as the SQL implementation so service rules
// can be exercised without a database. The per-interface views below expose
// it as the narrow stores the services consume.
type memoryStore struct {
	mu          sync.Mutex
	nextID      int64
	users       map[int64]*models.User
	teams       map[int64]*models.Team
	members     map[int64][]models.TeamMember
	requests    map[int64]*models.JoinRequest
	invitations map[int64]*models.Invitation
	messages    map[int64]*models.Message
	reads       map[int64]map[int64]bool
	skills      map[string]*models.Skill
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:       make(map[int64]*models.User),
		teams:       make(map[int64]*models.Team),
		members:     make(map[int64][]models.TeamMember),
		requests:    make(map[int64]*models.JoinRequest),
		invitations: make(map[int64]*models.Invitation),
		messages:    make(map[int64]*models.Message),
		reads:       make(map[int64]map[int64]bool),
		skills:      make(map[string]*models.Skill),
	}
}

func (s *memoryStore) usersView() UserStore             { return fakeUsers{s} }
func (s *memoryStore) teamsView() TeamStore             { return fakeTeams{s} }
func (s *memoryStore) membershipsView() MembershipStore { return fakeMemberships{s} }
func (s *memoryStore) chatView() ChatStore              { return fakeChat{s} }
func (s *memoryStore) skillsView() SkillStore           { return fakeSkills{s} }

func (s *memoryStore) newID() int64 {
	s.nextID++
	return s.nextID
}

// addUser seeds a verified, teamless user and returns it
func (s *memoryStore) addUser(fullName string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	user := &models.User{
		ID:              id,
		Email:           fmt.Sprintf("user%d@example.com", id),
		FullName:        fullName,
		Year:            models.YearThird,
		IsEmailVerified: true,
		CreatedAt:       time.Now(),
	}
	s.users[id] = user
	return user
}

func (s *memoryStore) teamByID(id int64) (*models.Team, error) {
	team, ok := s.teams[id]
	if !ok {
		return nil, apperrors.ErrTeamNotFound
	}
	return team, nil
}

// attach places a user on a team and consumes their other pending requests
// and invitations, mirroring the repository transaction
func (s *memoryStore) attach(userID, teamID int64) {
	s.members[teamID] = append(s.members[teamID], models.TeamMember{
		TeamID:   teamID,
		UserID:   userID,
		JoinedAt: time.Now(),
	})
	s.users[userID].TeamID = &teamID
	for id, req := range s.requests {
		if req.UserID == userID {
			delete(s.requests, id)
		}
	}
	for id, inv := range s.invitations {
		if inv.UserID == userID {
			delete(s.invitations, id)
		}
	}
}

func (s *memoryStore) detach(userID, teamID int64) {
	rows := s.members[teamID]
	for i, m := range rows {
		if m.UserID == userID {
			s.members[teamID] = append(rows[:i], rows[i+1:]...)
			break
		}
	}
	s.users[userID].TeamID = nil
}

func (s *memoryStore) isMember(teamID, userID int64) bool {
	for _, m := range s.members[teamID] {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (s *memoryStore) readersOf(messageID int64) []int64 {
	ids := make([]int64, 0, len(s.reads[messageID]))
	for id := range s.reads[messageID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// --- UserStore view ---

type fakeUsers struct{ s *memoryStore }

func (f fakeUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.users {
		if existing.Email == user.Email {
			return nil, apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = f.s.newID()
	user.CreatedAt = time.Now()
	f.s.users[user.ID] = user
	copied := *user
	return &copied, nil
}

func (f fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	user, ok := f.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, user := range f.s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f fakeUsers) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := f.s.users[id]; ok {
			copied := *user
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f fakeUsers) ListTeamless(ctx context.Context) ([]*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.User, 0)
	for _, user := range f.s.users {
		if user.TeamID == nil {
			copied := *user
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeUsers) UpdateProfile(ctx context.Context, user *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	existing, ok := f.s.users[user.ID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	existing.FullName = user.FullName
	existing.Year = user.Year
	existing.Bio = user.Bio
	existing.Skills = user.Skills
	copied := *existing
	return &copied, nil
}

func (f fakeUsers) UpdateAvatar(ctx context.Context, userID int64, avatarURL *string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	user, ok := f.s.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.AvatarURL = avatarURL
	return nil
}

func (f fakeUsers) SetEmailVerified(ctx context.Context, userID int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	user, ok := f.s.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.IsEmailVerified = true
	return nil
}

func (f fakeUsers) UpdateLastLogin(ctx context.Context, userID int64) error {
	return nil
}

func (f fakeUsers) GetTeamID(ctx context.Context, userID int64) (*int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	user, ok := f.s.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user.TeamID, nil
}

// --- TeamStore view ---

type fakeTeams struct{ s *memoryStore }

func (f fakeTeams) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	team, err := f.s.teamByID(id)
	if err != nil {
		return nil, err
	}
	copied := *team
	return &copied, nil
}

func (f fakeTeams) GetRoster(ctx context.Context, teamID int64) ([]models.TeamRosterEntry, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	rows := f.s.members[teamID]
	entries := make([]models.TeamRosterEntry, 0, len(rows))
	for _, m := range rows {
		user := f.s.users[m.UserID]
		entries = append(entries, models.TeamRosterEntry{
			UserID:    m.UserID,
			FullName:  user.FullName,
			AvatarURL: user.AvatarURL,
			JoinedAt:  m.JoinedAt,
		})
	}
	return entries, nil
}

func (f fakeTeams) List(ctx context.Context, recruitingOnly bool) ([]*models.Team, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.Team, 0)
	for _, team := range f.s.teams {
		if recruitingOnly && !team.IsRecruiting {
			continue
		}
		copied := *team
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeTeams) CreateWithLeader(ctx context.Context, team *models.Team) (*models.Team, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	leader, ok := f.s.users[team.LeaderID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	if leader.TeamID != nil {
		return nil, apperrors.ErrAlreadyOnTeam
	}
	team.ID = f.s.newID()
	team.CreatedAt = time.Now()
	team.UpdatedAt = team.CreatedAt
	stored := *team
	f.s.teams[team.ID] = &stored
	f.s.attach(team.LeaderID, team.ID)
	copied := stored
	return &copied, nil
}

func (f fakeTeams) Update(ctx context.Context, team *models.Team, callerID int64) (*models.Team, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	existing, err := f.s.teamByID(team.ID)
	if err != nil {
		return nil, err
	}
	if existing.LeaderID != callerID {
		return nil, apperrors.ErrNotTeamLeader
	}
	existing.Name = team.Name
	existing.ProjectIdea = team.ProjectIdea
	existing.IsRecruiting = team.IsRecruiting
	existing.AppealPitch = team.AppealPitch
	existing.AppealSkills = team.AppealSkills
	existing.UpdatedAt = time.Now()
	copied := *existing
	return &copied, nil
}

func (f fakeTeams) DeleteCascade(ctx context.Context, teamID, callerID int64) ([]int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	team, err := f.s.teamByID(teamID)
	if err != nil {
		return nil, err
	}
	if team.LeaderID != callerID {
		return nil, apperrors.ErrNotTeamLeader
	}
	memberIDs := make([]int64, 0, len(f.s.members[teamID]))
	for _, m := range f.s.members[teamID] {
		memberIDs = append(memberIDs, m.UserID)
		f.s.users[m.UserID].TeamID = nil
	}
	delete(f.s.members, teamID)
	delete(f.s.teams, teamID)
	for id, req := range f.s.requests {
		if req.TeamID == teamID {
			delete(f.s.requests, id)
		}
	}
	for id, inv := range f.s.invitations {
		if inv.TeamID == teamID {
			delete(f.s.invitations, id)
		}
	}
	return memberIDs, nil
}

func (f fakeTeams) RemoveMember(ctx context.Context, teamID, callerID, targetID int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	team, err := f.s.teamByID(teamID)
	if err != nil {
		return err
	}
	if team.LeaderID != callerID {
		return apperrors.ErrNotTeamLeader
	}
	if targetID == team.LeaderID {
		return apperrors.ErrLeaderCannotLeave
	}
	if !f.s.isMember(teamID, targetID) {
		return apperrors.ErrNotTeamMember
	}
	f.s.detach(targetID, teamID)
	return nil
}

func (f fakeTeams) Leave(ctx context.Context, teamID, userID int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	team, err := f.s.teamByID(teamID)
	if err != nil {
		return err
	}
	if team.LeaderID == userID {
		return apperrors.ErrLeaderCannotLeave
	}
	if !f.s.isMember(teamID, userID) {
		return apperrors.ErrNotTeamMember
	}
	f.s.detach(userID, teamID)
	return nil
}

// --- MembershipStore view ---

type fakeMemberships struct{ s *memoryStore }

func (f fakeMemberships) CreateJoinRequest(ctx context.Context, userID, teamID int64) (*models.JoinRequest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	user, ok := f.s.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	if user.TeamID != nil {
		return nil, apperrors.ErrAlreadyOnTeam
	}
	if _, err := f.s.teamByID(teamID); err != nil {
		return nil, err
	}
	for _, req := range f.s.requests {
		if req.UserID == userID && req.TeamID == teamID {
			return nil, apperrors.ErrDuplicateRequest
		}
	}
	req := &models.JoinRequest{ID: f.s.newID(), UserID: userID, TeamID: teamID, CreatedAt: time.Now()}
	f.s.requests[req.ID] = req
	copied := *req
	return &copied, nil
}

func (f fakeMemberships) CreateInvitation(ctx context.Context, teamID, callerID, targetID int64) (*models.Invitation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	team, err := f.s.teamByID(teamID)
	if err != nil {
		return nil, err
	}
	if team.LeaderID != callerID {
		return nil, apperrors.ErrNotTeamLeader
	}
	target, ok := f.s.users[targetID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	if target.TeamID != nil {
		return nil, apperrors.ErrAlreadyOnTeam
	}
	for _, inv := range f.s.invitations {
		if inv.UserID == targetID && inv.TeamID == teamID {
			return nil, apperrors.ErrDuplicateInvite
		}
	}
	inv := &models.Invitation{ID: f.s.newID(), UserID: targetID, TeamID: teamID, CreatedAt: time.Now()}
	f.s.invitations[inv.ID] = inv
	copied := *inv
	return &copied, nil
}

func (f fakeMemberships) ListJoinRequestsByTeam(ctx context.Context, teamID int64) ([]models.JoinRequestInfo, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	team, err := f.s.teamByID(teamID)
	if err != nil {
		return nil, err
	}
	out := make([]models.JoinRequestInfo, 0)
	for _, req := range f.s.requests {
		if req.TeamID != teamID {
			continue
		}
		user := f.s.users[req.UserID]
		out = append(out, models.JoinRequestInfo{
			JoinRequest: *req,
			FullName:    user.FullName,
			AvatarURL:   user.AvatarURL,
			TeamName:    team.Name,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeMemberships) ListInvitationsByUser(ctx context.Context, userID int64) ([]models.InvitationInfo, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]models.InvitationInfo, 0)
	for _, inv := range f.s.invitations {
		if inv.UserID != userID {
			continue
		}
		out = append(out, models.InvitationInfo{
			Invitation: *inv,
			TeamName:   f.s.teams[inv.TeamID].Name,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeMemberships) ResolveJoinRequest(ctx context.Context, requestID, callerID int64, accept bool) (*models.JoinRequest, bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	req, ok := f.s.requests[requestID]
	if !ok {
		return nil, false, apperrors.ErrRequestNotFound
	}
	team, err := f.s.teamByID(req.TeamID)
	if err != nil {
		return nil, false, err
	}
	if team.LeaderID != callerID {
		return nil, false, apperrors.ErrNotTeamLeader
	}
	copied := *req
	delete(f.s.requests, requestID)
	granted := false
	if accept && f.s.users[req.UserID].TeamID == nil {
		f.s.attach(copied.UserID, copied.TeamID)
		granted = true
	}
	return &copied, granted, nil
}

func (f fakeMemberships) ResolveInvitation(ctx context.Context, invitationID, callerID int64, accept bool) (*models.Invitation, bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	inv, ok := f.s.invitations[invitationID]
	if !ok {
		return nil, false, apperrors.ErrInvitationNotFound
	}
	if inv.UserID != callerID {
		return nil, false, apperrors.ErrPermissionDenied
	}
	copied := *inv
	delete(f.s.invitations, invitationID)
	granted := false
	if accept && f.s.users[copied.UserID].TeamID == nil {
		f.s.attach(copied.UserID, copied.TeamID)
		granted = true
	}
	return &copied, granted, nil
}

// --- ChatStore view ---

type fakeChat struct{ s *memoryStore }

func (f fakeChat) CreateMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	msg.ID = f.s.newID()
	msg.CreatedAt = time.Now()
	stored := *msg
	f.s.messages[msg.ID] = &stored
	f.s.reads[msg.ID] = map[int64]bool{msg.SenderID: true}
	copied := stored
	copied.ReadBy = []int64{msg.SenderID}
	return &copied, nil
}

func (f fakeChat) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	msg, ok := f.s.messages[id]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}
	copied := *msg
	copied.ReadBy = f.s.readersOf(id)
	return &copied, nil
}

func (f fakeChat) ListMessages(ctx context.Context, teamID *int64, limit int, beforeID int64) ([]*models.Message, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.Message, 0)
	for _, msg := range f.s.messages {
		if !sameScope(msg.TeamID, teamID) {
			continue
		}
		if beforeID > 0 && msg.ID >= beforeID {
			continue
		}
		copied := *msg
		copied.ReadBy = f.s.readersOf(msg.ID)
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f fakeChat) DeleteMessage(ctx context.Context, messageID, callerID int64) (*models.Message, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	msg, ok := f.s.messages[messageID]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}
	if msg.SenderID != callerID {
		return nil, apperrors.ErrNotSender
	}
	copied := *msg
	delete(f.s.messages, messageID)
	delete(f.s.reads, messageID)
	return &copied, nil
}

func (f fakeChat) MarkRead(ctx context.Context, messageID, userID int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.messages[messageID]; !ok {
		return apperrors.ErrMessageNotFound
	}
	f.s.reads[messageID][userID] = true
	return nil
}

func sameScope(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// --- SkillStore view ---

type fakeSkills struct{ s *memoryStore }

func (f fakeSkills) List(ctx context.Context) ([]*models.Skill, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.Skill, 0, len(f.s.skills))
	for _, skill := range f.s.skills {
		copied := *skill
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeSkills) Ensure(ctx context.Context, name string) (*models.Skill, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if existing, ok := f.s.skills[name]; ok {
		copied := *existing
		return &copied, nil
	}
	skill := &models.Skill{ID: f.s.newID(), Name: name, CreatedAt: time.Now()}
	f.s.skills[name] = skill
	copied := *skill
	return &copied, nil
}

// fakePublisher records published events for assertions
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	channel string
	event   realtime.Event
}

func (p *fakePublisher) Publish(channel string, event realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{channel: channel, event: event})
}

func (p *fakePublisher) typesOn(channel string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0)
	for _, e := range p.events {
		if e.channel == channel {
			out = append(out, e.event.Type)
		}
	}
	return out
}

// fakeFileStorage records saved and deleted paths
type fakeFileStorage struct {
	saved   []string
	deleted []string
}

func (f *fakeFileStorage) SaveAvatar(file *multipart.FileHeader) (string, error) {
	path := fmt.Sprintf("uploads/avatars/%d.png", len(f.saved)+1)
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeFileStorage) DeleteFile(path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

// asUser builds a context carrying the authenticated user id the way the
// auth middleware does
func asUser(id int64) context.Context {
	return context.WithValue(context.Background(), "userID", id) //nolint:staticcheck
}

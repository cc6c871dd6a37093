package realtime

// Event types pushed over the feed. Team-scoped events go to the team's
// channel, the rest to the community channel.
const (
	EventTeamCreated        = "team.created"
	EventTeamUpdated        = "team.updated"
	EventTeamDeleted        = "team.deleted"
	EventRequestCreated     = "request.created"
	EventRequestResolved    = "request.resolved"
	EventInvitationCreated  = "invitation.created"
	EventInvitationResolved = "invitation.resolved"
	EventMemberRemoved      = "member.removed"
	EventMessageCreated     = "message.created"
	EventMessageDeleted     = "message.deleted"
	EventMessageRead        = "message.read"
	EventUserUpdated        = "user.updated"
	EventSkillAdded         = "skill.added"
)

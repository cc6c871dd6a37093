package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository              *UserRepository
	TeamRepository              *TeamRepository
	MembershipRepository        *MembershipRepository
	ChatRepository              *ChatRepository
	SkillRepository             *SkillRepository
	TokenRepository             *TokenRepository
	VerificationTokenRepository *VerificationTokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:              NewUserRepository(db),
		TeamRepository:              NewTeamRepository(db),
		MembershipRepository:        NewMembershipRepository(db),
		ChatRepository:              NewChatRepository(db),
		SkillRepository:             NewSkillRepository(db),
		TokenRepository:             NewTokenRepository(db),
		VerificationTokenRepository: NewVerificationTokenRepository(db),
	}
}

package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emre/teamforge/internal/app/models"
	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/pkg/apperrors"
	"github.com/emre/teamforge/internal/pkg/auth"
	"github.com/emre/teamforge/internal/pkg/email"
)

const (
	verificationTokenTTL = 24 * time.Hour

	// Minimum gap between verification emails to one user
	resendCooldown = 60 * time.Second
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, emailAddr string) error
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userStore         UserStore
	tokenStore        TokenStore
	verificationStore VerificationStore
	jwtService        *auth.JWTService
	emailService      email.Service
	logger            zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userStore UserStore,
	tokenStore TokenStore,
	verificationStore VerificationStore,
	jwtService *auth.JWTService,
	emailService email.Service,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userStore:         userStore,
		tokenStore:        tokenStore,
		verificationStore: verificationStore,
		jwtService:        jwtService,
		emailService:      emailService,
		logger:            logger,
	}
}

// Register creates a new account, dispatches a verification email, and logs
// the user straight in. App routes stay gated until the email is verified.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, apperrors.NewCustomError(err, "Failed to process password")
	}

	user, err := s.userStore.Create(ctx, &models.User{
		Email:    req.Email,
		Password: hashed,
		FullName: req.FullName,
		Year:     req.Year,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("email", user.Email).Msg("User registered")

	if err := s.dispatchVerification(ctx, user); err != nil {
		// Registration stands; the user can ask for a resend
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to dispatch verification email")
	}

	return s.issueSession(ctx, user)
}

// Login verifies credentials and issues a token pair
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userStore.GetByEmail(ctx, req.Email)
	if err != nil {
		// Hide whether the account exists
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn().Str("email", req.Email).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.userStore.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to stamp last login")
	}

	return s.issueSession(ctx, user)
}

// RefreshToken rotates a refresh token: the old one is revoked and a new
// pair is issued
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, _, err := s.tokenStore.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.tokenStore.RevokeToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// Logout revokes the presented refresh token
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenStore.RevokeToken(ctx, refreshToken)
}

// LogoutAll revokes every refresh token the caller holds, signing them out
// of all sessions at once
func (s *authServiceImpl) LogoutAll(ctx context.Context) error {
	userID, ok := callerID(ctx)
	if !ok {
		return apperrors.ErrPermissionDenied
	}

	if err := s.tokenStore.RevokeAllUserTokens(ctx, userID); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Msg("All sessions revoked")
	return nil
}

// VerifyEmail consumes a verification token and marks the account verified
func (s *authServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.verificationStore.ConsumeToken(ctx, token)
	if err != nil {
		return err
	}

	if err := s.userStore.SetEmailVerified(ctx, userID); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Msg("Email verified")

	if user, err := s.userStore.GetByID(ctx, userID); err == nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.FullName); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to send welcome email")
		}
	}
	return nil
}

// ResendVerification issues a fresh verification email, no more than once
// per cooldown window
func (s *authServiceImpl) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := s.userStore.GetByEmail(ctx, emailAddr)
	if err != nil {
		// Don't reveal whether the address is registered
		s.logger.Debug().Str("email", emailAddr).Msg("Resend requested for unknown email")
		return nil
	}

	if user.IsEmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}

	lastSent, err := s.verificationStore.GetLastSentAt(ctx, user.ID)
	if err != nil {
		return err
	}
	if !lastSent.IsZero() && time.Since(lastSent) < resendCooldown {
		return apperrors.ErrResendCooldown
	}

	return s.dispatchVerification(ctx, user)
}

func (s *authServiceImpl) dispatchVerification(ctx context.Context, user *models.User) error {
	token := uuid.New().String()
	if err := s.verificationStore.CreateToken(ctx, user.ID, token, time.Now().Add(verificationTokenTTL)); err != nil {
		return err
	}
	return s.emailService.SendVerificationEmail(user.Email, user.FullName, token)
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate token pair")
		return nil, apperrors.NewCustomError(err, "Failed to generate tokens")
	}

	if err := s.tokenStore.CreateToken(ctx, refreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:           accessToken,
		TokenType:             "Bearer",
		ExpiresIn:             expiresIn,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresIn: refreshExpiresIn,
	}, nil
}

func (s *authServiceImpl) issueSession(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: *tokens,
		User:  dto.ToUserResponse(user),
	}, nil
}

package email

import (
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"
)

// Service defines the interface for email operations
type Service interface {
	SendVerificationEmail(toEmail, toName, token string) error
	SendWelcomeEmail(toEmail, toName string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	BaseURL   string // Base URL for verification links
}

type smtpService struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewService creates a new SMTP-backed email service
func NewService(config SMTPConfig, logger zerolog.Logger) Service {
	return &smtpService{
		config: config,
		logger: logger,
	}
}

// SendVerificationEmail sends an email with a verification link
func (s *smtpService) SendVerificationEmail(toEmail, toName, token string) error {
	verifyURL := fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", s.config.BaseURL, token)

	// Without SMTP credentials, log the link instead of sending (development mode)
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Info().
			Str("to", toEmail).
			Str("verifyUrl", verifyURL).
			Msg("SMTP not configured, logging verification link instead of sending")
		return nil
	}

	subject := "Verify your TeamForge account"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"Welcome to TeamForge. Please confirm your email address by opening the link below:\r\n\r\n"+
			"%s\r\n\r\n"+
			"The link expires in 24 hours. If you did not sign up, you can ignore this email.\r\n",
		toName, verifyURL)

	return s.send(toEmail, subject, body)
}

// SendWelcomeEmail sends a short welcome note after verification
func (s *smtpService) SendWelcomeEmail(toEmail, toName string) error {
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Info().Str("to", toEmail).Msg("SMTP not configured, skipping welcome email")
		return nil
	}

	subject := "Welcome to TeamForge"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"Your email is verified. Create your profile, browse recruiting teams, and find your hackathon crew.\r\n",
		toName)

	return s.send(toEmail, subject, body)
}

func (s *smtpService) send(toEmail, subject, body string) error {
	addr := s.config.Host + ":" + strconv.Itoa(s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	msg := []byte(
		"From: " + s.config.FromName + " <" + s.config.FromEmail + ">\r\n" +
			"To: " + toEmail + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
			"\r\n" +
			body)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{toEmail}, msg); err != nil {
		s.logger.Error().Err(err).Str("to", toEmail).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug().Str("to", toEmail).Str("subject", subject).Msg("Email sent")
	return nil
}

package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/termtrack/backend/src/config"
	"github.com/username/termtrack/backend/src/logger"
)

type EmailService interface {
	SendVerificationEmail(toEmail, username, token string) error
	SendPasswordResetEmail(toEmail, username, token string) error
}

func NewEmailService() EmailService {
	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing email service", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete, falling back to mock email service")
			return newMockEmailService()
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		return &mailgunEmailService{
			mg:          mg,
			senderEmail: config.Cfg.SenderEmail,
			senderName:  config.Cfg.SenderName,
		}
	case "smtp":
		if config.Cfg.SMTPServer == "" || config.Cfg.SMTPUser == "" || config.Cfg.SMTPPassword == "" {
			logger.L.Warn("SMTP configuration incomplete, falling back to mock email service")
			return newMockEmailService()
		}
		return &smtpEmailService{
			server:      config.Cfg.SMTPServer,
			port:        config.Cfg.SMTPPort,
			user:        config.Cfg.SMTPUser,
			password:    config.Cfg.SMTPPassword,
			senderEmail: config.Cfg.SenderEmail,
		}
	default:
		return newMockEmailService()
	}
}

func verificationLink(token string) string {
	return fmt.Sprintf("%s?token=%s", config.Cfg.VerificationEmailBaseURL, token)
}

func passwordResetLink(token string) string {
	return fmt.Sprintf("%s?token=%s", config.Cfg.PasswordResetBaseURL, token)
}

// --- Mailgun ---

type mailgunEmailService struct {
	mg          *mailgun.MailgunImpl
	senderEmail string
	senderName  string
}

func (s *mailgunEmailService) send(toEmail, subject, body string) error {
	sender := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	message := mailgun.NewMessage(sender, subject, body, toEmail)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Mailgun send failed", "to", toEmail, "subject", subject, "error", err)
		return fmt.Errorf("sending email via mailgun: %w", err)
	}
	logger.L.Info("Email sent via Mailgun", "to", toEmail, "messageID", id)
	return nil
}

func (s *mailgunEmailService) SendVerificationEmail(toEmail, username, token string) error {
	body := fmt.Sprintf("Hi %s,\n\nPlease verify your email by clicking this link:\n%s\n\nThe Termtrack Team",
		username, verificationLink(token))
	return s.send(toEmail, "Verify your Termtrack email address", body)
}

func (s *mailgunEmailService) SendPasswordResetEmail(toEmail, username, token string) error {
	body := fmt.Sprintf("Hi %s,\n\nA password reset was requested for your account. Reset it here:\n%s\n\nIf you did not request this, ignore this email.\n\nThe Termtrack Team",
		username, passwordResetLink(token))
	return s.send(toEmail, "Reset your Termtrack password", body)
}

// --- SMTP ---

type smtpEmailService struct {
	server      string
	port        int
	user        string
	password    string
	senderEmail string
}

func (s *smtpEmailService) send(toEmail, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.server, s.port)
	auth := smtp.PlainAuth("", s.user, s.password, s.server)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.senderEmail, toEmail, subject, body))

	if err := smtp.SendMail(addr, auth, s.senderEmail, []string{toEmail}, msg); err != nil {
		logger.L.Error("SMTP send failed", "to", toEmail, "subject", subject, "error", err)
		return fmt.Errorf("sending email via smtp: %w", err)
	}
	logger.L.Info("Email sent via SMTP", "to", toEmail)
	return nil
}

func (s *smtpEmailService) SendVerificationEmail(toEmail, username, token string) error {
	body := fmt.Sprintf("Hi %s,\n\nPlease verify your email by clicking this link:\n%s\n\nThe Termtrack Team",
		username, verificationLink(token))
	return s.send(toEmail, "Verify your Termtrack email address", body)
}

func (s *smtpEmailService) SendPasswordResetEmail(toEmail, username, token string) error {
	body := fmt.Sprintf("Hi %s,\n\nA password reset was requested for your account. Reset it here:\n%s\n\nThe Termtrack Team",
		username, passwordResetLink(token))
	return s.send(toEmail, "Reset your Termtrack password", body)
}

// --- Mock (development default: logs the links instead of sending) ---

type mockEmailService struct{}

func newMockEmailService() EmailService {
	return &mockEmailService{}
}

func (s *mockEmailService) SendVerificationEmail(toEmail, username, token string) error {
	logger.L.Info("MOCK verification email", "to", toEmail, "username", username, "link", verificationLink(token))
	return nil
}

func (s *mockEmailService) SendPasswordResetEmail(toEmail, username, token string) error {
	logger.L.Info("MOCK password reset email", "to", toEmail, "username", username, "link", passwordResetLink(token))
	return nil
}

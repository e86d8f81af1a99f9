package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/duitdash/src/config"
	"github.com/username/duitdash/src/logger"
)

type EmailService interface {
	SendVerificationEmail(toEmail, username, token string) error
}

func NewEmailService() EmailService {
	if config.Cfg == nil {
		return &MockEmailService{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing email service", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete. Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		return &MailgunEmailService{
			mg:          mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey),
			senderEmail: config.Cfg.SenderEmail,
			senderName:  config.Cfg.SenderName,
		}
	case "smtp":
		if config.Cfg.SMTPServer == "" || config.Cfg.SMTPUser == "" || config.Cfg.SMTPPassword == "" {
			logger.L.Warn("SMTP configuration incomplete. Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		return &SMTPEmailService{
			server:      config.Cfg.SMTPServer,
			port:        config.Cfg.SMTPPort,
			user:        config.Cfg.SMTPUser,
			password:    config.Cfg.SMTPPassword,
			senderEmail: config.Cfg.SenderEmail,
		}
	default:
		return &MockEmailService{}
	}
}

func verificationBody(username, token string) (subject, text string) {
	link := fmt.Sprintf("%s?token=%s", config.Cfg.VerificationEmailBaseURL, token)
	subject = "Verify your DuitDash email"
	text = fmt.Sprintf("Hi %s,\n\nPlease verify your email address by opening the link below:\n\n%s\n\nThe link expires in %s.\n",
		username, link, config.Cfg.VerificationTokenExpiry)
	return subject, text
}

type MailgunEmailService struct {
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
}

func (s *MailgunEmailService) SendVerificationEmail(toEmail, username, token string) error {
	subject, text := verificationBody(username, token)
	sender := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	message := s.mg.NewMessage(sender, subject, text, toEmail)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send verification email via Mailgun", "to", toEmail, "error", err)
		return err
	}
	logger.L.Info("Verification email sent", "to", toEmail, "mailgunID", id)
	return nil
}

type SMTPEmailService struct {
	server      string
	port        int
	user        string
	password    string
	senderEmail string
}

func (s *SMTPEmailService) SendVerificationEmail(toEmail, username, token string) error {
	subject, text := verificationBody(username, token)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.senderEmail, toEmail, subject, text))
	addr := fmt.Sprintf("%s:%d", s.server, s.port)
	auth := smtp.PlainAuth("", s.user, s.password, s.server)

	if err := smtp.SendMail(addr, auth, s.senderEmail, []string{toEmail}, msg); err != nil {
		logger.L.Error("Failed to send verification email via SMTP", "to", toEmail, "error", err)
		return err
	}
	logger.L.Info("Verification email sent", "to", toEmail)
	return nil
}

// MockEmailService logs instead of sending. Used in development and tests.
type MockEmailService struct{}

func (s *MockEmailService) SendVerificationEmail(toEmail, username, token string) error {
	logger.L.Info("MOCK email: verification", "to", toEmail, "username", username, "token", token)
	return nil
}

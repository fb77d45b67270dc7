package notifications

import (
	"context"
	"fmt"

	"github.com/you/storeapi/domain"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// MailConfig holds SMTP settings. An empty Host disables delivery.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender is the part of gomail.Dialer used to deliver messages
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailServiceImpl implements domain.NotificationService over SMTP
type MailServiceImpl struct {
	sender Sender
	from   string
	log    *zap.Logger
}

// NewMailService creates a new notification service. Without a mail host the
// code is logged instead of sent.
func NewMailService(cfg MailConfig, log *zap.Logger) domain.NotificationService {
	var sender Sender
	if cfg.Host != "" {
		sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return NewMailServiceWithSender(sender, cfg.From, log)
}

// NewMailServiceWithSender creates a mail service around an existing sender
func NewMailServiceWithSender(sender Sender, from string, log *zap.Logger) domain.NotificationService {
	return &MailServiceImpl{sender: sender, from: from, log: log}
}

// SendOTP implements domain.NotificationService
func (s *MailServiceImpl) SendOTP(ctx context.Context, email, code string) error {
	if s.sender == nil {
		s.log.Info("mail delivery disabled, logging otp", zap.String("email", email), zap.String("otp", code))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your verification code")
	m.SetBody("text/html", fmt.Sprintf("Your verification code is <b>%s</b>.<br><br>It expires in 2 minutes.", code))

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}

// Package sender отправляет письма пользователям: предупреждения
// об истечении подписки и коды восстановления пароля.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fademebets/fademebets-backend/internal/lib/sl"
	"github.com/fademebets/fademebets-backend/internal/lib/smtp"
	"github.com/fademebets/fademebets-backend/internal/models"
)

// Transport описывает почтовый транспорт.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// Service воркер рассылки писем.
type Service struct {
	transport Transport
	log       *slog.Logger
}

// New создает новый экземпляр сервиса рассылки.
func New(transport Transport, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendExpiryWarning отправляет предупреждение о скором окончании подписки.
func (s *Service) SendExpiryWarning(body []byte) error {
	var message models.ExpiryInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal expiry message", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your FadeMeBets subscription expires tomorrow"
	bodyText := fmt.Sprintf(
		"Hello!\n\nYour FadeMeBets subscription expires on %s.\n\nRenew it to keep access to picks and analytics.",
		message.EndDate.Format("January 2, 2006"))

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

// SendResetCode отправляет код восстановления пароля.
func (s *Service) SendResetCode(body []byte) error {
	var message models.ResetCodeMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal reset code message", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your FadeMeBets password reset code"
	bodyText := fmt.Sprintf(
		"Hello!\n\nYour password reset code is: %s\n\nThe code expires in 10 minutes. If you did not request it, ignore this email.",
		message.Code)

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}

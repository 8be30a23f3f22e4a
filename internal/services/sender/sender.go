// Package services реализует отправку почтовых уведомлений о новых подписках.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/severyanov/meetapp-backend/internal/lib/sl"
	"github.com/severyanov/meetapp-backend/internal/lib/smtp"
	"github.com/severyanov/meetapp-backend/internal/models"
)

// SenderService читает сообщения очереди уведомлений и отправляет письма
// организаторам митапов.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendSubscriptionNotification отправляет организатору митапа письмо
// о новом участнике. Ошибка возвращается наружу, чтобы consumer сделал nack
// и сообщение было доставлено повторно.
func (s *SenderService) SendSubscriptionNotification(body []byte) error {
	var message models.SubscriptionNotification
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	if message.Meetup.Organizer == nil {
		s.log.Error("notification without organizer", slog.Int("meetup_id", message.Meetup.ID))
		return fmt.Errorf("notification for meetup %d has no organizer", message.Meetup.ID)
	}

	to := []string{message.Meetup.Organizer.Email}
	subject := fmt.Sprintf("Новая подписка на митап %q", message.Meetup.Title)
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nНа ваш митап %q (%s) записался новый участник: %s <%s>.",
		message.Meetup.Organizer.Name, message.Meetup.Title,
		message.Meetup.Date.Format("02.01.2006 15:04"),
		message.User.Name, message.User.Email)

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
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
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}

// Package sender отправляет операторам письма о находках сверки.
// Сообщения приходят из очереди reconciliation; каждое письмо — одна
// находка. Ошибка отправки возвращается потребителю, и сообщение
// возвращается в очередь.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/subpanel/subscription-admin/internal/lib/sl"
	"github.com/subpanel/subscription-admin/internal/lib/smtp"
	"github.com/subpanel/subscription-admin/internal/models"
)

// Service превращает находки сверки в письма операторам.
type Service struct {
	log           *slog.Logger
	transport     smtp.TransportInterface
	operatorEmail string
}

// New создает сервис отправки уведомлений.
func New(log *slog.Logger, transport smtp.TransportInterface, operatorEmail string) *Service {
	return &Service{
		log:           log,
		transport:     transport,
		operatorEmail: operatorEmail,
	}
}

// HandleMessage обрабатывает одно сообщение очереди. Нечитаемое тело
// отбрасывается без ошибки, чтобы не зациклить очередь на нем.
func (s *Service) HandleMessage(body []byte) error {
	const op = "sender.HandleMessage"

	var finding models.ReconciliationFinding
	if err := json.Unmarshal(body, &finding); err != nil {
		s.log.Warn("dropping malformed finding message", sl.Err(err))
		return nil
	}

	if err := s.send(finding); err != nil {
		s.log.Error("failed to send notification",
			slog.String("user_id", finding.UserID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("notification sent",
		slog.String("user_id", finding.UserID),
		slog.String("issue", finding.Issue))
	return nil
}

func (s *Service) send(finding models.ReconciliationFinding) error {
	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		if quitErr := client.Quit(); quitErr != nil {
			s.log.Warn("failed to close SMTP session", sl.Err(quitErr))
		}
	}()

	from := s.transport.GetSMTPUser()
	if err = client.Mail(from); err != nil {
		return err
	}
	if err = client.Rcpt(s.operatorEmail); err != nil {
		return err
	}

	wc, err := client.Data()
	if err != nil {
		return err
	}
	msg := buildMessage(from, s.operatorEmail, finding)
	if _, err = wc.Write([]byte(msg)); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

func buildMessage(from, to string, finding models.ReconciliationFinding) string {
	subject := fmt.Sprintf("Subscription data issue: %s", finding.Issue)
	body := fmt.Sprintf(
		"Reconciliation found an inconsistency.\r\n\r\n"+
			"User: %s\r\nIssue: %s\r\nDetail: %s\r\nFound at: %s\r\n\r\n"+
			"Manual review is required.\r\n",
		finding.UserID, finding.Issue, finding.Detail,
		finding.FoundAt.Format("2006-01-02 15:04:05 MST"))
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body)
}

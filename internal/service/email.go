package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"equiprent-backend/internal/domain"
)

type emailService struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

func NewEmailService(apiKey, fromName, fromAddr string) EmailService {
	return &emailService{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

func (s *emailService) SendOverdueReminder(ctx context.Context, item domain.OverdueItem) error {
	if item.CustomerEmail == "" {
		return fmt.Errorf("%w: order %s has no customer email", domain.ErrInvalidInput, item.OrderNumber)
	}

	from := mail.NewEmail(s.fromName, s.fromAddr)
	to := mail.NewEmail(item.CustomerName, item.CustomerEmail)
	subject := fmt.Sprintf("Overdue rental return - order %s", item.OrderNumber)
	body := fmt.Sprintf(
		"Hello %s,\n\nThe equipment on order %s was due back on %s and has not been returned yet. "+
			"Rental charges continue to accrue until the equipment is returned.\n\n"+
			"Please contact us to arrange the return.\n",
		item.CustomerName, item.OrderNumber, item.LineItem.EndAt.Format(time.RFC1123))

	message := mail.NewSingleEmail(from, subject, to, body, "")
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sending overdue reminder for order %s: %w", item.OrderNumber, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sending overdue reminder for order %s: status %d", item.OrderNumber, resp.StatusCode)
	}
	return nil
}

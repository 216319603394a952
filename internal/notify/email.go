package notify

import (
	"context"
	"fmt"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/logger"

	"github.com/google/uuid"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailClient interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// SendGrid e-mails status changes to recipients that have an address on file.
type SendGrid struct {
	client    emailClient
	users     UserLookup
	fromEmail string
	fromName  string
}

func NewSendGrid(apiKey, fromEmail, fromName string, users UserLookup) *SendGrid {
	return &SendGrid{
		client:    sendgrid.NewSendClient(apiKey),
		users:     users,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (n *SendGrid) NotifyStatusChange(ctx context.Context, recipient, bookingID uuid.UUID, status domain.BookingStatus) error {
	u, err := n.users.GetByID(ctx, recipient)
	if err != nil {
		return fmt.Errorf("failed to look up recipient %s: %w", recipient, err)
	}
	if u.Email == "" {
		return nil
	}

	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail(u.Name, u.Email)
	subject := fmt.Sprintf("Booking #%s is %s", domain.ShortID(bookingID), status)
	plainText := FormatStatusSMS(bookingID, status)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>FarmShare booking update</h2>
				<p>Hello %s,</p>
				<p>%s</p>
				<p>Booking ID: <strong>%s</strong></p>
			</body>
		</html>
	`, u.Name, domain.StatusMessage(status), bookingID)

	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)

	logger.ExternalServiceCall("sendgrid", "Send", "recipient", recipient, "bookingID", bookingID)
	response, err := n.client.Send(message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

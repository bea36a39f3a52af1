package mailer

import (
	"context"

	"github.com/google/uuid"

	"github.com/sapphiretrails/backoffice/pkg/logger"
)

// DevMailer writes outgoing mail to the log instead of sending it.
type DevMailer struct{}

func NewDevMailer() *DevMailer { return &DevMailer{} }

func (d *DevMailer) Send(ctx context.Context, toEmail, toName, subject, text, _ string) (string, error) {
	id := "dev-" + uuid.NewString()
	logger.InfoContext(ctx, "[DEV MAIL]",
		"message_id", id,
		"to", toEmail,
		"name", toName,
		"subject", subject,
		"text", text,
	)
	return id, nil
}

func (d *DevMailer) SendBookingStatus(ctx context.Context, n BookingStatusNotice) error {
	return sendBookingStatus(ctx, d, n)
}

var _ Service = (*DevMailer)(nil)

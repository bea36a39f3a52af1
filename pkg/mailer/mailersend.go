package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

// ErrMailerDisabled is returned when no API key or sender is configured.
var ErrMailerDisabled = errors.New("mailersend disabled: MAILERSEND_API_KEY and MAILER_FROM are required")

// SendError is a non-2xx answer from the MailerSend API.
type SendError struct {
	Status int
	Body   string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("mailersend: status %d: %s", e.Status, e.Body)
}

// MailerSend delivers through the MailerSend HTTP API.
type MailerSend struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	timeout time.Duration
	Enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSend {
	m := &MailerSend{
		from:    mailersend.From{Name: fromName, Email: fromEmail},
		timeout: 10 * time.Second,
		Enabled: apiKey != "" && fromEmail != "",
	}
	if m.Enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

func (m *MailerSend) compose(toEmail, toName, subject, text, html string) *mailersend.Message {
	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	if t := strings.TrimSpace(text); t != "" {
		msg.SetText(text)
	}
	if h := strings.TrimSpace(html); h != "" {
		msg.SetHTML(html)
	}
	return msg
}

// Send returns the MailerSend message id.
func (m *MailerSend) Send(ctx context.Context, toEmail, toName, subject, text, html string) (string, error) {
	if !m.Enabled {
		return "", ErrMailerDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	res, err := m.client.Email.Send(ctx, m.compose(toEmail, toName, subject, text, html))
	if err != nil {
		return "", fmt.Errorf("mailersend send: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", &SendError{Status: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return res.Header.Get("X-Message-Id"), nil
}

func (m *MailerSend) SendBookingStatus(ctx context.Context, n BookingStatusNotice) error {
	return sendBookingStatus(ctx, m, n)
}

var _ Service = (*MailerSend)(nil)

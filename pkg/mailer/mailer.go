package mailer

import (
	"context"
	"fmt"
	"html"
	"strings"
)

type Service interface {
	Send(ctx context.Context, toEmail, toName, subject, text, html string) (string, error)
	SendBookingStatus(ctx context.Context, n BookingStatusNotice) error
}

// BookingStatusNotice is what a guest is told when staff triage a request.
type BookingStatusNotice struct {
	Email    string
	Name     string
	TourType string
	TourDate string
	Status   string
}

func (n BookingStatusNotice) subject() string {
	switch n.Status {
	case "accepted":
		return "Your Sapphire Trails booking is confirmed"
	case "rejected":
		return "Update on your Sapphire Trails booking request"
	default:
		return "Your Sapphire Trails booking request"
	}
}

func (n BookingStatusNotice) body() (text, htmlBody string) {
	var line string
	switch n.Status {
	case "accepted":
		line = fmt.Sprintf("Good news: your %s on %s is confirmed. We look forward to seeing you.", n.TourType, n.TourDate)
	case "rejected":
		line = fmt.Sprintf("Unfortunately we cannot accommodate your %s on %s. Reply to this email and we will help you find another date.", n.TourType, n.TourDate)
	default:
		line = fmt.Sprintf("Your request for %s on %s is being reviewed.", n.TourType, n.TourDate)
	}
	greeting := "Hello"
	if strings.TrimSpace(n.Name) != "" {
		greeting = "Hello " + n.Name
	}
	text = greeting + ",\n\n" + line + "\n\nSapphire Trails"
	htmlBody = "<p>" + html.EscapeString(greeting) + ",</p><p>" + html.EscapeString(line) + "</p><p>Sapphire Trails</p>"
	return text, htmlBody
}

func sendBookingStatus(ctx context.Context, s Service, n BookingStatusNotice) error {
	text, htmlBody := n.body()
	_, err := s.Send(ctx, n.Email, n.Name, n.subject(), text, htmlBody)
	return err
}

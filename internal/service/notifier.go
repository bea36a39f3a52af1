package service

import (
	"context"
	"time"

	"github.com/sapphiretrails/backoffice/internal/catalog"
	"github.com/sapphiretrails/backoffice/pkg/events"
	"github.com/sapphiretrails/backoffice/pkg/logger"
	"github.com/sapphiretrails/backoffice/pkg/mailer"
)

const notifyQueue = "notify"

// StatusNotifier mails guests when staff accept or reject their request.
type StatusNotifier struct {
	mailer  mailer.Service
	tours   TourService
	timeout time.Duration
}

// NewStatusNotifier builds a notifier. tours may be nil, in which case tour
// names come from the built-in catalog.
func NewStatusNotifier(m mailer.Service, tours TourService) *StatusNotifier {
	return &StatusNotifier{mailer: m, tours: tours, timeout: 15 * time.Second}
}

// Start subscribes the notifier on bus. Every instance shares one queue
// group so a status change is mailed once.
func (n *StatusNotifier) Start(bus events.Subscriber) error {
	return bus.QueueSubscribe(events.BookingStatusChanged, notifyQueue, n.handle)
}

func (n *StatusNotifier) handle(msg *events.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, logger.ServiceKey, "notify")

	var ev events.BookingStatusChangedEvent
	if err := msg.Decode(&ev); err != nil {
		logger.ErrorContext(ctx, "Malformed status event", "error", err, "event_id", msg.ID)
		return
	}
	if ev.Email == "" {
		return
	}

	notice := mailer.BookingStatusNotice{
		Email:    ev.Email,
		Name:     ev.Name,
		TourType: n.tourName(ctx, ev.TourType),
		TourDate: ev.TourDate,
		Status:   ev.To,
	}
	if err := n.mailer.SendBookingStatus(ctx, notice); err != nil {
		logger.ErrorContext(ctx, "Failed to send booking status mail", "error", err, "booking_id", ev.BookingID)
		return
	}
	logger.InfoContext(ctx, "Booking status mail sent", "booking_id", ev.BookingID, "status", ev.To)
}

func (n *StatusNotifier) tourName(ctx context.Context, tourType string) string {
	if n.tours != nil {
		if t, err := n.tours.Get(ctx, tourType); err == nil && t.TourPageTitle != "" {
			return t.TourPageTitle
		}
	}
	return catalog.TourName(tourType)
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/sapphiretrails/backoffice/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

// Decode unmarshals the message payload into v.
func (m *Message) Decode(v interface{}) error {
	return json.Unmarshal(m.Data, v)
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url,
		nats.Name("sapphire-backoffice"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))
	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(wrap(msg.Subject, msg.Data))
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(wrap(msg.Subject, msg.Data))
	})
	return err
}

func (n *NATSEventBus) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}

func wrap(subject string, data []byte) *Message {
	return &Message{
		Subject:   subject,
		Data:      data,
		Timestamp: time.Now(),
		ID:        uuid.NewString(),
	}
}

// LocalBus delivers events in-process. It backs single-instance deployments
// that run without NATS and the tests. Each handler runs on its own
// goroutine so Publish never waits on a subscriber; queue groups collapse to
// one handler per subscription.
type LocalBus struct {
	mu       sync.RWMutex
	subs     []localSub
	inflight sync.WaitGroup
}

type localSub struct {
	pattern string
	handler func(msg *Message)
}

func NewLocalBus() *LocalBus { return &LocalBus{} }

func (b *LocalBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	logger.DebugContext(ctx, "Publishing local event", "subject", subject)

	b.mu.RLock()
	var handlers []func(*Message)
	for _, s := range b.subs {
		if subjectMatches(s.pattern, subject) {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		msg := wrap(subject, payload)
		b.inflight.Add(1)
		go func(h func(*Message)) {
			defer b.inflight.Done()
			h(msg)
		}(h)
	}
	return nil
}

// Drain blocks until every handler started by Publish has returned.
func (b *LocalBus) Drain() { b.inflight.Wait() }

func (b *LocalBus) Subscribe(subject string, handler func(msg *Message)) error {
	b.mu.Lock()
	b.subs = append(b.subs, localSub{pattern: subject, handler: handler})
	b.mu.Unlock()
	return nil
}

func (b *LocalBus) QueueSubscribe(subject, _ string, handler func(msg *Message)) error {
	return b.Subscribe(subject, handler)
}

func (b *LocalBus) Close() error {
	b.Drain()
	return nil
}

// subjectMatches implements the NATS token wildcards "*" and ">".
func subjectMatches(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")
	for i, p := range pt {
		if p == ">" {
			return len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if p != "*" && p != st[i] {
			return false
		}
	}
	return len(pt) == len(st)
}

var (
	_ EventBus = (*NATSEventBus)(nil)
	_ EventBus = (*LocalBus)(nil)
)

// Event subjects
const (
	TourCreated = "tour.created"
	TourUpdated = "tour.updated"
	TourDeleted = "tour.deleted"

	BookingCreated       = "booking.created"
	BookingUpdated       = "booking.updated"
	BookingStatusChanged = "booking.status_changed"

	UserCreated = "user.created"
	UserDeleted = "user.deleted"

	LocationChanged = "location.changed"
)

type TourEvent struct {
	TourID int64     `json:"tour_id"`
	Slug   string    `json:"slug"`
	At     time.Time `json:"at"`
}

type BookingCreatedEvent struct {
	BookingID int64     `json:"booking_id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	TourType  string    `json:"tour_type"`
	TourDate  string    `json:"tour_date"`
	Guests    int       `json:"guests"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingStatusChangedEvent struct {
	BookingID int64     `json:"booking_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	TourType  string    `json:"tour_type"`
	TourDate  string    `json:"tour_date"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

type UserEvent struct {
	UserID int64     `json:"user_id"`
	Type   string    `json:"type"`
	At     time.Time `json:"at"`
}

type LocationEvent struct {
	Slug   string    `json:"slug"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

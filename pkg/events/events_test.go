package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectMatches(t *testing.T) {
	cases := []struct {
		pattern, subject string
		want             bool
	}{
		{"tour.created", "tour.created", true},
		{"tour.*", "tour.deleted", true},
		{"tour.*", "booking.created", false},
		{"booking.>", "booking.status_changed", true},
		{"booking.>", "booking", false},
		{"*", "tour.created", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, subjectMatches(c.pattern, c.subject), "%s ~ %s", c.pattern, c.subject)
	}
}

func TestLocalBusDelivers(t *testing.T) {
	bus := NewLocalBus()
	var got []TourEvent
	require.NoError(t, bus.Subscribe("tour.*", func(msg *Message) {
		var ev TourEvent
		assert.NoError(t, msg.Decode(&ev))
		got = append(got, ev)
	}))

	require.NoError(t, bus.Publish(context.Background(), TourCreated, TourEvent{TourID: 7, Slug: "gem-explorer"}))
	require.NoError(t, bus.Publish(context.Background(), BookingCreated, BookingCreatedEvent{BookingID: 1}))
	bus.Drain()

	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].TourID)
	assert.Equal(t, "gem-explorer", got[0].Slug)
}

func TestLocalBusPublishDoesNotWaitForHandlers(t *testing.T) {
	bus := NewLocalBus()
	release := make(chan struct{})
	done := make(chan struct{})
	require.NoError(t, bus.QueueSubscribe(BookingStatusChanged, "notify", func(*Message) {
		<-release
		close(done)
	}))

	require.NoError(t, bus.Publish(context.Background(), BookingStatusChanged, BookingStatusChangedEvent{BookingID: 3}))
	select {
	case <-done:
		t.Fatal("handler finished before it was released")
	default:
	}

	close(release)
	require.NoError(t, bus.Close())
	select {
	case <-done:
	default:
		t.Fatal("Close returned before the handler finished")
	}
}

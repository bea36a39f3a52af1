package catalog

import (
	"time"

	"github.com/sapphiretrails/backoffice/internal/domain"
)

type mockBooking struct {
	name, email, phone, tourType, date, message string
	guests                                      int
	status                                      domain.BookingStatus
	daysAgo                                     int
}

var mockBookings = []mockBooking{
	{"Nimal Perera", "nimal.perera@example.com", "+94 77 123 4567", "gem-explorer-day-tour", "2026-11-04", "We would love an English speaking guide.", 2, domain.BookingPending, 1},
	{"Sarah Johnson", "sarah.j@example.com", "+44 7700 900123", "sapphire-trails-deluxe", "2026-11-12", "Celebrating our anniversary.", 2, domain.BookingAccepted, 2},
	{"Kenji Tanaka", "kenji.tanaka@example.com", "+81 90 1234 5678", "gem-explorer-day-tour", "2026-11-15", "", 4, domain.BookingPending, 3},
	{"Amara Silva", "amara.silva@example.com", "+94 71 555 0101", "gem-explorer-day-tour", "2026-11-20", "Two children aged 8 and 11.", 4, domain.BookingRejected, 4},
	{"Lukas Becker", "lukas.becker@example.com", "+49 151 2345678", "sapphire-trails-deluxe", "2026-12-01", "Vegetarian meals please.", 1, domain.BookingPending, 5},
	{"Priya Nair", "priya.nair@example.com", "+91 98765 43210", "gem-explorer-day-tour", "2026-12-03", "", 3, domain.BookingAccepted, 6},
	{"Tom Wilson", "tom.wilson@example.com", "+61 412 345 678", "sapphire-trails-deluxe", "2026-12-10", "Airport pickup needed.", 2, domain.BookingPending, 7},
	{"Fatima Rizvi", "fatima.rizvi@example.com", "+94 76 222 3344", "gem-explorer-day-tour", "2026-12-14", "", 6, domain.BookingAccepted, 8},
	{"Marco Rossi", "marco.rossi@example.com", "+39 347 123 4567", "gem-explorer-day-tour", "2026-12-20", "Photography allowed in the mine?", 2, domain.BookingRejected, 9},
	{"Chloe Martin", "chloe.martin@example.com", "+33 6 12 34 56 78", "sapphire-trails-deluxe", "2027-01-05", "", 2, domain.BookingPending, 10},
}

// MockBookings returns the demo booking requests relative to now.
func MockBookings(now time.Time) []domain.Booking {
	out := make([]domain.Booking, 0, len(mockBookings))
	for _, m := range mockBookings {
		date, err := time.Parse(domain.DateLayout, m.date)
		if err != nil {
			continue
		}
		created := now.Add(-time.Duration(m.daysAgo) * 24 * time.Hour)
		out = append(out, domain.Booking{
			Name:      m.name,
			Email:     m.email,
			Phone:     m.phone,
			TourType:  m.tourType,
			TourDate:  date,
			Guests:    m.guests,
			Message:   m.message,
			Status:    m.status,
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	return out
}

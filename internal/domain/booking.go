package domain

import "time"

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingAccepted BookingStatus = "accepted"
	BookingRejected BookingStatus = "rejected"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingAccepted, BookingRejected:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// DateLayout is the wire format of tour dates.
const DateLayout = "2006-01-02"

type Booking struct {
	ID        int64         `json:"id"`
	UserID    *int64        `json:"user_id,omitempty"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	TourType  string        `json:"tour_type"`
	TourDate  time.Time     `json:"-"`
	Guests    int           `json:"guests"`
	Message   string        `json:"message"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BookingDTO is the wire form; the date travels without a time component.
type BookingDTO struct {
	Booking
	Date string `json:"date"`
}

func (b Booking) DTO() BookingDTO {
	return BookingDTO{Booking: b, Date: b.TourDate.Format(DateLayout)}
}

type BookingReq struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=7,max=32"`
	TourType string `json:"tour_type" validate:"required,max=120"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Guests   int    `json:"guests" validate:"gte=1,lte=50"`
	Message  string `json:"message" validate:"max=2000"`
}

// BookingStatusReq is the triage action body.
type BookingStatusReq struct {
	Status string `json:"status" validate:"required,oneof=pending accepted rejected"`
}

type BookingStats struct {
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

// BookingPage is one page of the triage list.
type BookingPage struct {
	Items      []BookingDTO `json:"items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
	Stats      BookingStats `json:"stats"`
}

// Package wizard is the multi-step tour package authoring flow used by the
// admin tooling. Each step validates only its own fields; the whole form is
// validated again on submit.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sapphiretrails/backoffice/internal/client"
	"github.com/sapphiretrails/backoffice/internal/domain"
)

type Step int

const (
	StepCard Step = iota + 1
	StepDetail
	StepContent
	StepSchedule
)

// StepCount is the number of steps in the wizard.
const StepCount = int(StepSchedule)

func (s Step) String() string {
	switch s {
	case StepCard:
		return "Homepage Card"
	case StepDetail:
		return "Tour Page Details"
	case StepContent:
		return "Highlights & Inclusions"
	case StepSchedule:
		return "Itinerary & Booking Link"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

var (
	// ErrUnreachable is returned by Submit when the API could not be reached.
	ErrUnreachable = errors.New("could not connect to the server, please try again later")
	ErrSubmit      = errors.New("creation failed")
)

// FieldError attaches a submit failure to a single form field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

type Card struct {
	ID          string `json:"id" validate:"omitempty,max=120"`
	Title       string `json:"homepage_title" validate:"required,max=200"`
	Description string `json:"homepage_description" validate:"required"`
	ImageURL    string `json:"homepage_image_url" validate:"required"`
	ImageAlt    string `json:"homepage_image_alt" validate:"required"`
	ImageHint   string `json:"homepage_image_hint"`
}

type Detail struct {
	Title         string `json:"tour_page_title" validate:"required,max=200"`
	Duration      string `json:"duration" validate:"required"`
	Price         string `json:"price" validate:"required"`
	PriceSuffix   string `json:"price_suffix"`
	Description   string `json:"tour_page_description" validate:"required"`
	HeroImage     string `json:"hero_image_url" validate:"required"`
	HeroImageHint string `json:"hero_image_hint"`
}

type Content struct {
	Highlights []domain.Highlight `json:"highlights" validate:"min=1,dive"`
	Inclusions []domain.Inclusion `json:"inclusions" validate:"min=1,dive"`
}

type Schedule struct {
	Itinerary   []domain.ItineraryItem `json:"itinerary" validate:"min=1,dive"`
	BookingLink string                 `json:"booking_link" validate:"required"`
}

// Creator posts a finished package. *client.Client satisfies it.
type Creator interface {
	CreateTour(ctx context.Context, req *domain.TourPackageReq) (*domain.TourPackage, error)
}

type Wizard struct {
	Card     Card
	Detail   Detail
	Content  Content
	Schedule Schedule

	step Step
}

// New returns a wizard on the first step, pre-filled with the form defaults.
func New() *Wizard {
	w := &Wizard{
		step:   StepCard,
		Detail: Detail{PriceSuffix: "per person"},
		Content: Content{
			Highlights: make([]domain.Highlight, 3),
			Inclusions: make([]domain.Inclusion, 1),
		},
		Schedule: Schedule{
			Itinerary:   make([]domain.ItineraryItem, 5),
			BookingLink: "/booking",
		},
	}
	for i := range w.Content.Highlights {
		w.Content.Highlights[i].Icon = "Star"
	}
	return w
}

func (w *Wizard) Current() Step { return w.step }

// Next validates the active step and advances when it is valid. On the last
// step a valid form stays where it is.
func (w *Wizard) Next() error {
	if err := w.validateStep(w.step); err != nil {
		return err
	}
	if int(w.step) < StepCount {
		w.step++
	}
	return nil
}

// Back moves to the previous step without validating.
func (w *Wizard) Back() {
	if w.step > StepCard {
		w.step--
	}
}

func (w *Wizard) validateStep(s Step) error {
	switch s {
	case StepCard:
		return domain.Validate(&w.Card)
	case StepDetail:
		return domain.Validate(&w.Detail)
	case StepContent:
		return domain.Validate(&w.Content)
	case StepSchedule:
		return domain.Validate(&w.Schedule)
	default:
		return fmt.Errorf("unknown step %d", s)
	}
}

// Validate checks every step and moves the wizard to the first invalid one.
func (w *Wizard) Validate() error {
	for s := StepCard; s <= StepSchedule; s++ {
		if err := w.validateStep(s); err != nil {
			w.step = s
			return err
		}
	}
	return nil
}

func (w *Wizard) AddInclusion() {
	w.Content.Inclusions = append(w.Content.Inclusions, domain.Inclusion{})
}

func (w *Wizard) RemoveInclusion(i int) {
	if i < 0 || i >= len(w.Content.Inclusions) {
		return
	}
	w.Content.Inclusions = append(w.Content.Inclusions[:i], w.Content.Inclusions[i+1:]...)
}

func (w *Wizard) AddItinerary() {
	w.Schedule.Itinerary = append(w.Schedule.Itinerary, domain.ItineraryItem{})
}

func (w *Wizard) RemoveItinerary(i int) {
	if i < 0 || i >= len(w.Schedule.Itinerary) {
		return
	}
	w.Schedule.Itinerary = append(w.Schedule.Itinerary[:i], w.Schedule.Itinerary[i+1:]...)
}

// Payload builds the create request from the form.
func (w *Wizard) Payload() *domain.TourPackageReq {
	req := &domain.TourPackageReq{
		ID:                  strings.TrimSpace(w.Card.ID),
		HomepageTitle:       w.Card.Title,
		HomepageDescription: w.Card.Description,
		HomepageImageURL:    w.Card.ImageURL,
		HomepageImageAlt:    w.Card.ImageAlt,
		HomepageImageHint:   w.Card.ImageHint,
		TourPageTitle:       w.Detail.Title,
		Duration:            w.Detail.Duration,
		Price:               w.Detail.Price,
		PriceSuffix:         w.Detail.PriceSuffix,
		HeroImageURL:        w.Detail.HeroImage,
		HeroImageHint:       w.Detail.HeroImageHint,
		TourPageDescription: w.Detail.Description,
		BookingLink:         w.Schedule.BookingLink,
		Highlights:          append([]domain.Highlight(nil), w.Content.Highlights...),
		Inclusions:          append([]domain.Inclusion(nil), w.Content.Inclusions...),
		Itinerary:           append([]domain.ItineraryItem(nil), w.Schedule.Itinerary...),
	}
	req.Normalize()
	return req
}

// Submit validates the whole form and posts it through c.
func (w *Wizard) Submit(ctx context.Context, c Creator) (*domain.TourPackage, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	t, err := c.CreateTour(ctx, w.Payload())
	if err == nil {
		return t, nil
	}

	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnreachable):
		return nil, ErrUnreachable
	case errors.As(err, &apiErr) && apiErr.Status == 422 && mentionsID(apiErr):
		w.step = StepCard
		return nil, &FieldError{Field: "id", Message: "This ID already exists. Please use a unique one."}
	case errors.As(err, &apiErr):
		return nil, fmt.Errorf("%w: %s", ErrSubmit, apiErr.Message)
	default:
		return nil, fmt.Errorf("%w: %v", ErrSubmit, err)
	}
}

func mentionsID(e *client.APIError) bool {
	if _, ok := e.Fields["id"]; ok {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "id")
}

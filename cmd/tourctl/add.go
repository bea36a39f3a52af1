package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/internal/wizard"
)

// addTour walks the package wizard on stdin and submits it.
func (c *cli) addTour(ctx context.Context, creator wizard.Creator) error {
	w := wizard.New()
	for {
		step := w.Current()
		fmt.Fprintf(c.out, "\nStep %d of %d: %s\n", int(step), wizard.StepCount, step)
		if err := c.fillStep(w, step); err != nil {
			return err
		}
		if err := w.Next(); err != nil {
			c.printValidation(err)
			continue
		}
		if step != wizard.StepSchedule {
			continue
		}

		t, err := w.Submit(ctx, creator)
		var ferr *wizard.FieldError
		var verr *domain.ValidationError
		switch {
		case err == nil:
			fmt.Fprintf(c.out, "Package %q has been saved (id %d, slug %s)\n", w.Card.Title, t.ID, t.Slug)
			return nil
		case errors.As(err, &ferr):
			fmt.Fprintf(c.out, "%s: %s\n", ferr.Field, ferr.Message)
		case errors.As(err, &verr):
			c.printValidation(err)
		default:
			return err
		}
	}
}

func (c *cli) printValidation(err error) {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		fmt.Fprintln(c.out, err)
		return
	}
	fmt.Fprintln(c.out, "Please fill out all required fields before proceeding:")
	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(c.out, "  %s %s\n", k, verr.Fields[k])
	}
}

func (c *cli) fillStep(w *wizard.Wizard, step wizard.Step) error {
	switch step {
	case wizard.StepCard:
		return c.ask(
			field{"Unique ID (slug, optional)", &w.Card.ID},
			field{"Card title", &w.Card.Title},
			field{"Card description", &w.Card.Description},
			field{"Card image URL", &w.Card.ImageURL},
			field{"Image alt text", &w.Card.ImageAlt},
			field{"Image hint", &w.Card.ImageHint},
		)
	case wizard.StepDetail:
		return c.ask(
			field{"Page title", &w.Detail.Title},
			field{"Duration", &w.Detail.Duration},
			field{"Price", &w.Detail.Price},
			field{"Price suffix", &w.Detail.PriceSuffix},
			field{"Page description", &w.Detail.Description},
			field{"Hero image URL", &w.Detail.HeroImage},
			field{"Hero image hint", &w.Detail.HeroImageHint},
		)
	case wizard.StepContent:
		for i := range w.Content.Highlights {
			h := &w.Content.Highlights[i]
			n := strconv.Itoa(i + 1)
			if err := c.ask(
				field{"Highlight " + n + " icon", &h.Icon},
				field{"Highlight " + n + " title", &h.Title},
				field{"Highlight " + n + " description", &h.Description},
			); err != nil {
				return err
			}
		}
		n, err := c.askCount("Number of inclusions", len(w.Content.Inclusions))
		if err != nil {
			return err
		}
		for len(w.Content.Inclusions) < n {
			w.AddInclusion()
		}
		for len(w.Content.Inclusions) > n {
			w.RemoveInclusion(len(w.Content.Inclusions) - 1)
		}
		for i := range w.Content.Inclusions {
			if err := c.ask(field{"Inclusion " + strconv.Itoa(i+1), &w.Content.Inclusions[i].Text}); err != nil {
				return err
			}
		}
		return nil
	case wizard.StepSchedule:
		n, err := c.askCount("Number of itinerary rows", len(w.Schedule.Itinerary))
		if err != nil {
			return err
		}
		for len(w.Schedule.Itinerary) < n {
			w.AddItinerary()
		}
		for len(w.Schedule.Itinerary) > n {
			w.RemoveItinerary(len(w.Schedule.Itinerary) - 1)
		}
		for i := range w.Schedule.Itinerary {
			row := &w.Schedule.Itinerary[i]
			n := strconv.Itoa(i + 1)
			if err := c.ask(
				field{"Itinerary " + n + " time", &row.Time},
				field{"Itinerary " + n + " title", &row.Title},
				field{"Itinerary " + n + " description", &row.Description},
			); err != nil {
				return err
			}
		}
		return c.ask(field{"Booking link", &w.Schedule.BookingLink})
	}
	return nil
}

type field struct {
	label string
	dst   *string
}

func (c *cli) ask(fields ...field) error {
	for _, f := range fields {
		v, err := c.prompt(f.label, *f.dst)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

func (c *cli) askCount(label string, current int) (int, error) {
	for {
		v, err := c.prompt(label, strconv.Itoa(current))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(v)
		if err == nil && n >= 1 && n <= 20 {
			return n, nil
		}
		fmt.Fprintln(c.out, "Enter a number between 1 and 20")
	}
}

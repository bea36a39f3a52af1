package domain

import "time"

type Location struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	CardImage   string    `json:"card_image"`
	HeroImage   string    `json:"hero_image"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type LocationReq struct {
	Slug        string `json:"slug" validate:"omitempty,max=120"`
	Title       string `json:"title" validate:"required,max=200"`
	Subtitle    string `json:"subtitle" validate:"max=200"`
	CardImage   string `json:"card_image"`
	HeroImage   string `json:"hero_image"`
	Description string `json:"description"`
}

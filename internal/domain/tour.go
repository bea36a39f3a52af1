package domain

import "time"

type TourPackage struct {
	ID                  int64     `json:"id"`
	Slug                string    `json:"slug"`
	HomepageTitle       string    `json:"homepage_title"`
	HomepageDescription string    `json:"homepage_description"`
	HomepageImageURL    string    `json:"homepage_image_url"`
	HomepageImageAlt    string    `json:"homepage_image_alt"`
	HomepageImageHint   string    `json:"homepage_image_hint"`
	TourPageTitle       string    `json:"tour_page_title"`
	Duration            string    `json:"duration"`
	Price               string    `json:"price"`
	PriceSuffix         string    `json:"price_suffix"`
	HeroImageURL        string    `json:"hero_image_url"`
	HeroImageHint       string    `json:"hero_image_hint"`
	TourPageDescription string    `json:"tour_page_description"`
	BookingLink         string    `json:"booking_link"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Highlights        []Highlight     `json:"highlights"`
	Inclusions        []Inclusion     `json:"inclusions"`
	Itinerary         []ItineraryItem `json:"itinerary"`
	ExperienceGallery []GalleryImage  `json:"experience_gallery"`
}

type Highlight struct {
	ID          int64  `json:"id,omitempty"`
	Icon        string `json:"icon"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

type Inclusion struct {
	ID        int64  `json:"id,omitempty"`
	Text      string `json:"text" validate:"required"`
	SortOrder int    `json:"sort_order"`
}

type ItineraryItem struct {
	ID            int64  `json:"id,omitempty"`
	TourPackageID int64  `json:"tour_package_id,omitempty"`
	Time          string `json:"time" validate:"required"`
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	SortOrder     int    `json:"sort_order"`
}

type GalleryImage struct {
	ID            int64     `json:"id,omitempty"`
	TourPackageID int64     `json:"tour_package_id,omitempty"`
	ImageURL      string    `json:"image_url" validate:"required"`
	Alt           string    `json:"alt"`
	Hint          string    `json:"hint"`
	SortOrder     int       `json:"sort_order"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// TourPackageReq is the create and update payload. ID is the requested slug;
// it is optional on create and ignored on update.
type TourPackageReq struct {
	ID                  string `json:"id" validate:"omitempty,max=120"`
	HomepageTitle       string `json:"homepage_title" validate:"required,max=200"`
	HomepageDescription string `json:"homepage_description" validate:"required"`
	HomepageImageURL    string `json:"homepage_image_url" validate:"required"`
	HomepageImageAlt    string `json:"homepage_image_alt" validate:"required"`
	HomepageImageHint   string `json:"homepage_image_hint"`
	TourPageTitle       string `json:"tour_page_title" validate:"required,max=200"`
	Duration            string `json:"duration" validate:"required"`
	Price               string `json:"price" validate:"required"`
	PriceSuffix         string `json:"price_suffix"`
	HeroImageURL        string `json:"hero_image_url" validate:"required"`
	HeroImageHint       string `json:"hero_image_hint"`
	TourPageDescription string `json:"tour_page_description" validate:"required"`
	BookingLink         string `json:"booking_link" validate:"required"`

	Highlights        []Highlight     `json:"highlights" validate:"dive"`
	Inclusions        []Inclusion     `json:"inclusions" validate:"dive"`
	Itinerary         []ItineraryItem `json:"itinerary" validate:"dive"`
	ExperienceGallery []GalleryImage  `json:"experience_gallery,omitempty" validate:"dive"`
}

// Normalize fills defaults the admin form would have filled and assigns
// positional sort orders to items that arrive without one.
func (r *TourPackageReq) Normalize() {
	if r.PriceSuffix == "" {
		r.PriceSuffix = "per person"
	}
	if r.BookingLink == "" {
		r.BookingLink = "/booking"
	}
	if allZero(len(r.Highlights), func(i int) int { return r.Highlights[i].SortOrder }) {
		for i := range r.Highlights {
			r.Highlights[i].SortOrder = i
		}
	}
	if allZero(len(r.Inclusions), func(i int) int { return r.Inclusions[i].SortOrder }) {
		for i := range r.Inclusions {
			r.Inclusions[i].SortOrder = i
		}
	}
	if allZero(len(r.Itinerary), func(i int) int { return r.Itinerary[i].SortOrder }) {
		for i := range r.Itinerary {
			r.Itinerary[i].SortOrder = i
		}
	}
	if allZero(len(r.ExperienceGallery), func(i int) int { return r.ExperienceGallery[i].SortOrder }) {
		for i := range r.ExperienceGallery {
			r.ExperienceGallery[i].SortOrder = i
		}
	}
}

func allZero(n int, at func(int) int) bool {
	for i := 0; i < n; i++ {
		if at(i) != 0 {
			return false
		}
	}
	return true
}

// ImagePaths is the payload of an image upload against a package.
type ImagePaths struct {
	HomepageImageURL string `json:"homepage_image_url"`
	HeroImageURL     string `json:"hero_image_url"`
}

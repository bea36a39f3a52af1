// Package catalog holds the built-in tour packages and demo bookings. The
// packages back the public listing when the API cannot be reached; the
// bookings seed an empty database when demo data is enabled.
package catalog

import "github.com/sapphiretrails/backoffice/internal/domain"

func gemExplorerItinerary() []domain.ItineraryItem {
	return []domain.ItineraryItem{
		{Time: "9:00 a.m", Title: "Meet & Greet", Description: "Gather at the visitor center for safety briefing and equipment fitting."},
		{Time: "10:00 a.m", Title: "Mine Entry", Description: "Descend into the mine and explore the underground chambers."},
		{Time: "12:00 p.m", Title: "Gem Hunting", Description: "Begin your search for precious gems with expert guidance."},
		{Time: "1:00 p.m", Title: "Lunch Break", Description: "Enjoy a hearty meal at the surface with scenic mountain views."},
		{Time: "5:00 p.m", Title: "Return Journey", Description: "Head back to the starting point with your precious discoveries."},
	}
}

func deluxeItinerary() []domain.ItineraryItem {
	return append(gemExplorerItinerary()[:4],
		domain.ItineraryItem{Time: "5:00 p.m", Title: "Luxury Transfer", Description: "Transfer to the Grand Silver Ray resort for check-in."},
		domain.ItineraryItem{Time: "7:30 p.m", Title: "Gourmet Dinner", Description: "Experience a curated dining menu with local and international flavors."},
		domain.ItineraryItem{Time: "Day 2", Title: "Leisure & Departure", Description: "Enjoy breakfast and resort amenities before departure."},
	)
}

func inclusions(texts ...string) []domain.Inclusion {
	out := make([]domain.Inclusion, len(texts))
	for i, t := range texts {
		out[i] = domain.Inclusion{Text: t, SortOrder: i}
	}
	return out
}

func ordered(items []domain.ItineraryItem) []domain.ItineraryItem {
	for i := range items {
		items[i].SortOrder = i
	}
	return items
}

// InitialPackages returns a fresh copy of the built-in packages.
func InitialPackages() []domain.TourPackage {
	return []domain.TourPackage{
		{
			Slug:                "gem-explorer-day-tour",
			HomepageImageURL:    "https://content-provider.payshia.com/sapphire-trail/images/img4.webp",
			HomepageImageAlt:    "A group of smiling tourists wearing hard hats on a sapphire mine tour.",
			HomepageImageHint:   "tourists mining gems",
			HomepageTitle:       "Exclusive Sapphire Mine Tour with Hands-On Discovery",
			HomepageDescription: "Dive deep into the world of gem mining with expert guides. Discover the secrets behind Sri Lanka's most precious sapphires and immerse yourself in authentic local traditions.",
			TourPageTitle:       "Gem Explorer Day Tour",
			Duration:            "8 Hours",
			Price:               "$135",
			PriceSuffix:         "per person",
			HeroImageURL:        "https://content-provider.payshia.com/sapphire-trail/images/img4.webp",
			HeroImageHint:       "tourists mining gems",
			TourPageDescription: "Embark on an unforgettable underground adventure as you explore authentic gem mines, discover precious stones, and learn from expert geologists in this immersive full-day experience.",
			Highlights: []domain.Highlight{
				{Icon: "Gem", Title: "Gem Discovery", Description: "Find and keep precious gems", SortOrder: 0},
				{Icon: "Users", Title: "Expert Guides", Description: "Professional geologist guidance", SortOrder: 1},
				{Icon: "Mountain", Title: "Underground Adventure", Description: "Explore authentic mine tunnels", SortOrder: 2},
			},
			Inclusions: inclusions(
				"GUIDED MINE TOUR",
				"Gem market tour",
				"Traditional & Modern Gem cutting tour",
				"Gem museum visit",
				"Gem Showcase from premium vendors",
				"SNACK AT THE MINE LUNCH AT GRAND SILVER RAY",
			),
			Itinerary:         ordered(gemExplorerItinerary()),
			ExperienceGallery: []domain.GalleryImage{},
			BookingLink:       "/booking",
		},
		{
			Slug:                "sapphire-trails-deluxe",
			HomepageImageURL:    "https://content-provider.payshia.com/sapphire-trail/images/img5.webp",
			HomepageImageAlt:    "The logo for Sapphire Trails Deluxe tours.",
			HomepageImageHint:   "luxury gem logo",
			HomepageTitle:       "Tea Estate & Luxury Dining",
			HomepageDescription: "Savor the flavors of Sri Lanka with a private tour of a lush tea estate, followed by a curated gourmet dining experience in an elegant setting surrounded by nature.",
			TourPageTitle:       "Sapphire Trails Deluxe",
			Duration:            "1 Night Stay",
			Price:               "$215",
			PriceSuffix:         "per person",
			HeroImageURL:        "https://content-provider.payshia.com/sapphire-trail/images/img5.webp",
			HeroImageHint:       "luxury gem logo",
			TourPageDescription: "Experience the ultimate luxury journey, combining the thrill of gem exploration with the tranquility of a tea estate and a gourmet dining experience, complete with an overnight stay.",
			Highlights: []domain.Highlight{
				{Icon: "Star", Title: "All-Inclusive", Description: "Includes all Gem Explorer perks", SortOrder: 0},
				{Icon: "Coffee", Title: "Tea Estate Tour", Description: "Private tour and tea tasting session", SortOrder: 1},
				{Icon: "BedDouble", Title: "Luxury Stay", Description: "Full board at Grand Silver Ray", SortOrder: 2},
			},
			Inclusions: inclusions(
				"Includes everything from the Gem Explorer Tour",
				"GEM EXPLORER TOUR",
				"TEA FACTORY TOUR & TEA TASTING SESSION",
				"ONE NIGHT FULL BOARD STAY AT GRAND SILVER RAY",
			),
			Itinerary:         ordered(deluxeItinerary()),
			ExperienceGallery: []domain.GalleryImage{},
			BookingLink:       "/booking",
		},
	}
}

// TourName maps a booking tour type to its display title.
func TourName(tourType string) string {
	for _, p := range InitialPackages() {
		if p.Slug == tourType {
			return p.TourPageTitle
		}
	}
	return tourType
}

package storage

import "fmt"

// defaultBusinesses are Richmond-style starter entries used when the listing
// source is not configured and the store is empty.
var defaultBusinesses = []Business{
	{Name: "Mama's Kitchen", Category: "Food", Description: "Homestyle comfort food and daily specials.", AverageRating: 4.5, TotalReviews: 12},
	{Name: "Tech Fix Pro", Category: "Services", Description: "Computer and phone repair, same-day service.", AverageRating: 4.8, TotalReviews: 28},
	{Name: "Green Leaf Cafe", Category: "Food", Description: "Organic coffee and light bites.", AverageRating: 4.2, TotalReviews: 8},
	{Name: "Style Corner", Category: "Retail", Description: "Trendy clothing and accessories.", AverageRating: 4.0, TotalReviews: 15},
	{Name: "Sunset Cinema", Category: "Entertainment", Description: "Independent films and classic screenings.", AverageRating: 4.6, TotalReviews: 22},
	{Name: "Wellness Plus", Category: "Health and Wellness", Description: "Massage, yoga, and nutrition counseling.", AverageRating: 4.7, TotalReviews: 18},
	{Name: "Joe's Pizza", Category: "Food", Description: "New York-style pizza and subs.", AverageRating: 4.3, TotalReviews: 31},
	{Name: "Book Nook", Category: "Retail", Description: "Used and new books, cozy reading space.", AverageRating: 4.4, TotalReviews: 9},
	{Name: "FitLife Gym", Category: "Health and Wellness", Description: "24/7 gym with classes and personal training.", AverageRating: 4.1, TotalReviews: 45},
	{Name: "Quick Clean", Category: "Services", Description: "Residential and commercial cleaning.", AverageRating: 4.5, TotalReviews: 14},
}

// SeedDefaults inserts the static starter businesses when the store is
// empty. Returns the number of businesses inserted (zero when the store
// already has data).
func (s *Store) SeedDefaults() (int, error) {
	count, err := s.CountBusinesses()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	inserted := 0
	for i := range defaultBusinesses {
		if _, err := s.InsertBusiness(&defaultBusinesses[i]); err != nil {
			return inserted, fmt.Errorf("storage: seed defaults: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

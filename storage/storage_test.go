package storage

import (
	"path/filepath"
	"testing"
)

// newTestStore creates a Store backed by a temporary sqlite database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestBusiness(t *testing.T, s *Store, b Business) int64 {
	t.Helper()
	id, err := s.InsertBusiness(&b)
	if err != nil {
		t.Fatalf("InsertBusiness(%q): %v", b.Name, err)
	}
	return id
}

func strPtr(v string) *string   { return &v }
func f64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int         { return &v }

func TestNew(t *testing.T) {
	t.Run("creates database and tables", func(t *testing.T) {
		s := newTestStore(t)
		for _, table := range []string{"businesses", "users", "favorites", "reviews", "settings"} {
			if _, err := s.db.Exec("SELECT COUNT(*) FROM " + table); err != nil {
				t.Errorf("%s table missing: %v", table, err)
			}
		}
	})

	t.Run("invalid path returns error", func(t *testing.T) {
		_, err := New("/nonexistent/dir/db.sqlite")
		if err == nil {
			t.Fatal("expected error for invalid path, got nil")
		}
	})
}

func TestFindBusinessByName(t *testing.T) {
	s := newTestStore(t)
	insertTestBusiness(t, s, Business{Name: "The Deli", Category: "Food"})

	t.Run("case-insensitive trimmed match", func(t *testing.T) {
		for _, name := range []string{"The Deli", "the deli", "  THE DELI  "} {
			got, err := s.FindBusinessByName(name)
			if err != nil {
				t.Fatalf("FindBusinessByName(%q): %v", name, err)
			}
			if got == nil {
				t.Fatalf("FindBusinessByName(%q) = nil, want match", name)
			}
			if got.Name != "The Deli" {
				t.Errorf("Name = %q, want %q", got.Name, "The Deli")
			}
		}
	})

	t.Run("no match returns nil", func(t *testing.T) {
		got, err := s.FindBusinessByName("Nowhere Cafe")
		if err != nil {
			t.Fatalf("FindBusinessByName: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("empty name returns nil", func(t *testing.T) {
		got, err := s.FindBusinessByName("   ")
		if err != nil {
			t.Fatalf("FindBusinessByName: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil for blank name, got %+v", got)
		}
	})
}

func TestInsertBusiness_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	lat, lng := 37.54, -77.43
	id := insertTestBusiness(t, s, Business{
		Name:          "Café X",
		Category:      "Food",
		Description:   "Espresso bar.",
		Address:       "12 Main St, Richmond, VA 23220",
		AverageRating: 4.6,
		TotalReviews:  600,
		Phone:         "+18045551234",
		Website:       "https://example.com",
		YelpURL:       "https://yelp.example/cafe-x",
		Latitude:      &lat,
		Longitude:     &lng,
		PriceRange:    "$$$",
		Hours:         "Mon: 0700-1700",
		PhotoURL:      "https://img.example/x.jpg",
		Attributes:    "wifi: true",
		Summary:       "Café X - Highly-rated.",
		YelpID:        "cafe-x-richmond",
	})

	got, err := s.GetBusiness(id)
	if err != nil {
		t.Fatalf("GetBusiness: %v", err)
	}
	if got == nil {
		t.Fatal("GetBusiness returned nil")
	}
	if got.Name != "Café X" || got.Category != "Food" || got.PriceRange != "$$$" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Latitude == nil || *got.Latitude != lat {
		t.Errorf("Latitude = %v, want %v", got.Latitude, lat)
	}
	if got.YelpID != "cafe-x-richmond" {
		t.Errorf("YelpID = %q", got.YelpID)
	}
}

func TestUpdateBusiness_PartialSemantics(t *testing.T) {
	s := newTestStore(t)
	id := insertTestBusiness(t, s, Business{
		Name: "Corner Shop", Category: "Retail", Phone: "+18040000000",
		Description: "Original description.", AverageRating: 4.0, TotalReviews: 10,
	})

	t.Run("nil fields left untouched", func(t *testing.T) {
		err := s.UpdateBusiness(id, BusinessUpdate{
			AverageRating: f64Ptr(4.4),
			TotalReviews:  intPtr(25),
		})
		if err != nil {
			t.Fatalf("UpdateBusiness: %v", err)
		}

		got, _ := s.GetBusiness(id)
		if got.AverageRating != 4.4 || got.TotalReviews != 25 {
			t.Errorf("aggregates = %v/%v, want 4.4/25", got.AverageRating, got.TotalReviews)
		}
		if got.Phone != "+18040000000" {
			t.Errorf("Phone = %q, should not have changed", got.Phone)
		}
		if got.Description != "Original description." {
			t.Errorf("Description = %q, should not have changed", got.Description)
		}
	})

	t.Run("pointer to empty string clears", func(t *testing.T) {
		if err := s.UpdateBusiness(id, BusinessUpdate{Phone: strPtr("")}); err != nil {
			t.Fatalf("UpdateBusiness: %v", err)
		}
		got, _ := s.GetBusiness(id)
		if got.Phone != "" {
			t.Errorf("Phone = %q, want cleared", got.Phone)
		}
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		if err := s.UpdateBusiness(id, BusinessUpdate{}); err != nil {
			t.Fatalf("UpdateBusiness: %v", err)
		}
	})
}

func TestTopRatedBusinesses_Ordering(t *testing.T) {
	s := newTestStore(t)
	insertTestBusiness(t, s, Business{Name: "Low", Category: "Food", AverageRating: 3.0, TotalReviews: 500})
	insertTestBusiness(t, s, Business{Name: "HighFewReviews", Category: "Food", AverageRating: 4.8, TotalReviews: 10})
	insertTestBusiness(t, s, Business{Name: "HighManyReviews", Category: "Food", AverageRating: 4.8, TotalReviews: 90})

	got, err := s.TopRatedBusinesses(10)
	if err != nil {
		t.Fatalf("TopRatedBusinesses: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d businesses, want 3", len(got))
	}
	if got[0].Name != "HighManyReviews" || got[1].Name != "HighFewReviews" || got[2].Name != "Low" {
		t.Errorf("order = %q, %q, %q", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestFavorites(t *testing.T) {
	s := newTestStore(t)
	userID, err := s.CreateUser("demo", "demo@hiddengems.local")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	bizA := insertTestBusiness(t, s, Business{Name: "A", Category: "Food"})
	bizB := insertTestBusiness(t, s, Business{Name: "B", Category: "Retail"})

	added, err := s.AddFavorite(userID, bizA)
	if err != nil || !added {
		t.Fatalf("AddFavorite = %v, %v; want true, nil", added, err)
	}

	t.Run("duplicate pair rejected", func(t *testing.T) {
		added, err := s.AddFavorite(userID, bizA)
		if err != nil {
			t.Fatalf("AddFavorite: %v", err)
		}
		if added {
			t.Error("duplicate favorite should return false")
		}
	})

	t.Run("ids and businesses", func(t *testing.T) {
		if _, err := s.AddFavorite(userID, bizB); err != nil {
			t.Fatalf("AddFavorite: %v", err)
		}
		ids, err := s.FavoriteBusinessIDs(userID)
		if err != nil {
			t.Fatalf("FavoriteBusinessIDs: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("got %d favorite ids, want 2", len(ids))
		}
		favs, err := s.FavoriteBusinesses(userID)
		if err != nil {
			t.Fatalf("FavoriteBusinesses: %v", err)
		}
		if len(favs) != 2 || favs[0].Name != "A" || favs[1].Name != "B" {
			t.Errorf("FavoriteBusinesses = %+v", favs)
		}
	})

	t.Run("remove", func(t *testing.T) {
		if err := s.RemoveFavorite(userID, bizA); err != nil {
			t.Fatalf("RemoveFavorite: %v", err)
		}
		ids, _ := s.FavoriteBusinessIDs(userID)
		if len(ids) != 1 {
			t.Errorf("got %d favorite ids after remove, want 1", len(ids))
		}
	})
}

func TestTopRatedExcludingFavorites(t *testing.T) {
	s := newTestStore(t)
	userID, _ := s.CreateUser("demo", "demo@hiddengems.local")
	fav := insertTestBusiness(t, s, Business{Name: "Fav", Category: "Food", AverageRating: 5.0})
	insertTestBusiness(t, s, Business{Name: "Other", Category: "Food", AverageRating: 4.0})
	if _, err := s.AddFavorite(userID, fav); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	got, err := s.TopRatedExcludingFavorites(userID, 10)
	if err != nil {
		t.Fatalf("TopRatedExcludingFavorites: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Other" {
		t.Errorf("got %+v, want only Other", got)
	}
}

func TestTopRatedByCategories(t *testing.T) {
	s := newTestStore(t)
	userID, _ := s.CreateUser("demo", "demo@hiddengems.local")
	insertTestBusiness(t, s, Business{Name: "Bistro", Category: "Food", AverageRating: 4.2})
	insertTestBusiness(t, s, Business{Name: "Gym", Category: "Health and Wellness", AverageRating: 4.9})
	fav := insertTestBusiness(t, s, Business{Name: "FavFood", Category: "Food", AverageRating: 4.8})
	if _, err := s.AddFavorite(userID, fav); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	got, err := s.TopRatedByCategories(userID, []string{"Food"}, 10)
	if err != nil {
		t.Fatalf("TopRatedByCategories: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Bistro" {
		t.Errorf("got %+v, want only Bistro (favorited excluded, other category excluded)", got)
	}

	t.Run("empty category set", func(t *testing.T) {
		got, err := s.TopRatedByCategories(userID, nil, 10)
		if err != nil {
			t.Fatalf("TopRatedByCategories: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil for empty category set, got %+v", got)
		}
	})
}

func TestAddReview_RecomputesAggregates(t *testing.T) {
	s := newTestStore(t)
	userID, _ := s.CreateUser("demo", "demo@hiddengems.local")
	// Seeded from the source with stale-looking aggregates.
	id := insertTestBusiness(t, s, Business{Name: "Reviewed", Category: "Food", AverageRating: 4.5, TotalReviews: 120})

	if _, err := s.AddReview(id, userID, 5, "Great."); err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	if _, err := s.AddReview(id, userID, 2, "Not great."); err != nil {
		t.Fatalf("AddReview: %v", err)
	}

	got, _ := s.GetBusiness(id)
	if got.AverageRating != 3.5 {
		t.Errorf("AverageRating = %v, want 3.5 (local reviews own the aggregate)", got.AverageRating)
	}
	if got.TotalReviews != 2 {
		t.Errorf("TotalReviews = %v, want 2", got.TotalReviews)
	}

	reviews, err := s.ReviewsForBusiness(id)
	if err != nil {
		t.Fatalf("ReviewsForBusiness: %v", err)
	}
	if len(reviews) != 2 {
		t.Errorf("got %d reviews, want 2", len(reviews))
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetSetting("missing")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got != "" {
		t.Errorf("missing key = %q, want empty", got)
	}

	if err := s.SetSetting("last_sync", "2026-09-01"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	got, _ = s.GetSetting("last_sync")
	if got != "2026-09-01" {
		t.Errorf("GetSetting = %q", got)
	}

	if err := s.SetSetting("last_sync", "2026-09-02"); err != nil {
		t.Fatalf("SetSetting (replace): %v", err)
	}
	got, _ = s.GetSetting("last_sync")
	if got != "2026-09-02" {
		t.Errorf("GetSetting after replace = %q", got)
	}
}

func TestSeedDefaults(t *testing.T) {
	s := newTestStore(t)

	n, err := s.SeedDefaults()
	if err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}
	if n != 10 {
		t.Errorf("seeded %d businesses, want 10", n)
	}

	t.Run("no-op when store has data", func(t *testing.T) {
		n, err := s.SeedDefaults()
		if err != nil {
			t.Fatalf("SeedDefaults: %v", err)
		}
		if n != 0 {
			t.Errorf("second seed inserted %d, want 0", n)
		}
	})
}

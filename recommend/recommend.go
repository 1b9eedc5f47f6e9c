// Package recommend computes ranked business listings: trending by raw
// popularity, and personalized by category affinity with popularity backfill.
package recommend

import (
	"fmt"

	"hidden-gems/storage"
)

// Store provides the read-only queries the ranker needs. All candidate
// queries return rows ordered by (average rating desc, total reviews desc);
// any further tie falls back to the store's natural row order.
type Store interface {
	FavoriteBusinesses(userID int64) ([]storage.Business, error)
	TopRatedBusinesses(limit int) ([]storage.Business, error)
	TopRatedByCategories(userID int64, categories []string, limit int) ([]storage.Business, error)
	TopRatedExcludingFavorites(userID int64, limit int) ([]storage.Business, error)
}

// Service ranks businesses from the store. Both operations are read-only and
// deterministic for a fixed store state.
type Service struct {
	store Store
}

// NewService creates a ranking Service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Trending returns up to limit businesses by rating and review count.
// Candidates are overfetched at 2x limit and de-duplicated by id, so a
// bounded number of store-level duplicates cannot surface twice or force a
// second pass. Fewer than limit distinct candidates returns what there is.
func (s *Service) Trending(limit int) ([]storage.Business, error) {
	if limit <= 0 {
		return nil, nil
	}

	candidates, err := s.store.TopRatedBusinesses(2 * limit)
	if err != nil {
		return nil, fmt.Errorf("recommend: trending candidates: %w", err)
	}

	seen := make(map[int64]bool, limit)
	var result []storage.Business
	for _, b := range candidates {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		result = append(result, b)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Personalized returns up to limit businesses for the user: first those in
// the categories of the user's favorites (the affinity set), then the most
// popular remaining businesses as backfill. Favorited businesses are never
// recommended back. The concatenated order is final — an affinity match
// always ranks above a backfill candidate, whatever their raw ratings.
func (s *Service) Personalized(userID int64, limit int) ([]storage.Business, error) {
	if limit <= 0 {
		return nil, nil
	}

	favorites, err := s.store.FavoriteBusinesses(userID)
	if err != nil {
		return nil, fmt.Errorf("recommend: load favorites: %w", err)
	}
	categories := affinitySet(favorites)

	seen := make(map[int64]bool, limit)
	var result []storage.Business

	if len(categories) > 0 {
		matches, err := s.store.TopRatedByCategories(userID, categories, limit)
		if err != nil {
			return nil, fmt.Errorf("recommend: affinity candidates: %w", err)
		}
		for _, b := range matches {
			if seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			result = append(result, b)
			if len(result) >= limit {
				return result, nil
			}
		}
	}

	// Backfill from global popularity. Fetching limit candidates covers the
	// worst case where every pass-1 result reappears among the most popular.
	backfill, err := s.store.TopRatedExcludingFavorites(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recommend: backfill candidates: %w", err)
	}
	for _, b := range backfill {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		result = append(result, b)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// affinitySet returns the distinct categories of the user's favorites in
// first-seen order.
func affinitySet(favorites []storage.Business) []string {
	seen := make(map[string]bool, len(favorites))
	var categories []string
	for _, b := range favorites {
		if b.Category == "" || seen[b.Category] {
			continue
		}
		seen[b.Category] = true
		categories = append(categories, b.Category)
	}
	return categories
}

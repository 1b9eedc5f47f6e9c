// Package storage provides sqlite-backed persistence for businesses, users,
// favorites, reviews and settings.
package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Business is the unit persisted and served by the directory. Latitude and
// Longitude are pointers because coordinates are populated later by the
// geocoding collaborator and may be absent.
type Business struct {
	ID            int64
	Name          string
	Category      string
	Description   string
	Address       string
	AverageRating float64
	TotalReviews  int
	Phone         string
	Website       string
	YelpURL       string
	Latitude      *float64
	Longitude     *float64
	PriceRange    string
	Hours         string
	PhotoURL      string
	Attributes    string
	Summary       string
	YelpID        string
}

// BusinessUpdate carries a partial update. A nil field is not touched; a
// pointer to a zero value is an explicit clear. This keeps "field not present
// in this snapshot" distinguishable from "set to empty".
type BusinessUpdate struct {
	Category      *string
	Description   *string
	Address       *string
	AverageRating *float64
	TotalReviews  *int
	Phone         *string
	Website       *string
	YelpURL       *string
	Latitude      *float64
	Longitude     *float64
	PriceRange    *string
	Hours         *string
	PhotoURL      *string
	Attributes    *string
	Summary       *string
	YelpID        *string
}

// Review is one user review of a business.
type Review struct {
	ID         int64
	BusinessID int64
	UserID     int64
	Rating     int
	Text       string
	CreatedAt  int64 // Unix timestamp
}

// Store provides sqlite-backed persistence for the directory.
type Store struct {
	db *sql.DB
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS businesses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	average_rating REAL NOT NULL DEFAULT 0,
	total_reviews INTEGER NOT NULL DEFAULT 0,
	phone TEXT NOT NULL DEFAULT '',
	website TEXT NOT NULL DEFAULT '',
	yelp_url TEXT NOT NULL DEFAULT '',
	latitude REAL,
	longitude REAL,
	price_range TEXT NOT NULL DEFAULT '',
	hours TEXT NOT NULL DEFAULT '',
	photo_url TEXT NOT NULL DEFAULT '',
	attributes TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	yelp_id TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	email TEXT UNIQUE NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS favorites (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	business_id INTEGER NOT NULL,
	UNIQUE(user_id, business_id),
	FOREIGN KEY (user_id) REFERENCES users(id),
	FOREIGN KEY (business_id) REFERENCES businesses(id)
);

CREATE TABLE IF NOT EXISTS reviews (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	business_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	rating INTEGER NOT NULL,
	review_text TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	FOREIGN KEY (business_id) REFERENCES businesses(id),
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT
);
`

// New opens the sqlite database at dbPath, creates tables if they don't
// exist, and returns a Store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: set WAL mode: %w", err)
	}

	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const businessColumns = `id, name, category, description, address, average_rating, total_reviews,
	phone, website, yelp_url, latitude, longitude, price_range, hours, photo_url, attributes, summary, yelp_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBusiness(row rowScanner) (*Business, error) {
	var b Business
	err := row.Scan(
		&b.ID, &b.Name, &b.Category, &b.Description, &b.Address, &b.AverageRating, &b.TotalReviews,
		&b.Phone, &b.Website, &b.YelpURL, &b.Latitude, &b.Longitude, &b.PriceRange, &b.Hours,
		&b.PhotoURL, &b.Attributes, &b.Summary, &b.YelpID,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBusinesses(rows *sql.Rows) ([]Business, error) {
	defer rows.Close()

	var businesses []Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan business: %w", err)
		}
		businesses = append(businesses, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate businesses: %w", err)
	}
	return businesses, nil
}

// FindBusinessByName looks up a business by case-insensitive trimmed name
// match, the reconciliation identity key. Returns nil if no business matches.
func (s *Store) FindBusinessByName(name string) (*Business, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	row := s.db.QueryRow(
		`SELECT `+businessColumns+` FROM businesses WHERE lower(trim(name)) = ?`,
		strings.ToLower(name),
	)
	b, err := scanBusiness(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: find business by name %q: %w", name, err)
	}
	return b, nil
}

// GetBusiness returns the business with the given id, or nil if not found.
func (s *Store) GetBusiness(id int64) (*Business, error) {
	row := s.db.QueryRow(`SELECT `+businessColumns+` FROM businesses WHERE id = ?`, id)
	b, err := scanBusiness(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get business %d: %w", id, err)
	}
	return b, nil
}

// InsertBusiness inserts a business with the full field set and returns the
// assigned id.
func (s *Store) InsertBusiness(b *Business) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO businesses (name, category, description, address, average_rating, total_reviews,
			phone, website, yelp_url, latitude, longitude, price_range, hours, photo_url, attributes, summary, yelp_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Name, b.Category, b.Description, b.Address, b.AverageRating, b.TotalReviews,
		b.Phone, b.Website, b.YelpURL, b.Latitude, b.Longitude, b.PriceRange, b.Hours,
		b.PhotoURL, b.Attributes, b.Summary, b.YelpID,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: insert business %q: %w", b.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: insert business %q id: %w", b.Name, err)
	}
	return id, nil
}

// UpdateBusiness applies a partial update. Only non-nil fields are written;
// with no fields set the call is a no-op.
func (s *Store) UpdateBusiness(id int64, u BusinessUpdate) error {
	var sets []string
	var args []any

	set := func(column string, v any) {
		sets = append(sets, column+" = ?")
		args = append(args, v)
	}

	if u.Category != nil {
		set("category", *u.Category)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Address != nil {
		set("address", *u.Address)
	}
	if u.AverageRating != nil {
		set("average_rating", *u.AverageRating)
	}
	if u.TotalReviews != nil {
		set("total_reviews", *u.TotalReviews)
	}
	if u.Phone != nil {
		set("phone", *u.Phone)
	}
	if u.Website != nil {
		set("website", *u.Website)
	}
	if u.YelpURL != nil {
		set("yelp_url", *u.YelpURL)
	}
	if u.Latitude != nil {
		set("latitude", *u.Latitude)
	}
	if u.Longitude != nil {
		set("longitude", *u.Longitude)
	}
	if u.PriceRange != nil {
		set("price_range", *u.PriceRange)
	}
	if u.Hours != nil {
		set("hours", *u.Hours)
	}
	if u.PhotoURL != nil {
		set("photo_url", *u.PhotoURL)
	}
	if u.Attributes != nil {
		set("attributes", *u.Attributes)
	}
	if u.Summary != nil {
		set("summary", *u.Summary)
	}
	if u.YelpID != nil {
		set("yelp_id", *u.YelpID)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	_, err := s.db.Exec(`UPDATE businesses SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("storage: update business %d: %w", id, err)
	}
	return nil
}

// ListBusinesses returns all businesses ordered by name.
func (s *Store) ListBusinesses() ([]Business, error) {
	rows, err := s.db.Query(`SELECT ` + businessColumns + ` FROM businesses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("storage: list businesses: %w", err)
	}
	return collectBusinesses(rows)
}

// CountBusinesses returns the number of stored businesses.
func (s *Store) CountBusinesses() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM businesses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("storage: count businesses: %w", err)
	}
	return count, nil
}

// TopRatedBusinesses returns up to limit businesses ordered by rating then
// review count, both descending. Trending candidates come from here.
func (s *Store) TopRatedBusinesses(limit int) ([]Business, error) {
	rows, err := s.db.Query(
		`SELECT `+businessColumns+` FROM businesses
		 ORDER BY average_rating DESC, total_reviews DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: top rated businesses: %w", err)
	}
	return collectBusinesses(rows)
}

// TopRatedByCategories returns up to limit businesses in the given categories
// that the user has not favorited, ordered by rating then review count.
func (s *Store) TopRatedByCategories(userID int64, categories []string, limit int) ([]Business, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(categories)-1) + "?"
	args := make([]any, 0, len(categories)+2)
	for _, c := range categories {
		args = append(args, c)
	}
	args = append(args, userID, limit)

	rows, err := s.db.Query(
		`SELECT `+businessColumns+` FROM businesses
		 WHERE category IN (`+placeholders+`)
		   AND id NOT IN (SELECT business_id FROM favorites WHERE user_id = ?)
		 ORDER BY average_rating DESC, total_reviews DESC LIMIT ?`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: top rated by categories: %w", err)
	}
	return collectBusinesses(rows)
}

// TopRatedExcludingFavorites returns up to limit businesses the user has not
// favorited, ordered by rating then review count.
func (s *Store) TopRatedExcludingFavorites(userID int64, limit int) ([]Business, error) {
	rows, err := s.db.Query(
		`SELECT `+businessColumns+` FROM businesses
		 WHERE id NOT IN (SELECT business_id FROM favorites WHERE user_id = ?)
		 ORDER BY average_rating DESC, total_reviews DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: top rated excluding favorites: %w", err)
	}
	return collectBusinesses(rows)
}

// CreateUser inserts a user and returns the assigned id.
func (s *Store) CreateUser(username, email string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO users (username, email, created_at) VALUES (?, ?, ?)`,
		username, email, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: create user %q: %w", email, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: create user %q id: %w", email, err)
	}
	return id, nil
}

// AddFavorite records a favorite. Returns false if the pair already exists.
func (s *Store) AddFavorite(userID, businessID int64) (bool, error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO favorites (user_id, business_id) VALUES (?, ?)`,
		userID, businessID,
	)
	if err != nil {
		return false, fmt.Errorf("storage: add favorite (%d, %d): %w", userID, businessID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: add favorite (%d, %d) rows: %w", userID, businessID, err)
	}
	return n > 0, nil
}

// RemoveFavorite deletes a favorite pair if present.
func (s *Store) RemoveFavorite(userID, businessID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM favorites WHERE user_id = ? AND business_id = ?`, userID, businessID,
	)
	if err != nil {
		return fmt.Errorf("storage: remove favorite (%d, %d): %w", userID, businessID, err)
	}
	return nil
}

// FavoriteBusinessIDs returns the ids of the user's favorited businesses.
func (s *Store) FavoriteBusinessIDs(userID int64) ([]int64, error) {
	rows, err := s.db.Query(`SELECT business_id FROM favorites WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("storage: favorite business ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("storage: scan favorite id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate favorite ids: %w", err)
	}
	return ids, nil
}

// FavoriteBusinesses returns the user's favorited businesses ordered by name.
func (s *Store) FavoriteBusinesses(userID int64) ([]Business, error) {
	rows, err := s.db.Query(
		`SELECT b.id, b.name, b.category, b.description, b.address, b.average_rating, b.total_reviews,
			b.phone, b.website, b.yelp_url, b.latitude, b.longitude, b.price_range, b.hours,
			b.photo_url, b.attributes, b.summary, b.yelp_id
		 FROM businesses b
		 JOIN favorites f ON b.id = f.business_id
		 WHERE f.user_id = ?
		 ORDER BY b.name`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: favorite businesses: %w", err)
	}
	return collectBusinesses(rows)
}

// AddReview inserts a review and recomputes the business's rating aggregates.
// average_rating and total_reviews are owned by this path; the reconciler
// only seeds and refreshes them from the source.
func (s *Store) AddReview(businessID, userID int64, rating int, text string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO reviews (business_id, user_id, rating, review_text, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		businessID, userID, rating, text, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: add review for business %d: %w", businessID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: add review for business %d id: %w", businessID, err)
	}

	_, err = s.db.Exec(
		`UPDATE businesses SET
			average_rating = (SELECT ROUND(AVG(rating), 2) FROM reviews WHERE business_id = ?),
			total_reviews = (SELECT COUNT(*) FROM reviews WHERE business_id = ?)
		 WHERE id = ?`,
		businessID, businessID, businessID,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: recompute aggregates for business %d: %w", businessID, err)
	}
	return id, nil
}

// ReviewsForBusiness returns a business's reviews, newest first.
func (s *Store) ReviewsForBusiness(businessID int64) ([]Review, error) {
	rows, err := s.db.Query(
		`SELECT id, business_id, user_id, rating, review_text, created_at
		 FROM reviews WHERE business_id = ? ORDER BY created_at DESC`, businessID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: reviews for business %d: %w", businessID, err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.BusinessID, &r.UserID, &r.Rating, &r.Text, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate reviews: %w", err)
	}
	return reviews, nil
}

// GetSetting returns the value for the given settings key, or an empty
// string if the key is not found.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("storage: get setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting inserts or replaces a setting key-value pair.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: set setting %q: %w", key, err)
	}
	return nil
}

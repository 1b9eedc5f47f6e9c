package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hidden-gems/config"
	"hidden-gems/geocode"
	"hidden-gems/ingest"
	"hidden-gems/recommend"
	"hidden-gems/scheduler"
	"hidden-gems/storage"
	"hidden-gems/yelp"
)

func main() {
	once := flag.Bool("once", false, "run a single sync and exit")
	flag.Parse()

	// Structured JSON logging to stdout
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfgPath := "./config.yaml"
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("config loaded", "sync_time", cfg.SyncTime, "timezone", cfg.Timezone, "per_search_limit", cfg.PerSearchLimit)

	// Set log level
	switch cfg.LogLevel {
	case "debug":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	case "warn":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))
	case "error":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	}

	// Initialize storage
	store, err := storage.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "db_path", cfg.DBPath)

	// Load settings from DB (override config defaults)
	if savedTime, _ := store.GetSetting("sync_time"); savedTime != "" {
		if config.ValidateTime(savedTime) == nil {
			cfg.SyncTime = savedTime
		}
	}

	// Without a source API key the directory starts from the bundled seed data.
	if cfg.YelpAPIKey == "" {
		n, err := store.SeedDefaults()
		if err != nil {
			slog.Error("failed to seed businesses", "error", err)
			os.Exit(1)
		}
		if n > 0 {
			slog.Info("seeded default businesses", "count", n)
		}
	}

	// Initialize components
	httpClient := &http.Client{Timeout: time.Duration(cfg.FetchTimeoutSec) * time.Second}
	yelpClient := yelp.NewClient(httpClient, cfg.YelpAPIKey)
	reconciler := ingest.NewReconciler(&ingestStoreAdapter{store: store})
	recommender := recommend.NewService(store)

	var geocoder geocode.Geocoder
	if cfg.GoogleMapsAPIKey != "" {
		geocoder = geocode.New(httpClient, cfg.GoogleMapsAPIKey)
	}

	syncFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if cfg.YelpAPIKey == "" {
			slog.Warn("no source API key configured, skipping sync")
			return
		}

		listings, err := yelp.FetchSnapshot(ctx, yelpClient, yelp.DefaultSearches, cfg.PerSearchLimit)
		if err != nil {
			slog.Error("snapshot fetch failed", "error", err)
			return
		}

		result, err := reconciler.Reconcile(ctx, listings)
		if err != nil {
			slog.Error("reconciliation failed", "error", err)
			return
		}
		slog.Info("sync complete", "added", result.Added, "updated", result.Updated, "failed", result.Failed)

		if geocoder != nil {
			backfillCoordinates(ctx, store, geocoder)
		}
	}

	if *once {
		syncFunc()
		top, err := recommender.Trending(cfg.RecommendLimit)
		if err != nil {
			slog.Error("trending lookup failed", "error", err)
			os.Exit(1)
		}
		for i, b := range top {
			slog.Info("trending", "rank", i+1, "name", b.Name, "category", b.Category, "rating", b.AverageRating, "reviews", b.TotalReviews)
		}
		return
	}

	// Initialize scheduler
	sched, err := scheduler.New(cfg.Timezone)
	if err != nil {
		slog.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	if err := sched.Schedule(cfg.SyncTime, syncFunc); err != nil {
		slog.Error("failed to schedule sync", "error", err)
		os.Exit(1)
	}
	sched.Start()
	slog.Info("scheduler started", "sync_time", cfg.SyncTime)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	sched.Stop()
	slog.Info("shutdown complete")
}

// backfillCoordinates geocodes stored businesses that have an address but no
// coordinates yet. Lookup failures are logged and skipped.
func backfillCoordinates(ctx context.Context, store *storage.Store, geocoder geocode.Geocoder) {
	businesses, err := store.ListBusinesses()
	if err != nil {
		slog.Error("listing businesses for geocode backfill", "error", err)
		return
	}

	resolved := 0
	for _, b := range businesses {
		if b.Latitude != nil || b.Address == "" {
			continue
		}
		lat, lng, found, err := geocoder.Geocode(ctx, b.Address)
		if err != nil {
			slog.Warn("geocode failed", "business", b.Name, "error", err)
			continue
		}
		if !found {
			continue
		}
		if err := store.UpdateBusiness(b.ID, storage.BusinessUpdate{Latitude: &lat, Longitude: &lng}); err != nil {
			slog.Warn("storing coordinates failed", "business", b.Name, "error", err)
			continue
		}
		resolved++
	}
	if resolved > 0 {
		slog.Info("geocode backfill complete", "resolved", resolved)
	}
}

// --- Adapters to bridge package types ---

// ingestStoreAdapter bridges storage.Store to ingest.Store
type ingestStoreAdapter struct {
	store *storage.Store
}

func (a *ingestStoreAdapter) FindBusinessIDByName(name string) (int64, bool, error) {
	b, err := a.store.FindBusinessByName(name)
	if err != nil {
		return 0, false, err
	}
	if b == nil {
		return 0, false, nil
	}
	return b.ID, true, nil
}

func (a *ingestStoreAdapter) InsertBusiness(rec *ingest.Record) (int64, error) {
	return a.store.InsertBusiness(&storage.Business{
		Name:          rec.Name,
		Category:      string(rec.Category),
		Description:   rec.Description,
		Address:       rec.Address,
		AverageRating: rec.Rating,
		TotalReviews:  rec.ReviewCount,
		Phone:         rec.Phone,
		Website:       rec.Website,
		YelpURL:       rec.YelpURL,
		Latitude:      rec.Latitude,
		Longitude:     rec.Longitude,
		PriceRange:    rec.PriceRange,
		Hours:         rec.Hours,
		PhotoURL:      rec.PhotoURL,
		Attributes:    rec.Attributes,
		Summary:       rec.Summary,
		YelpID:        rec.YelpID,
	})
}

func (a *ingestStoreAdapter) UpdateBusiness(id int64, rec *ingest.Record) error {
	cat := string(rec.Category)
	u := storage.BusinessUpdate{
		Category:      &cat,
		Description:   &rec.Description,
		Address:       &rec.Address,
		AverageRating: &rec.Rating,
		TotalReviews:  &rec.ReviewCount,
		Phone:         &rec.Phone,
		Website:       &rec.Website,
		YelpURL:       &rec.YelpURL,
		PriceRange:    &rec.PriceRange,
		Hours:         &rec.Hours,
		PhotoURL:      &rec.PhotoURL,
		Attributes:    &rec.Attributes,
		Summary:       &rec.Summary,
		YelpID:        &rec.YelpID,
	}
	// Coordinates are only written when the snapshot carried them; a listing
	// without coordinates must not wipe ones resolved earlier.
	if rec.Latitude != nil && rec.Longitude != nil {
		u.Latitude = rec.Latitude
		u.Longitude = rec.Longitude
	}
	return a.store.UpdateBusiness(id, u)
}

// Package ingest reconciles source snapshots into the business store.
package ingest

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"hidden-gems/category"
	"hidden-gems/yelp"
)

// Store provides the persistence operations the reconciler needs.
type Store interface {
	// FindBusinessIDByName resolves the reconciliation identity key: a
	// case-insensitive trimmed name match. found is false when no business
	// matches.
	FindBusinessIDByName(name string) (id int64, found bool, err error)
	// InsertBusiness stores a new record with the full shaped field set.
	InsertBusiness(rec *Record) (int64, error)
	// UpdateBusiness applies the fields rec carries to an existing row.
	// Fields the snapshot does not carry (the name, nil coordinates) must be
	// left untouched.
	UpdateBusiness(id int64, rec *Record) error
}

// Result reports one reconciliation run. Failed counts records whose store
// write failed; those never abort the rest of the batch.
type Result struct {
	Added   int
	Updated int
	Failed  int
}

// Reconciler merges source snapshots into the store.
type Reconciler struct {
	store Store
}

// NewReconciler creates a Reconciler over the given store.
func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// snapshotKey identifies a business within one snapshot. The same business
// can arrive under two search terms in a single fetch; the pair collapses
// those duplicates before any store write.
type snapshotKey struct {
	name     string
	category category.Category
}

// Reconcile shapes every raw listing, collapses snapshot-level duplicates,
// and partitions the survivors into inserts and updates by normalized name.
// An empty snapshot is a no-op, not an error. The only error returned is
// context cancellation; per-record store failures are counted and logged.
func (r *Reconciler) Reconcile(ctx context.Context, listings []yelp.Listing) (Result, error) {
	runID := uuid.NewString()
	log := slog.With("sync_id", runID)
	log.Info("reconciliation starting", "listings", len(listings))

	// Shape and dedupe within the snapshot. Last seen wins: every instance
	// came from the same source at the same time, so any one is as good.
	var order []snapshotKey
	records := make(map[snapshotKey]*Record)
	skipped := 0
	for i := range listings {
		rec := Shape(&listings[i])
		if rec == nil {
			skipped++
			continue
		}
		key := snapshotKey{strings.ToLower(rec.Name), rec.Category}
		if _, seen := records[key]; !seen {
			order = append(order, key)
		}
		records[key] = rec
	}
	log.Info("snapshot shaped", "records", len(records), "skipped", skipped,
		"collapsed", len(listings)-skipped-len(records))

	var res Result
	for _, key := range order {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		rec := records[key]
		id, found, err := r.store.FindBusinessIDByName(rec.Name)
		if err != nil {
			log.Error("name lookup failed", "name", rec.Name, "error", err)
			res.Failed++
			continue
		}

		if found {
			if err := r.store.UpdateBusiness(id, rec); err != nil {
				log.Error("update failed", "name", rec.Name, "id", id, "error", err)
				res.Failed++
				continue
			}
			res.Updated++
		} else {
			if _, err := r.store.InsertBusiness(rec); err != nil {
				log.Error("insert failed", "name", rec.Name, "error", err)
				res.Failed++
				continue
			}
			res.Added++
		}
	}

	log.Info("reconciliation complete", "added", res.Added, "updated", res.Updated, "failed", res.Failed)
	return res, nil
}

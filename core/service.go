// Package core holds the per-entity domain services the app screens talk
// to. Every service follows the same lifecycle: Load returns the cached
// copy for immediate display, Refresh fetches from the backend and writes
// through to the cache, and mutators apply locally first, then push the
// remote write. A failed remote write keeps the local record and marks it
// dirty for the next Reconcile pass; the error is still returned so the
// screen can tell the user.
package core

import (
	"context"
	"encoding/json"
	"log/slog"

	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
)

// Backend table names match the cache bucket names one-to-one.
const (
	tableEmployees     = cache.BucketEmployees
	tableShifts        = cache.BucketShifts
	tableShiftRequests = cache.BucketShiftRequests
	tableTimeEntries   = cache.BucketTimeEntries
	tableLeaveRequests = cache.BucketLeaveRequests
	tableTasks         = cache.BucketTasks
	tableNotifications = cache.BucketNotifications
	tableDocuments     = cache.BucketDocuments
)

// loadCached reads a bucket, treating any cache failure as "no data".
func loadCached[T any](store *cache.Store, bucket string, log *slog.Logger) []T {
	items, err := cache.ListJSON[T](store, bucket)
	if err != nil {
		log.Warn("cache read failed, treating as empty", "bucket", bucket, "error", err)
		return nil
	}
	return items
}

// refreshList fetches fresh rows for a table and writes them through to the
// cache. The remote error is the caller's; a cache write failure is only
// logged, since the fresh rows are still good for display.
func refreshList[T any](ctx context.Context, store *cache.Store, api *v1.Client, table string, q *v1.Query, key func(T) string, log *slog.Logger) ([]T, error) {
	raws, err := api.From(table).Select(ctx, q)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(raws))
	rows := make(map[string][]byte, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			log.Warn("skipping undecodable row", "table", table, "error", err)
			continue
		}
		items = append(items, v)
		rows[key(v)] = raw
	}

	if err := store.Replace(table, rows); err != nil {
		log.Warn("cache write-through failed", "table", table, "error", err)
	}
	return items, nil
}

// putOptimistic persists a mutation locally, then pushes it to the backend.
// On remote failure the local copy stays, flagged dirty for Reconcile, and
// the remote error is returned for display.
func putOptimistic[T any](ctx context.Context, store *cache.Store, api *v1.Client, table, key string, v T, log *slog.Logger) error {
	if err := cache.PutJSON(store, table, key, v); err != nil {
		log.Warn("optimistic cache write failed", "table", table, "key", key, "error", err)
	}

	if _, err := api.From(table).Upsert(ctx, v); err != nil {
		if derr := store.MarkDirty(table, key); derr != nil {
			log.Warn("failed to mark record dirty", "table", table, "key", key, "error", derr)
		}
		log.Warn("remote write failed, kept local copy", "table", table, "key", key, "error", err)
		return err
	}
	return nil
}

// deleteOptimistic removes locally, then remotely. Unlike updates there is
// no dirty flag for a deletion; a failed remote delete resurfaces the row
// on the next refresh, which is the documented divergence window.
func deleteOptimistic(ctx context.Context, store *cache.Store, api *v1.Client, table, key string, log *slog.Logger) error {
	if err := store.Delete(table, key); err != nil {
		log.Warn("optimistic cache delete failed", "table", table, "key", key, "error", err)
	}
	if err := api.From(table).Delete(ctx, v1.NewQuery().Eq("id", key)); err != nil {
		log.Warn("remote delete failed", "table", table, "key", key, "error", err)
		return err
	}
	return nil
}

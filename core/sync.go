package core

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
)

// reconcileBuckets are the backend-linked buckets a dirty record can live
// in. Notifications and reports are client-local and never reconcile.
var reconcileBuckets = []string{
	cache.BucketEmployees,
	cache.BucketShifts,
	cache.BucketShiftRequests,
	cache.BucketTimeEntries,
	cache.BucketLeaveRequests,
	cache.BucketTasks,
	cache.BucketDocuments,
}

// Reconcile re-pushes every dirty record to the backend and clears the
// flag on success. The app shell calls it when connectivity returns; there
// is no automatic retry loop behind it.
func Reconcile(ctx context.Context, store *cache.Store, api *v1.Client, log *slog.Logger) (int, error) {
	if log == nil {
		log = slog.Default()
	}

	synced := 0
	var errs []error

	for _, bucket := range reconcileBuckets {
		dirty, err := store.ListDirty(bucket)
		if err != nil {
			log.Warn("failed to list dirty records", "bucket", bucket, "error", err)
			errs = append(errs, err)
			continue
		}

		for key, raw := range dirty {
			if _, err := api.From(bucket).Upsert(ctx, json.RawMessage(raw)); err != nil {
				log.Warn("reconcile push failed", "bucket", bucket, "key", key, "error", err)
				errs = append(errs, err)
				continue
			}
			if err := store.ClearDirty(bucket, key); err != nil {
				log.Warn("failed to clear dirty flag", "bucket", bucket, "key", key, "error", err)
				errs = append(errs, err)
				continue
			}
			synced++
		}
	}

	return synced, errors.Join(errs...)
}

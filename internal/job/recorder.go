package job

import (
	"context"
	"strconv"

	"github.com/LordZeuss/goroms/internal/store"
)

// CatalogRecorder flips the downloaded flag on catalog rows. Jobs started
// from the catalog carry the row id in decimal; ad-hoc jobs carry an
// opaque id with no row behind it and are skipped.
type CatalogRecorder struct {
	Store *store.PersistentStore
}

func (r CatalogRecorder) MarkDownloaded(ctx context.Context, jobID string) error {
	id, err := strconv.ParseInt(jobID, 10, 64)
	if err != nil {
		return nil
	}
	return r.Store.MarkDownloaded(ctx, id)
}

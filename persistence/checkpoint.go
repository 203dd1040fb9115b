package persistence

import (
	"context"

	"github.com/wfunc/gamestation/store"
)

// FingerprintExporter is the part of the dedup ledger that gets persisted
// alongside the store.
type FingerprintExporter interface {
	Len() int
	Export() []string
}

// Checkpoint copies the store and the ledger under the same read lock and
// writes them. The hub records a fingerprint while holding the store write
// lock, so every fingerprint in the snapshot has its effect in it too.
func Checkpoint(ctx context.Context, db Database, st *store.Store, fps FingerprintExporter) error {
	st.RLock()
	snap := st.Snapshot()
	if fps != nil && fps.Len() > 0 {
		snap.Fingerprints = fps.Export()
	}
	st.RUnlock()
	return db.SaveSnapshot(ctx, snap)
}

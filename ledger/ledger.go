// Package ledger records the fingerprint of every accepted action so that a
// re-delivered action has no effect.
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"sync"
)

// Ledger is the processed-operation set. Fingerprints are never removed.
type Ledger interface {
	Seen(ctx context.Context, fp string) (bool, error)
	Record(ctx context.Context, fp string) error
}

// Fingerprint identifies an action by kind, content and submitter. A caller
// supplied nonce replaces the submission timestamp, which lets a client
// retry an action and have the retry deduplicated.
func Fingerprint(kind string, payload []byte, submitter, nonce string, ts int64) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write(payload)
	h.Write([]byte{0})
	h.Write([]byte(submitter))
	h.Write([]byte{0})
	if nonce != "" {
		h.Write([]byte("n:" + nonce))
	} else {
		h.Write([]byte("t:" + strconv.FormatInt(ts, 10)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// MemoryLedger keeps fingerprints in process.
type MemoryLedger struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[string]struct{})}
}

func (l *MemoryLedger) Seen(_ context.Context, fp string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[fp]
	return ok, nil
}

func (l *MemoryLedger) Record(_ context.Context, fp string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[fp] = struct{}{}
	return nil
}

func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.seen)
}

// Export returns the recorded fingerprints in sorted order.
func (l *MemoryLedger) Export() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.seen))
	for fp := range l.seen {
		out = append(out, fp)
	}
	sort.Strings(out)
	return out
}

// Import merges previously exported fingerprints.
func (l *MemoryLedger) Import(fps []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, fp := range fps {
		l.seen[fp] = struct{}{}
	}
}

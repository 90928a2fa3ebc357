package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store paths. The persistence boundary is a hierarchical key-path document
// store; these are the only paths this service writes.
const (
	PathBeacon = "/beacon"
	PathLogs   = "/logs"

	PathDebugLastHit       = "/debug/lastHit"
	PathDebugLastUpdate    = "/debug/lastUpdate"
	PathDebugLastError     = "/debug/lastError"
	PathDebugLastException = "/debug/lastException"
	PathDebugLastEcho      = "/debug/lastEcho"
)

// Store defines the contract for the key-path document store.
//
// The store provides no transactions: a Set on the same path from two
// concurrent requests resolves by last-write-wins only. Concurrent /on and
// /off commands therefore race with no defined resolution order beyond
// store-level write ordering; this is a known, accepted property.
type Store interface {
	// Set overwrites the document at path.
	Set(ctx context.Context, path string, value any) error

	// Push appends value under path with a generated, insertion-ordered key,
	// and returns that key.
	Push(ctx context.Context, path string, value any) (string, error)
}

// StoreReader adds read access for the status and test-write surfaces. The
// ingestion core never reads.
type StoreReader interface {
	// Get unmarshals the document at path into dest.
	// Returns ErrNotFound if no document exists there.
	Get(ctx context.Context, path string, dest any) error
}

// NewPushKey generates a push key that sorts by creation time, so insertion
// order survives in backends that order entries by key. The uuid suffix
// disambiguates keys minted within the same millisecond.
func NewPushKey(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%013d-%s", now.UnixMilli(), suffix)
}

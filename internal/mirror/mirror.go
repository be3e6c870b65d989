package mirror

import "context"

// Mirror is a best-effort disk-backed cache of the last known full board
// snapshot per owner. It is written only as a whole-snapshot replace and is
// never a source of truth: on any conflict the remote gateway wins.
type Mirror interface {
	// Save replaces ownerID's stored snapshot with payload.
	Save(ctx context.Context, ownerID string, payload []byte) error

	// Load returns ownerID's last stored snapshot, or ok=false when none
	// exists.
	Load(ctx context.Context, ownerID string) (payload []byte, ok bool, err error)
}

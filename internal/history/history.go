package history

import (
	"context"
	"time"

	"github.com/nerrad567/wiz-local-core/internal/protocol"
)

// Snapshot source values.
const (
	// SourceDiscovery: state observed during a discovery cycle's
	// enrichment probe.
	SourceDiscovery = "discovery"

	// SourceControl: state confirmed after a control call.
	SourceControl = "control"

	// SourcePreview: the temporary override a preview applied.
	SourcePreview = "preview"

	// SourceRestore: the state put back when a preview ended.
	SourceRestore = "restore"
)

// Entry is one recorded state observation.
type Entry struct {
	// ID is the auto-incremented primary key for the row.
	ID int64 `json:"id"`

	// DeviceID is the device identifier the snapshot belongs to.
	DeviceID string `json:"device_id"`

	// State is the snapshot at observation time.
	State protocol.StateSnapshot `json:"state"`

	// Source identifies how the snapshot was observed.
	Source string `json:"source"`

	// CreatedAt is the observation timestamp (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// Repository stores and retrieves state observations.
//
// Implementations must be safe for concurrent use and store UTC
// timestamps.
type Repository interface {
	// Record appends one observation.
	Record(ctx context.Context, deviceID string, state protocol.StateSnapshot, source string) error

	// Recent returns up to limit observations for a device, newest
	// first. Implementations may clamp the limit.
	Recent(ctx context.Context, deviceID string, limit int) ([]Entry, error)

	// Prune deletes observations older than the retention duration and
	// reports how many rows went.
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

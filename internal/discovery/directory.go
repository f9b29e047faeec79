package discovery

import (
	"sort"
	"sync"
	"time"

	"github.com/nerrad567/wiz-local-core/internal/protocol"
)

// Directory is the current set of known DeviceRecords, keyed by device
// identifier. It is the single piece of shared state between the
// discovery service (writer) and every other component (readers).
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Swap replaces the whole map under the write lock, so readers see
//     either the complete old directory or the complete new one.
//   - Returned records are deep copies; callers can modify them freely.
type Directory struct {
	mu      sync.RWMutex
	records map[string]*DeviceRecord
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{records: make(map[string]*DeviceRecord)}
}

// Get retrieves a record by device identifier.
// Returns ErrUnknownDevice if the identifier is not present.
func (d *Directory) Get(id string) (*DeviceRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.records[id]
	if !ok {
		return nil, ErrUnknownDevice
	}
	return rec.DeepCopy(), nil
}

// List returns all records ordered by identifier.
func (d *Directory) List() []DeviceRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]DeviceRecord, 0, len(d.records))
	for _, rec := range d.records {
		out = append(out, *rec.DeepCopy())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of known devices.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// Swap atomically replaces the directory contents. The caller hands
// over ownership of the map and must not touch it afterwards.
func (d *Directory) Swap(records map[string]*DeviceRecord) {
	if records == nil {
		records = make(map[string]*DeviceRecord)
	}
	d.mu.Lock()
	d.records = records
	d.mu.Unlock()
}

// snapshot returns a deep copy of the underlying map for the discovery
// service to build the next cycle's directory from.
func (d *Directory) snapshot() map[string]*DeviceRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]*DeviceRecord, len(d.records))
	for id, rec := range d.records {
		out[id] = rec.DeepCopy()
	}
	return out
}

// RecordState stores a fresh last-known-good snapshot after a
// successful control call and refreshes the last-seen timestamp.
// Unknown identifiers are ignored: a control call can legitimately race
// an eviction.
func (d *Directory) RecordState(id string, state protocol.StateSnapshot, seen time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.records[id]
	if !ok {
		return
	}
	updated := rec.DeepCopy()
	snap := state.Clone()
	updated.LastState = &snap
	updated.LastSeen = seen.UTC()
	d.records[id] = updated
}

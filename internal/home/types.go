package home

import "github.com/nerrad567/wiz-local-core/internal/discovery"

// Structure is a parsed, validated home-structure document.
// Immutable once loaded.
type Structure struct {
	// HomeID is the numeric home identifier from the document.
	HomeID int `json:"home_id"`

	// Name is the human-readable home name.
	Name string `json:"name"`

	// Rooms in document order.
	Rooms []Room `json:"rooms"`
}

// Room is one room in the structure document.
type Room struct {
	Name    string  `json:"name"`
	Devices []Entry `json:"devices"`
}

// Entry is one named device inside a room.
//
// ID is the preferred handle. Older documents were authored before the
// identifier scheme existed and carry only an IP and model; those fields
// feed the legacy matching heuristic.
type Entry struct {
	// Name is the human-assigned device name ("Ceiling", "Desk lamp").
	Name string `json:"name"`

	// Model is the firmware module name hint.
	Model string `json:"model,omitempty"`

	// ID is the lowercase hardware identifier, when known.
	ID string `json:"id,omitempty"`

	// IP is the address the device had when the document was authored.
	// Only meaningful for legacy documents without an ID.
	IP string `json:"ip,omitempty"`
}

// Entries returns every device entry in the document with its room name
// attached, in document order.
func (s *Structure) Entries() []PlacedEntry {
	var out []PlacedEntry
	for _, room := range s.Rooms {
		for _, e := range room.Devices {
			out = append(out, PlacedEntry{Room: room.Name, Entry: e})
		}
	}
	return out
}

// PlacedEntry is an Entry together with the room it belongs to.
type PlacedEntry struct {
	Room string
	Entry
}

// MatchStrategy records how a ReconciledDevice was paired with its
// structure entry. Kept explicit so the legacy heuristic can be retired
// by policy later without archaeology.
type MatchStrategy string

// Match strategies.
const (
	// MatchByID is an exact identifier match.
	MatchByID MatchStrategy = "id"

	// MatchByIPModel is the legacy heuristic for documents that predate
	// identifier hints: the entry's recorded IP and model both equal the
	// live record's.
	MatchByIPModel MatchStrategy = "ip_model"

	// MatchNone means no structure entry paired with this device.
	MatchNone MatchStrategy = "none"
)

// Status classifies a ReconciledDevice.
type Status string

// Reconciliation statuses.
const (
	// StatusMatched: live device paired with a structure entry.
	StatusMatched Status = "matched"

	// StatusDiscoveredUnnamed: live device with no structure entry.
	StatusDiscoveredUnnamed Status = "discovered_unnamed"

	// StatusKnownOffline: structure entry with no live device.
	StatusKnownOffline Status = "known_offline"
)

// ReconciledDevice is the join of a live DeviceRecord and a structure
// entry. Exactly one of the two halves may be absent: Record is nil for
// known-offline entries, Room/Name are empty for discovered-unnamed
// devices.
type ReconciledDevice struct {
	// ID is the device identifier when known. Known-offline entries from
	// legacy documents may have none.
	ID string `json:"id,omitempty"`

	// Room and Name come from the structure document.
	Room string `json:"room,omitempty"`
	Name string `json:"name,omitempty"`

	Status   Status        `json:"status"`
	Strategy MatchStrategy `json:"strategy"`

	// Record is the live directory record, nil for known-offline.
	Record *discovery.DeviceRecord `json:"record,omitempty"`
}

package home

import (
	"sort"

	"github.com/nerrad567/wiz-local-core/internal/discovery"
)

// Reconcile merges the structure document with live directory records.
//
// Every record appears in the result exactly once. Matching runs in
// priority order per record: exact identifier, then the legacy IP+model
// heuristic. A structure entry pairs with at most one record; once
// claimed it is not offered to later records. Entries left unclaimed
// surface as known-offline so the document's full inventory stays
// visible even when devices are unplugged.
//
// The result is deterministic for identical inputs: matched and unnamed
// devices sort by identifier, offline entries follow in document order.
func Reconcile(s *Structure, records []discovery.DeviceRecord) []ReconciledDevice {
	var entries []PlacedEntry
	if s != nil {
		entries = s.Entries()
	}
	claimed := make([]bool, len(entries))

	live := make([]ReconciledDevice, 0, len(records))
	for i := range records {
		rec := records[i].DeepCopy()

		idx, strategy := matchEntry(rec, entries, claimed)
		if strategy == MatchNone {
			live = append(live, ReconciledDevice{
				ID:       rec.ID,
				Status:   StatusDiscoveredUnnamed,
				Strategy: MatchNone,
				Record:   rec,
			})
			continue
		}

		claimed[idx] = true
		live = append(live, ReconciledDevice{
			ID:       rec.ID,
			Room:     entries[idx].Room,
			Name:     entries[idx].Name,
			Status:   StatusMatched,
			Strategy: strategy,
			Record:   rec,
		})
	}
	sort.Slice(live, func(i, j int) bool { return live[i].ID < live[j].ID })

	out := live
	for i, e := range entries {
		if claimed[i] {
			continue
		}
		out = append(out, ReconciledDevice{
			ID:       e.ID,
			Room:     e.Room,
			Name:     e.Name,
			Status:   StatusKnownOffline,
			Strategy: MatchNone,
		})
	}

	return out
}

// matchEntry finds the structure entry for a record. Identifier matches
// win over the heuristic even when a heuristic candidate appears earlier
// in the document.
func matchEntry(rec *discovery.DeviceRecord, entries []PlacedEntry, claimed []bool) (int, MatchStrategy) {
	for i, e := range entries {
		if claimed[i] {
			continue
		}
		if e.ID != "" && e.ID == rec.ID {
			return i, MatchByID
		}
	}

	for i, e := range entries {
		if claimed[i] {
			continue
		}
		if e.ID == "" && e.IP != "" && e.IP == rec.IP && e.Model != "" && e.Model == rec.Model {
			return i, MatchByIPModel
		}
	}

	return -1, MatchNone
}

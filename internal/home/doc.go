// Package home loads the externally authored home-structure document and
// reconciles it with the live device directory.
//
// The structure document is a JSON file describing the home as its owner
// thinks of it: home metadata plus rooms, each holding named device
// entries. Devices on the wire only carry a hardware identifier and a
// module name; reconciliation is what attaches the human-meaningful room
// and device names to them.
//
//	structure document          device directory
//	(rooms, names, hints)       (live discovery results)
//	         \                      /
//	          +---- Reconcile -----+
//	                    |
//	           []ReconciledDevice
//	     matched / discovered-unnamed / known-offline
//
// Matching runs in priority order: exact identifier first, then a legacy
// IP+model heuristic for documents that predate identifier hints. Every
// live DeviceRecord appears in the output exactly once; structure entries
// with no live counterpart surface as known-offline rather than being
// dropped.
//
// Documents are validated wholesale against an embedded JSON Schema
// before any of their content is used. A document that fails validation
// is rejected with ErrInvalidStructure and nothing is applied.
//
// # Thread Safety
//
// Structure values are immutable once loaded. Reconcile is a pure
// function of its inputs and safe to call concurrently.
package home

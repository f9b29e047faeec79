// Package discovery maintains the device directory for WiZ Local Core.
//
// A discovery cycle is a broadcast-collect-merge pass: one registration
// datagram is broadcast on the local subnet, unicast replies are
// collected for a bounded window, each reply is enriched with the
// device's system config and current pilot, and the refreshed directory
// is swapped in atomically. Readers always observe either the full old
// directory or the full new one, never a half-merged mix.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────┐
//	│                      Discovery Service                       │
//	│                                                              │
//	│  IDLE ──▶ BROADCASTING ──▶ COLLECTING ──▶ MERGED ──▶ IDLE    │
//	│             (one datagram)   (window)     (atomic swap)      │
//	└──────────────────────────────────────────────────────────────┘
//
// Identity follows the hardware MAC reported in the registration reply,
// never the IP. A reply carrying a known identifier with a new address
// updates the record in place, which is what makes DHCP lease changes
// survivable without duplicating devices. Records unseen beyond the
// staleness threshold are evicted during the merge.
//
// Concurrent cycles on one directory are rejected with ErrDiscoveryBusy
// rather than interleaved. Zero replies is a valid outcome - only a
// failed broadcast send raises ErrDiscoveryFailed, and in that case the
// previous directory is left intact (stale-but-valid beats
// empty-but-fresh).
package discovery

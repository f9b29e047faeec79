// Package history persists device state snapshots to SQLite.
//
// Every snapshot the system observes is appended here with a source tag
// so the path a device took to its current state can be reconstructed:
// what discovery saw, what a control call set, what a preview overrode
// and what the restore put back. The table is a local audit trail that
// works even when the time-series sink is disabled.
package history

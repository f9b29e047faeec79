// Package session implements the per-device command client.
//
// A Session sends one datagram per call to a known device IP and waits
// for the correlated reply within a bounded timeout. Correlation is by
// method name plus a monotonically increasing per-session sequence
// number; stray datagrams with a mismatched id are discarded. A single
// automatic retry absorbs one dropped UDP packet - anything beyond that
// surfaces as ErrDeviceUnreachable and the caller decides what to do.
//
// Requests to the same IP are serialized through a per-device lock so
// two in-flight commands can never produce ambiguous correlation;
// requests to different devices run concurrently.
//
// The Session holds no device state. Staleness is an explicit concern
// of the discovery directory, not hidden caching here.
package session

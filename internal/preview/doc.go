// Package preview drives time-boxed state overrides with a guaranteed
// restore, letting a user sample an effect for a few seconds without
// losing the state the device was in.
//
// Each device has at most one active session. A session moves through an
// explicit lifecycle:
//
//	           StartPreview
//	                |
//	             ACTIVE ----------- StartPreview (same device)
//	            /   |   \                   |
//	   Cancel  /    |    \  timer fires  SUPERSEDED
//	          /     |     \              (no restore; the new
//	   CANCELLED    |      EXPIRED        session captured a
//	 (restore now)  |   (restore applied)  fresh restore point)
//	                |
//	        restore apply fails
//	                |
//	         RESTORE_FAILED
//
// The restore point is captured from the live device before anything is
// mutated; an unreachable device fails the preview up front rather than
// guessing. Once a session terminates, for any reason, its timer is dead
// and further cancels are no-ops.
//
// # Thread Safety
//
// Controller is safe for concurrent use. Restores run outside the
// session table lock so a slow device cannot stall previews on others.
package preview

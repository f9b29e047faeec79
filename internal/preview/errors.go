package preview

import "errors"

var (
	// ErrInvalidDuration is returned when a preview duration is not
	// positive. Rejected before any network call.
	ErrInvalidDuration = errors.New("preview: duration must be positive")

	// ErrEmptyPreview is returned when the requested state mutates
	// nothing. Rejected before any network call.
	ErrEmptyPreview = errors.New("preview: requested state is empty")

	// ErrApplyFailed is returned when the requested preview state could
	// not be applied. The session is live at that point: the restore
	// point was captured and the scheduled restore still fires.
	ErrApplyFailed = errors.New("preview: apply failed")

	// ErrRestoreFailed is returned when a cancelled or expired preview
	// could not put the device back into its captured state.
	ErrRestoreFailed = errors.New("preview: restore failed")
)

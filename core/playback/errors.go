package playback

import "errors"

var (
	// ErrPlaybackFailure is returned when every playback tier failed.
	ErrPlaybackFailure = errors.New("audio playback failed")
	// ErrTierUnavailable marks a tier that is not configured for the runtime.
	ErrTierUnavailable = errors.New("playback tier unavailable")
)

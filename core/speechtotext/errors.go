package speechtotext

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedEngine means the platform has no speech recognition.
	ErrUnsupportedEngine = errors.New("speech recognition not supported")
	// ErrPermissionDenied means the user refused microphone or speech access.
	ErrPermissionDenied = errors.New("speech recognition permission denied")
	// ErrStartFailure means the engine refused to start.
	ErrStartFailure = errors.New("speech recognition failed to start")
	// ErrEngine is a transient engine error reported while listening.
	ErrEngine = errors.New("speech recognition engine error")
)

// EngineError is an error reported by an engine while it was running.
type EngineError struct {
	// Code is the engine specific error code, e.g. "network" or "no-speech".
	Code string
	// Class is one of the package sentinels.
	Class error
	Err   error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Class, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Class, e.Code)
}

func (e *EngineError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Class, e.Err}
	}
	return []error{e.Class}
}

func startFailure(err error) error {
	if errors.Is(err, ErrStartFailure) || errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrUnsupportedEngine) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStartFailure, err)
}

package speechtotext

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionPrompt  PermissionState = "prompt"
)

type NativeEvent string

const (
	NativeEventPartialResults NativeEvent = "partialResults"
	NativeEventResult         NativeEvent = "result"
	NativeEventEnd            NativeEvent = "end"
	NativeEventError          NativeEvent = "error"
)

// NativeEventData is the payload of a native recognizer event. Matches holds
// the candidate transcripts, best first.
type NativeEventData struct {
	Matches []string
	Code    string
	Err     error
}

type ListenerHandle interface {
	Remove(ctx context.Context) error
}

type NativeStartOptions struct {
	Language       string
	PartialResults bool
	MaxResults     int
	// Popup shows the platform recognition dialog where one exists.
	Popup bool
}

// NativeRecognizer is the mobile plugin style recognition API. A single
// utterance is recognized per Start.
type NativeRecognizer interface {
	Available(ctx context.Context) (bool, error)
	CheckPermissions(ctx context.Context) (PermissionState, error)
	RequestPermissions(ctx context.Context) (PermissionState, error)
	Start(ctx context.Context, options NativeStartOptions) error
	Stop(ctx context.Context) error
	AddListener(ctx context.Context, event NativeEvent, listener func(NativeEventData)) (ListenerHandle, error)
}

type nativeEngine struct {
	recognizer NativeRecognizer

	mu        sync.Mutex
	listeners []ListenerHandle
}

func NewNativeEngine(recognizer NativeRecognizer) Engine {
	return &nativeEngine{recognizer: recognizer}
}

func (e *nativeEngine) Name() string { return "native" }

func (e *nativeEngine) Prepare(ctx context.Context) error {
	if e.recognizer == nil {
		return ErrUnsupportedEngine
	}

	available, err := e.recognizer.Available(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedEngine, err)
	}
	if !available {
		return ErrUnsupportedEngine
	}

	state, err := e.recognizer.CheckPermissions(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	if state == PermissionGranted {
		return nil
	}

	state, err = e.recognizer.RequestPermissions(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	if state != PermissionGranted {
		return ErrPermissionDenied
	}
	return nil
}

func (e *nativeEngine) Start(ctx context.Context, config Config, handlers Handlers) error {
	if err := e.releaseListeners(ctx); err != nil {
		logger.Warn("failed to release native recognition listeners", "error", err)
	}

	listeners := map[NativeEvent]func(NativeEventData){
		NativeEventPartialResults: func(data NativeEventData) {
			if len(data.Matches) > 0 && handlers.OnResult != nil {
				handlers.OnResult(data.Matches[0], false)
			}
		},
		NativeEventResult: func(data NativeEventData) {
			if len(data.Matches) > 0 && handlers.OnResult != nil {
				handlers.OnResult(data.Matches[0], true)
			}
		},
		NativeEventEnd: func(NativeEventData) {
			if handlers.OnEnd != nil {
				handlers.OnEnd()
			}
		},
		NativeEventError: func(data NativeEventData) {
			if handlers.OnError != nil {
				handlers.OnError(classifyNativeError(data))
			}
		},
	}

	for _, event := range []NativeEvent{NativeEventPartialResults, NativeEventResult, NativeEventEnd, NativeEventError} {
		handle, err := e.recognizer.AddListener(ctx, event, listeners[event])
		if err != nil {
			return startFailure(fmt.Errorf("failed to add %s listener: %w", event, err))
		}
		e.mu.Lock()
		e.listeners = append(e.listeners, handle)
		e.mu.Unlock()
	}

	if err := e.recognizer.Start(ctx, NativeStartOptions{
		Language:       config.Language,
		PartialResults: config.InterimResults,
		MaxResults:     1,
	}); err != nil {
		return startFailure(err)
	}
	return nil
}

func (e *nativeEngine) Stop(ctx context.Context) error {
	return e.recognizer.Stop(ctx)
}

// Close releases every registered listener.
func (e *nativeEngine) Close(ctx context.Context) error {
	return e.releaseListeners(ctx)
}

func (e *nativeEngine) releaseListeners(ctx context.Context) error {
	e.mu.Lock()
	listeners := e.listeners
	e.listeners = nil
	e.mu.Unlock()

	var errs []error
	for _, listener := range listeners {
		if err := listener.Remove(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func classifyNativeError(data NativeEventData) error {
	switch data.Code {
	case "not-allowed", "permission-denied":
		return &EngineError{Code: data.Code, Class: ErrPermissionDenied, Err: data.Err}
	default:
		return &EngineError{Code: data.Code, Class: ErrEngine, Err: data.Err}
	}
}

package speechtotext

import (
	"context"
	"strings"
)

// WebResult is one recognition result slot.
type WebResult struct {
	Transcript string
	IsFinal    bool
}

// WebResultEvent carries every result slot of the current recognition, only
// slots from ResultIndex onward changed since the previous event.
type WebResultEvent struct {
	ResultIndex int
	Results     []WebResult
}

type WebHandlers struct {
	OnResult func(event WebResultEvent)
	OnEnd    func()
	// OnError receives the engine error code, e.g. "not-allowed".
	OnError func(code string)
}

// WebRecognizer is the browser style recognition API: configure, attach
// handlers, start and stop.
type WebRecognizer interface {
	SetLanguage(language string)
	SetContinuous(continuous bool)
	SetInterimResults(interim bool)
	SetHandlers(handlers WebHandlers)
	Start() error
	Stop() error
}

// webCapability is implemented by recognizers that only learn at runtime
// whether the host has speech recognition.
type webCapability interface {
	Supported() bool
}

type webEngine struct {
	recognizer WebRecognizer
}

func NewWebEngine(recognizer WebRecognizer) Engine {
	return &webEngine{recognizer: recognizer}
}

func (e *webEngine) Name() string { return "web" }

func (e *webEngine) Prepare(context.Context) error {
	if e.recognizer == nil {
		return ErrUnsupportedEngine
	}
	if capability, ok := e.recognizer.(webCapability); ok && !capability.Supported() {
		return ErrUnsupportedEngine
	}
	return nil
}

func (e *webEngine) Start(_ context.Context, config Config, handlers Handlers) error {
	e.recognizer.SetLanguage(config.Language)
	e.recognizer.SetContinuous(config.Continuous)
	e.recognizer.SetInterimResults(config.InterimResults)
	e.recognizer.SetHandlers(WebHandlers{
		OnResult: func(event WebResultEvent) {
			transcript, isFinal, ok := collectResults(event)
			if ok && handlers.OnResult != nil {
				handlers.OnResult(transcript, isFinal)
			}
		},
		OnEnd: func() {
			if handlers.OnEnd != nil {
				handlers.OnEnd()
			}
		},
		OnError: func(code string) {
			if handlers.OnError != nil {
				handlers.OnError(classifyWebError(code))
			}
		},
	})

	if err := e.recognizer.Start(); err != nil {
		return startFailure(err)
	}
	return nil
}

func (e *webEngine) Stop(context.Context) error {
	return e.recognizer.Stop()
}

// collectResults concatenates the changed slots. Final text wins whenever
// any changed slot is final, otherwise the interim text is reported.
func collectResults(event WebResultEvent) (string, bool, bool) {
	if event.ResultIndex < 0 || event.ResultIndex >= len(event.Results) {
		return "", false, false
	}

	var final, interim strings.Builder
	hasFinal := false
	for _, result := range event.Results[event.ResultIndex:] {
		if result.IsFinal {
			hasFinal = true
			final.WriteString(result.Transcript)
		} else {
			interim.WriteString(result.Transcript)
		}
	}

	if hasFinal {
		return strings.TrimSpace(final.String()), true, true
	}
	if text := strings.TrimSpace(interim.String()); text != "" {
		return text, false, true
	}
	return "", false, false
}

func classifyWebError(code string) error {
	switch code {
	case "not-allowed", "service-not-allowed":
		return &EngineError{Code: code, Class: ErrPermissionDenied}
	case "not-supported":
		return &EngineError{Code: code, Class: ErrUnsupportedEngine}
	case "start-failed":
		return &EngineError{Code: code, Class: ErrStartFailure}
	default:
		return &EngineError{Code: code, Class: ErrEngine}
	}
}

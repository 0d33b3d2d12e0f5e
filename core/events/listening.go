package events

const (
	// KindListeningStarted identifies the start of a recognition run.
	KindListeningStarted Kind = "listening.started"
	// KindListeningEnded identifies a recognition run ending normally.
	KindListeningEnded Kind = "listening.ended"
	// KindListeningFailed identifies a recognition run ending with an error.
	KindListeningFailed Kind = "listening.failed"
)

// ListeningStarted marks the start of a recognition run.
type ListeningStarted struct {
	Base
	Language   string
	Continuous bool
}

// NewListeningStarted creates a listening started event.
func NewListeningStarted(language string, continuous bool) ListeningStarted {
	return ListeningStarted{Base: NewBase(KindListeningStarted), Language: language, Continuous: continuous}
}

// ListeningEnded marks a recognition run that ended without an error.
type ListeningEnded struct{ Base }

// NewListeningEnded creates a listening ended event.
func NewListeningEnded() ListeningEnded {
	return ListeningEnded{Base: NewBase(KindListeningEnded)}
}

// ListeningFailed carries the error that ended a recognition run.
type ListeningFailed struct {
	Base
	Err error
}

// NewListeningFailed creates a listening failed event.
func NewListeningFailed(err error) ListeningFailed {
	return ListeningFailed{Base: NewBase(KindListeningFailed), Err: err}
}

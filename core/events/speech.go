package events

const (
	// KindSpeechRequested identifies an accepted synthesis request.
	KindSpeechRequested Kind = "speech.requested"
	// KindSpeechRendered identifies synthesis audio handed to the output.
	KindSpeechRendered Kind = "speech.rendered"
	// KindSpeechFailed identifies a synthesis request no path could render.
	KindSpeechFailed Kind = "speech.failed"
	// KindSpeechSuperseded identifies a synthesis request replaced by a newer one.
	KindSpeechSuperseded Kind = "speech.superseded"
)

// SpeechPath names the synthesis path that handled a request.
type SpeechPath string

const (
	SpeechPathCloud    SpeechPath = "cloud"
	SpeechPathPlatform SpeechPath = "platform"
)

// SpeechRequest identifies one synthesis request across its events.
type SpeechRequest struct {
	ID       string
	Text     string
	Language string
}

// SpeechRequested marks an accepted synthesis request.
type SpeechRequested struct {
	Base
	Request SpeechRequest
}

// NewSpeechRequested creates a speech requested event.
func NewSpeechRequested(request SpeechRequest) SpeechRequested {
	return SpeechRequested{Base: NewBase(KindSpeechRequested), Request: request}
}

// SpeechRendered marks synthesis audio handed to the output.
type SpeechRendered struct {
	Base
	Request SpeechRequest
	Path    SpeechPath
}

// NewSpeechRendered creates a speech rendered event.
func NewSpeechRendered(request SpeechRequest, path SpeechPath) SpeechRendered {
	return SpeechRendered{Base: NewBase(KindSpeechRendered), Request: request, Path: path}
}

// SpeechFailed carries the error of a request that could not be rendered.
type SpeechFailed struct {
	Base
	Request SpeechRequest
	Err     error
}

// NewSpeechFailed creates a speech failed event.
func NewSpeechFailed(request SpeechRequest, err error) SpeechFailed {
	return SpeechFailed{Base: NewBase(KindSpeechFailed), Request: request, Err: err}
}

// SpeechSuperseded marks a request whose audio was dropped for a newer one.
type SpeechSuperseded struct {
	Base
	Request SpeechRequest
}

// NewSpeechSuperseded creates a speech superseded event.
func NewSpeechSuperseded(request SpeechRequest) SpeechSuperseded {
	return SpeechSuperseded{Base: NewBase(KindSpeechSuperseded), Request: request}
}

package speechtotext

const DefaultLanguage = "en-US"

// Config is the recognition configuration captured by every Start. Changing
// the session configuration while a run is active only affects the next run.
type Config struct {
	// Continuous keeps the session listening across utterances by restarting
	// the engine whenever it ends on its own.
	Continuous bool
	// Language is a BCP 47 tag such as "en-US".
	Language string
	// InterimResults asks the engine for provisional transcripts.
	InterimResults bool
}

func DefaultConfig() Config {
	return Config{Language: DefaultLanguage, InterimResults: true}
}

type TranscriptionOptions struct {
	// TranscriptCallback receives interim (isFinal false) and final
	// transcripts in engine emission order.
	TranscriptCallback func(transcript string, isFinal bool)
	// EndCallback is called once when the session ends without an error.
	EndCallback func()
	// ErrorCallback is called once when the session ends with an error.
	ErrorCallback func(err error)
}

type TranscriptionOption func(*TranscriptionOptions)

func WithTranscriptCallback(callback func(transcript string, isFinal bool)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.TranscriptCallback = callback
	}
}

func WithEndCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EndCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.ErrorCallback = callback
	}
}

func newTranscriptionOptions(opts ...TranscriptionOption) TranscriptionOptions {
	options := TranscriptionOptions{
		TranscriptCallback: func(string, bool) {},
		EndCallback:        func() {},
		ErrorCallback:      func(error) {},
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.TranscriptCallback == nil {
		options.TranscriptCallback = func(string, bool) {}
	}
	if options.EndCallback == nil {
		options.EndCallback = func() {}
	}
	if options.ErrorCallback == nil {
		options.ErrorCallback = func(error) {}
	}
	return options
}

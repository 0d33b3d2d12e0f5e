package orchestration

import (
	"context"

	"github.com/koscakluka/linguaflow/core/audio"
	"github.com/koscakluka/linguaflow/core/events"
	"github.com/koscakluka/linguaflow/core/speechtotext"
	"github.com/koscakluka/linguaflow/core/translation"
	"github.com/koscakluka/linguaflow/core/voices"
)

type OrchestratorOption func(*Orchestrator)

// OutputMode selects the synthesis path used by Speak.
type OutputMode string

const (
	// OutputAuto uses the cloud synthesizer when one is configured and the
	// platform synthesizer otherwise.
	OutputAuto OutputMode = "auto"
	// OutputCloud only uses the cloud synthesizer. Its failures are reported,
	// never replaced by the platform voice.
	OutputCloud OutputMode = "cloud"
	// OutputPlatform only uses the platform synthesizer.
	OutputPlatform OutputMode = "platform"
)

// SpeechToText is the recognition session driven by Start and Stop.
type SpeechToText interface {
	Configure(continuous bool, language string)
	Start(ctx context.Context, opts ...speechtotext.TranscriptionOption)
	Stop(ctx context.Context)
}

// WithSpeechToText sets the recognition session.
func WithSpeechToText(session SpeechToText) OrchestratorOption {
	return func(o *Orchestrator) { o.speechToText.set(session) }
}

// WithRecognitionEngine wraps engine in a new recognition session.
func WithRecognitionEngine(engine speechtotext.Engine) OrchestratorOption {
	return func(o *Orchestrator) { o.speechToText.set(speechtotext.NewSession(engine)) }
}

// CloudSpeech synthesizes text with a vendor voice.
type CloudSpeech interface {
	Synthesize(ctx context.Context, text, language string) (audio.Clip, error)
}

func WithCloudSpeech(client CloudSpeech) OrchestratorOption {
	return func(o *Orchestrator) { o.textToSpeech.cloud = client }
}

// WithPlatformSpeech sets the on-device synthesizer and the catalog its
// voices are picked from. A nil catalog is built from synthesizer.
func WithPlatformSpeech(synthesizer voices.Synthesizer, catalog *voices.Catalog) OrchestratorOption {
	return func(o *Orchestrator) {
		if synthesizer == nil {
			o.textToSpeech.platform = nil
			o.textToSpeech.catalog = nil
			return
		}
		if catalog == nil {
			catalog = voices.NewCatalog(synthesizer)
		}
		o.textToSpeech.platform = synthesizer
		o.textToSpeech.catalog = catalog
	}
}

// AudioOutput plays synthesized clips. Play is expected to replace whatever
// is still playing.
type AudioOutput interface {
	Play(ctx context.Context, clip audio.Clip) error
}

func WithAudioOutput(output AudioOutput) OrchestratorOption {
	return func(o *Orchestrator) { o.audioOutput.set(output) }
}

func WithOutputMode(mode OutputMode) OrchestratorOption {
	return func(o *Orchestrator) {
		switch mode {
		case OutputCloud, OutputPlatform:
			o.textToSpeech.mode = mode
		default:
			o.textToSpeech.mode = OutputAuto
		}
	}
}

// Translator translates text and always produces something displayable.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (translation.Result, error)
}

func WithTranslator(translator Translator) OrchestratorOption {
	return func(o *Orchestrator) { o.translator = translator }
}

// WithAutoSpeak makes every completed translation spoken in the target
// language.
func WithAutoSpeak(autoSpeak bool) OrchestratorOption {
	return func(o *Orchestrator) { o.autoSpeak.Store(autoSpeak) }
}

// WithEventHandler registers a handler receiving every event emitted by the
// orchestrator. The handler is called synchronously and must not block.
func WithEventHandler(handler func(events.Event)) OrchestratorOption {
	return func(o *Orchestrator) { o.eventHandler = handler }
}

type StartOptions struct {
	onTranscript   func(transcript string, isFinal bool)
	onEnd          func()
	onError        func(err error)
	onStateChanged func(state State)
}

type StartOption func(*StartOptions)

// WithTranscriptCallback registers a callback for interim and final
// transcripts in the order the engine produced them.
func WithTranscriptCallback(callback func(transcript string, isFinal bool)) StartOption {
	return func(o *StartOptions) {
		o.onTranscript = callback
	}
}

// WithEndCallback registers a callback for the end of listening. It is not
// called when listening ended with an error.
func WithEndCallback(callback func()) StartOption {
	return func(o *StartOptions) {
		o.onEnd = callback
	}
}

// WithErrorCallback registers a callback for recognition failures, including
// a missing engine and denied microphone permission.
func WithErrorCallback(callback func(err error)) StartOption {
	return func(o *StartOptions) {
		o.onError = callback
	}
}

func WithStateChangedCallback(callback func(state State)) StartOption {
	return func(o *StartOptions) {
		o.onStateChanged = callback
	}
}

package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/koscakluka/linguaflow/core/events"
	"github.com/koscakluka/linguaflow/core/speechtotext"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// State is the listening state of an orchestrator. Synthesis runs
// independently and is reported by IsSynthesizing.
type State int32

const (
	StateIdle State = iota
	StateListening
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Orchestrator combines a recognition session with the synthesis paths and
// a single audio output behind one start/stop/speak contract.
type Orchestrator struct {
	closeOnce sync.Once
	closed    atomic.Bool

	// speechToText is the recognition facade, unconfigured sessions fail
	// every Start with ErrUnsupportedEngine.
	speechToText speechToText
	textToSpeech textToSpeech
	audioOutput  audioOutput
	translator   Translator

	autoSpeak    atomic.Bool
	eventHandler func(events.Event)

	mu           sync.Mutex
	continuous   bool
	language     string
	startOptions StartOptions
	emitEvent    eventEmitter
	state        State
	lastErr      error
	// listening is the run of the latest Start, nil once it has finished.
	listening *listeningRun

	// speechGeneration and translationGeneration only grow, a result is used
	// only when its generation is still the latest one.
	speechGeneration      atomic.Uint64
	translationGeneration atomic.Uint64
	synthesizing          atomic.Int32
	speechWG              sync.WaitGroup

	baseContext context.Context

	speechMu     sync.Mutex
	cancelSpeech context.CancelFunc
}

// listeningRun ties the callbacks of one Start together. Each run reports
// exactly one of ListeningEnded or ListeningFailed.
type listeningRun struct {
	emit           eventEmitter
	onStateChanged func(State)
	finished       bool
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		speechToText: *newSpeechToText(nil),
		textToSpeech: *newTextToSpeech(),
		audioOutput:  *newAudioOutput(nil),
		language:     speechtotext.DefaultLanguage,
		baseContext:  context.Background(),
	}

	for _, opt := range opts {
		opt(o)
	}
	o.emitEvent = newCallbackEventEmitter(StartOptions{}, o.eventHandler)

	return o
}

// Configure sets the recognition mode and language for the next Start. A
// run already in progress keeps its configuration.
func (o *Orchestrator) Configure(continuous bool, language string) {
	o.mu.Lock()
	o.continuous = continuous
	if language != "" {
		o.language = language
	}
	o.mu.Unlock()

	o.speechToText.Configure(continuous, language)
}

// Start begins listening. Transcripts, the end of listening and failures are
// reported through the callbacks in opts and as events. Recognition errors,
// including a missing engine, move the orchestrator to StateError.
func (o *Orchestrator) Start(ctx context.Context, opts ...StartOption) {
	if o.closed.Load() {
		logger.WarnContext(ctx, "orchestrator already closed, skipping Start")
		return
	}

	options := StartOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	o.mu.Lock()
	previous := o.listening
	o.mu.Unlock()
	if previous != nil {
		o.finishListening(previous, StateIdle, nil, events.NewListeningEnded())
	}

	run := &listeningRun{
		emit:           newCallbackEventEmitter(options, o.eventHandler),
		onStateChanged: options.onStateChanged,
	}
	o.mu.Lock()
	o.listening = run
	o.startOptions = options
	o.emitEvent = run.emit
	o.baseContext = ctx
	language, continuous := o.language, o.continuous
	o.mu.Unlock()

	o.setState(StateListening, nil)
	o.emit(events.NewListeningStarted(language, continuous))

	o.speechToText.Start(ctx, speechToTextCallbacks{
		onEvent: func(event events.Event) {
			if o.isListening(run) {
				run.emit(event)
			}
		},
		onEnd: func() {
			o.finishListening(run, StateIdle, nil, events.NewListeningEnded())
		},
		onError: func(err error) {
			if !o.isListening(run) {
				return
			}
			recordedErr := fmt.Errorf("recognition failed: %w", err)
			span := trace.SpanFromContext(ctx)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())

			o.finishListening(run, StateError, err, events.NewListeningFailed(err))
		},
	})
}

func (o *Orchestrator) isListening(run *listeningRun) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.listening == run && !run.finished
}

// finishListening reports the terminal event of run once. The orchestrator
// state only follows the run of the latest Start.
func (o *Orchestrator) finishListening(run *listeningRun, state State, err error, event events.Event) {
	o.mu.Lock()
	if run.finished {
		o.mu.Unlock()
		return
	}
	run.finished = true
	changed := false
	if o.listening == run {
		o.listening = nil
		changed = o.state != state
		o.state = state
		o.lastErr = err
	}
	o.mu.Unlock()

	if changed && run.onStateChanged != nil {
		run.onStateChanged(state)
	}
	run.emit(event)
}

// Stop asks the recognition session to stop. The orchestrator becomes idle
// once the session reports the end. Synthesis and playback are not affected.
func (o *Orchestrator) Stop(ctx context.Context) {
	o.speechToText.Stop(ctx)
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Err returns the error that moved the orchestrator to StateError.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

func (o *Orchestrator) IsSynthesizing() bool { return o.synthesizing.Load() > 0 }

func (o *Orchestrator) SetAutoSpeak(autoSpeak bool) { o.autoSpeak.Store(autoSpeak) }
func (o *Orchestrator) AutoSpeak() bool             { return o.autoSpeak.Load() }

// WarmVoices loads the platform voice list ahead of the first platform
// utterance.
func (o *Orchestrator) WarmVoices(ctx context.Context) {
	o.textToSpeech.warm(ctx)
}

// AwaitSpeech blocks until every accepted speech request has been rendered,
// superseded or failed.
func (o *Orchestrator) AwaitSpeech() {
	o.speechWG.Wait()
}

func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.closed.Store(true)

		o.mu.Lock()
		ctx := o.baseContext
		o.mu.Unlock()

		var errs error
		if err := o.speechToText.Close(ctx); err != nil {
			errs = errors.Join(errs, err)
		}
		o.speechMu.Lock()
		if o.cancelSpeech != nil {
			o.cancelSpeech()
		}
		o.speechMu.Unlock()
		o.textToSpeech.cancelPlatform()
		o.audioOutput.Stop()
		if err := o.audioOutput.Close(); err != nil {
			errs = errors.Join(errs, err)
		}

		if errs != nil {
			recordedErr := fmt.Errorf("failed to close orchestrator: %w", errs)
			span := trace.SpanFromContext(ctx)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
			logger.ErrorContext(ctx, "failed to close orchestrator", "error", errs)
		}
	})
}

func (o *Orchestrator) setState(state State, err error) {
	o.mu.Lock()
	changed := o.state != state
	o.state = state
	o.lastErr = err
	onStateChanged := o.startOptions.onStateChanged
	o.mu.Unlock()

	if changed && onStateChanged != nil {
		onStateChanged(state)
	}
}

func (o *Orchestrator) emit(event events.Event) {
	o.mu.Lock()
	emitEvent := o.emitEvent
	o.mu.Unlock()

	if emitEvent == nil {
		emitEvent = noopEventEmitter
	}
	logger.Debug("emitting event", "namespace", event.Kind().Namespace(), "kind", event.Kind())
	emitEvent(event)
}

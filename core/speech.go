package orchestration

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/koscakluka/linguaflow/core/audio"
	"github.com/koscakluka/linguaflow/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Speak synthesizes text in language and plays it. It returns immediately,
// the request is carried out in the background and reported through events.
// Requests are not queued: issuing a request cancels the context of the
// previous one, and a result that is no longer the latest is dropped. The
// audio output refuses clips whose context is already cancelled, so a stale
// clip can never replace a newer one. Empty text is ignored.
//
// Synthesis and playback failures are logged and reported as SpeechFailed
// events, they are never surfaced as errors.
func (o *Orchestrator) Speak(ctx context.Context, text, language string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if o.closed.Load() {
		logger.WarnContext(ctx, "orchestrator already closed, skipping Speak")
		return
	}

	request := events.SpeechRequest{
		ID:       uuid.NewString(),
		Text:     text,
		Language: language,
	}
	ctx, cancel := context.WithCancel(ctx)
	o.speechMu.Lock()
	generation := o.speechGeneration.Add(1)
	if o.cancelSpeech != nil {
		o.cancelSpeech()
	}
	o.cancelSpeech = cancel
	o.speechMu.Unlock()
	o.emit(events.NewSpeechRequested(request))

	o.speechWG.Add(1)
	go func() {
		defer o.speechWG.Done()
		defer cancel()
		o.speak(ctx, generation, request)
	}()
}

func (o *Orchestrator) speak(ctx context.Context, generation uint64, request events.SpeechRequest) {
	ctx, span := tracer.Start(ctx, "speak", trace.WithAttributes(
		attribute.String("speech.request", request.ID),
		attribute.String("speech.language", request.Language),
		attribute.Int("speech.text_length", len(request.Text)),
	))
	defer span.End()

	path, err := o.textToSpeech.path()
	if err != nil {
		o.speechFailed(ctx, request, err)
		return
	}
	span.SetAttributes(attribute.String("speech.path", string(path)))

	switch path {
	case events.SpeechPathCloud:
		o.synthesizing.Add(1)
		clip, err := o.textToSpeech.synthesizeCloud(ctx, request)
		o.synthesizing.Add(-1)
		o.render(ctx, generation, request, path, clip, err)

	case events.SpeechPathPlatform:
		o.textToSpeech.cancelPlatform()
		utterance := o.textToSpeech.utterance(ctx, request)

		if renderer, ok := o.textToSpeech.renderer(); ok {
			o.synthesizing.Add(1)
			clip, err := renderer.Render(ctx, utterance)
			o.synthesizing.Add(-1)
			o.render(ctx, generation, request, path, clip, err)
			return
		}

		if !o.isLatestSpeech(generation) {
			o.speechSuperseded(ctx, request)
			return
		}
		// The platform engine plays through its own output, silence ours.
		o.audioOutput.Stop()
		o.synthesizing.Add(1)
		err := o.textToSpeech.platform.Speak(ctx, utterance)
		o.synthesizing.Add(-1)
		if err != nil {
			if !o.isLatestSpeech(generation) {
				o.speechSuperseded(ctx, request)
				return
			}
			o.speechFailed(ctx, request, err)
			return
		}
		o.emit(events.NewSpeechRendered(request, path))
	}
}

// render hands a synthesized clip to the audio output unless a newer request
// has been issued in the meantime.
func (o *Orchestrator) render(ctx context.Context, generation uint64, request events.SpeechRequest, path events.SpeechPath, clip audio.Clip, err error) {
	if !o.isLatestSpeech(generation) {
		o.speechSuperseded(ctx, request)
		return
	}
	if err != nil {
		o.speechFailed(ctx, request, err)
		return
	}

	o.emit(events.NewSpeechRendered(request, path))
	if err := o.audioOutput.Play(ctx, clip); err != nil {
		if !o.isLatestSpeech(generation) {
			logger.DebugContext(ctx, "superseded before playback started", "request", request.ID)
			return
		}
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, "playback failed")
		logger.WarnContext(ctx, "playback failed", "request", request.ID, "error", err)
	}
}

func (o *Orchestrator) isLatestSpeech(generation uint64) bool {
	return generation == o.speechGeneration.Load()
}

func (o *Orchestrator) speechSuperseded(ctx context.Context, request events.SpeechRequest) {
	logger.DebugContext(ctx, "dropping superseded speech", "request", request.ID)
	o.emit(events.NewSpeechSuperseded(request))
}

func (o *Orchestrator) speechFailed(ctx context.Context, request events.SpeechRequest, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, "speech synthesis failed")
	logger.WarnContext(ctx, "speech synthesis failed", "request", request.ID, "language", request.Language, "error", err)
	o.emit(events.NewSpeechFailed(request, err))
}

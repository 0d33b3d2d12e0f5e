package orchestration

import (
	"context"
	"errors"

	"github.com/koscakluka/linguaflow/core/events"
	"github.com/koscakluka/linguaflow/core/translation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrNoTranslator = errors.New("no translator configured")

// Translate translates text in the background and calls onResult with the
// result, unless Translate has been called again before the result arrived.
// Degraded results from the local fallback are delivered like any other.
// With auto speak enabled the translation is spoken in the target language,
// placeholder results excepted.
func (o *Orchestrator) Translate(ctx context.Context, text, from, to string, onResult func(translation.Result)) {
	generation := o.translationGeneration.Add(1)
	if onResult == nil {
		onResult = func(translation.Result) {}
	}

	if o.translator == nil {
		logger.WarnContext(ctx, "skipping translation", "error", ErrNoTranslator)
		return
	}

	go func() {
		ctx, span := tracer.Start(ctx, "translate", trace.WithAttributes(
			attribute.String("translation.from", from),
			attribute.String("translation.to", to),
		))
		defer span.End()

		result, err := o.translator.Translate(ctx, text, from, to)
		if generation != o.translationGeneration.Load() {
			logger.DebugContext(ctx, "dropping superseded translation", "from", from, "to", to)
			return
		}
		if err != nil {
			span.RecordError(err)
			logger.WarnContext(ctx, "translation abandoned", "error", err)
			return
		}
		if result.Text == "" {
			return
		}
		span.SetAttributes(
			attribute.String("translation.source", result.Source),
			attribute.Bool("translation.degraded", result.Degraded),
		)

		payload := events.Translation{
			SourceText:     text,
			TranslatedText: result.Text,
			From:           from,
			To:             to,
			Source:         result.Source,
		}
		if result.Degraded {
			o.emit(events.NewTranslationDegraded(payload, result.Err))
		} else {
			o.emit(events.NewTranslationCompleted(payload))
		}

		onResult(result)

		if o.autoSpeak.Load() && result.Source != translation.SourcePlaceholder {
			o.Speak(ctx, result.Text, to)
		}
	}()
}

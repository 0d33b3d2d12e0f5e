package orchestration

import (
	"context"
	"errors"
	"fmt"

	"github.com/koscakluka/linguaflow/core/audio"
	"github.com/koscakluka/linguaflow/core/events"
	"github.com/koscakluka/linguaflow/core/voices"
)

var ErrNoSynthesizer = errors.New("no synthesizer configured for output mode")

type textToSpeech struct {
	mode OutputMode

	// cloud is the vendor synthesizer, nil when no credential is configured.
	cloud CloudSpeech

	platform voices.Synthesizer
	catalog  *voices.Catalog
}

func newTextToSpeech() *textToSpeech {
	return &textToSpeech{mode: OutputAuto}
}

// path picks the synthesis path for the configured output mode. The cloud
// mode never resolves to the platform path.
func (t *textToSpeech) path() (events.SpeechPath, error) {
	switch t.mode {
	case OutputCloud:
		if t.cloud == nil {
			return "", fmt.Errorf("%w: %s", ErrNoSynthesizer, t.mode)
		}
		return events.SpeechPathCloud, nil
	case OutputPlatform:
		if t.platform == nil {
			return "", fmt.Errorf("%w: %s", ErrNoSynthesizer, t.mode)
		}
		return events.SpeechPathPlatform, nil
	default:
		if t.cloud != nil {
			return events.SpeechPathCloud, nil
		}
		if t.platform != nil {
			return events.SpeechPathPlatform, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNoSynthesizer, OutputAuto)
	}
}

func (t *textToSpeech) synthesizeCloud(ctx context.Context, request events.SpeechRequest) (audio.Clip, error) {
	return t.cloud.Synthesize(ctx, request.Text, request.Language)
}

// utterance builds the platform request with the best voice the catalog
// knows for the language and the pacing for it.
func (t *textToSpeech) utterance(ctx context.Context, request events.SpeechRequest) voices.Utterance {
	utterance := voices.Utterance{
		Text:     request.Text,
		Language: request.Language,
		Pacing:   voices.PacingFor(request.Language),
	}

	if t.catalog == nil {
		return utterance
	}
	t.warm(ctx)
	if voice, ok := t.catalog.Select(request.Language); ok {
		utterance.Voice = &voice
	}
	return utterance
}

// renderer returns the platform synthesizer when it can hand audio back for
// the shared output.
func (t *textToSpeech) renderer() (voices.Renderer, bool) {
	renderer, ok := t.platform.(voices.Renderer)
	return renderer, ok
}

// cancelPlatform silences the platform synthesizer so two on-device
// utterances never overlap.
func (t *textToSpeech) cancelPlatform() {
	if t.platform != nil {
		t.platform.Cancel()
	}
}

func (t *textToSpeech) warm(ctx context.Context) {
	if t.catalog == nil || t.catalog.Warmed() {
		return
	}
	if err := t.catalog.Refresh(ctx); err != nil {
		logger.WarnContext(ctx, "failed to load platform voices", "error", err)
	}
}

package voices

import (
	"context"

	"github.com/koscakluka/linguaflow/core/audio"
)

// Utterance is one request to the platform synthesizer.
type Utterance struct {
	Text     string
	Language string
	// Voice is nil when the catalog has nothing to offer, the platform then
	// picks a voice from Language.
	Voice *Voice
	Pacing
}

// Synthesizer is the on-device speech engine.
type Synthesizer interface {
	Source
	// Speak renders the utterance through the platform's own audio output
	// and returns once it has finished or ctx is done.
	Speak(ctx context.Context, utterance Utterance) error
	// Cancel stops whatever the synthesizer is currently speaking.
	Cancel()
}

// Renderer is implemented by synthesizers that can hand the audio back
// instead of playing it themselves.
type Renderer interface {
	Render(ctx context.Context, utterance Utterance) (audio.Clip, error)
}

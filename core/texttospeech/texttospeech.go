package texttospeech

import (
	"context"
	"errors"

	"github.com/koscakluka/linguaflow/core/audio"
)

var (
	// ErrSynthesisFailure means no transport produced audio for the text.
	ErrSynthesisFailure = errors.New("speech synthesis failed")
	// ErrVoiceNotFound means the vendor does not know the requested voice.
	ErrVoiceNotFound = errors.New("voice not found")
)

// VoiceSettings tune the rendering of a cloud voice. All values are in the
// 0..1 range.
type VoiceSettings struct {
	Stability       float64
	SimilarityBoost float64
	Style           float64
	UseSpeakerBoost bool
}

// DefaultVoiceSettings favour expressive, clear speech.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.35,
		SimilarityBoost: 0.9,
		Style:           0.55,
		UseSpeakerBoost: true,
	}
}

// Synthesizer renders text into an encoded audio clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) (audio.Clip, error)
}

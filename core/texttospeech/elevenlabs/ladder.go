package elevenlabs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/koscakluka/linguaflow/core/audio"
	"github.com/koscakluka/linguaflow/core/texttospeech"
	"github.com/koscakluka/linguaflow/internal/langtag"
	"github.com/koscakluka/linguaflow/internal/utils"
)

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	LanguageCode  *string       `json:"language_code,omitempty"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type transport interface {
	name() string
	synthesize(ctx context.Context, voice string, request synthesisRequest) (audio.Clip, error)
}

func (c *Client) newRequest(text, model string, languageCode *string) synthesisRequest {
	request := synthesisRequest{
		Text:         text,
		ModelID:      model,
		LanguageCode: languageCode,
	}
	copier.Copy(&request.VoiceSettings, &c.settings)
	return request
}

// runLadder makes at most three attempts on t:
//  1. primary voice, primary model, with language code
//  2. when the primary voice is unknown: default voice, primary model, with
//     language code, its outcome is final
//  3. otherwise: primary voice, fallback model, without language code
func (c *Client) runLadder(ctx context.Context, t transport, text, language string) (audio.Clip, error) {
	primaryVoice := c.VoiceFor(language)
	languageCode := langtag.Primary(language)

	clip, err := t.synthesize(ctx, primaryVoice, c.newRequest(text, c.primaryModel, utils.Ptr(languageCode)))
	if err == nil {
		return clip, nil
	}
	if ctx.Err() != nil {
		return audio.Clip{}, err
	}

	if errors.Is(err, texttospeech.ErrVoiceNotFound) && primaryVoice != c.defaultVoice {
		logger.Warn("voice not found, retrying with default voice",
			"transport", t.name(), "voice", primaryVoice, "default_voice", c.defaultVoice)
		clip, err := t.synthesize(ctx, c.defaultVoice, c.newRequest(text, c.primaryModel, utils.Ptr(languageCode)))
		if err != nil {
			return audio.Clip{}, fmt.Errorf("default voice: %w", err)
		}
		return clip, nil
	}

	logger.Warn("primary model failed, retrying with fallback model",
		"transport", t.name(), "model", c.primaryModel, "fallback_model", c.fallbackModel, "error", err)
	clip, fallbackErr := t.synthesize(ctx, primaryVoice, c.newRequest(text, c.fallbackModel, nil))
	if fallbackErr != nil {
		return audio.Clip{}, errors.Join(err, fmt.Errorf("fallback model: %w", fallbackErr))
	}
	return clip, nil
}

// Package elevenlabs renders speech with the ElevenLabs text to speech API.
package elevenlabs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/linguaflow/core/audio"
	"github.com/koscakluka/linguaflow/core/texttospeech"
	"github.com/koscakluka/linguaflow/internal/langtag"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL       = "https://api.elevenlabs.io"
	DefaultStreamURL     = "wss://api.elevenlabs.io"
	DefaultVoice         = "JBFqnCBsd6RMkjVDRZzb"
	DefaultPrimaryModel  = "eleven_turbo_v2_5"
	DefaultFallbackModel = "eleven_multilingual_v2"
	DefaultOutputFormat  = "mp3_44100_128"
)

var ErrMissingAPIKey = errors.New("elevenlabs api key not configured")

// builtinVoices maps primary language subtags to voices that read the
// language clearly. Languages without a dedicated voice use DefaultVoice
// together with a language code.
var builtinVoices = map[string]string{
	"en": "JBFqnCBsd6RMkjVDRZzb",
	"es": "EXAVITQu4vr4xnSDxMaL",
	"fr": "TxGEqnHWrfWFTfGW9XjX",
	"de": "VR6AewLTigWG4xSOukaG",
	"it": "qvyoSlaC5qJvGN0p2Z8I",
	"pt": "pqHfZKP75CvOlQylNhV4",
	"ru": "EXAVITQu4vr4xnSDxMaL",
	"he": "EXAVITQu4vr4xnSDxMaL",
	"ja": "yoZ06aMxZJJ28mfd3POQ",
	"ko": "A0oDE3VSIQsPE0WR5kbJ",
	"zh": "ThT5KcBeYPX3keUQqHPh",
}

type Client struct {
	apiKey        string
	baseURL       string
	streamURL     string
	defaultVoice  string
	primaryModel  string
	fallbackModel string
	outputFormat  string
	voices        map[string]string
	settings      texttospeech.VoiceSettings
	streaming     bool

	httpClient *http.Client
	dialer     *websocket.Dialer
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithStreamURL(streamURL string) ClientOption {
	return func(c *Client) {
		if streamURL != "" {
			c.streamURL = strings.TrimRight(streamURL, "/")
		}
	}
}

func WithDefaultVoice(voice string) ClientOption {
	return func(c *Client) {
		if voice != "" {
			c.defaultVoice = voice
		}
	}
}

// WithModels sets the model tried first and the multilingual model used
// when the first attempt fails.
func WithModels(primary, fallback string) ClientOption {
	return func(c *Client) {
		if primary != "" {
			c.primaryModel = primary
		}
		if fallback != "" {
			c.fallbackModel = fallback
		}
	}
}

func WithOutputFormat(format string) ClientOption {
	return func(c *Client) {
		if format != "" {
			c.outputFormat = format
		}
	}
}

// WithVoices overrides voices per primary language subtag.
func WithVoices(voices map[string]string) ClientOption {
	return func(c *Client) {
		for lang, voice := range voices {
			if voice == "" {
				continue
			}
			c.voices[langtag.Primary(lang)] = voice
		}
	}
}

func WithVoiceSettings(settings texttospeech.VoiceSettings) ClientOption {
	return func(c *Client) { c.settings = settings }
}

// WithStreamingFallback enables the websocket transport used when the REST
// transport fails. It is enabled by default.
func WithStreamingFallback(enabled bool) ClientOption {
	return func(c *Client) { c.streaming = enabled }
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithDialer(dialer *websocket.Dialer) ClientOption {
	return func(c *Client) {
		if dialer != nil {
			c.dialer = dialer
		}
	}
}

func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:        apiKey,
		baseURL:       DefaultBaseURL,
		streamURL:     DefaultStreamURL,
		defaultVoice:  DefaultVoice,
		primaryModel:  DefaultPrimaryModel,
		fallbackModel: DefaultFallbackModel,
		outputFormat:  DefaultOutputFormat,
		voices:        make(map[string]string, len(builtinVoices)),
		settings:      texttospeech.DefaultVoiceSettings(),
		streaming:     true,
		httpClient:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		dialer:        websocket.DefaultDialer,
	}
	for lang, voice := range builtinVoices {
		c.voices[lang] = voice
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// VoiceFor returns the voice used for language.
func (c *Client) VoiceFor(language string) string {
	if voice, ok := c.voices[langtag.Primary(language)]; ok {
		return voice
	}
	return c.defaultVoice
}

// Synthesize renders text through the REST transport, then through the
// streaming transport when REST fails. Each transport runs the full retry
// ladder.
func (c *Client) Synthesize(ctx context.Context, text, language string) (audio.Clip, error) {
	ctx, span := tracer.Start(ctx, "synthesize speech", trace.WithAttributes(
		attribute.String("tts.language", language),
		attribute.Int("tts.text_length", len(text)),
	))
	defer span.End()

	transports := []transport{&restTransport{client: c}}
	if c.streaming {
		transports = append(transports, &streamingTransport{client: c})
	}

	var errs []error
	for _, t := range transports {
		clip, err := c.runLadder(ctx, t, text, language)
		if err == nil {
			span.SetAttributes(attribute.String("tts.transport", t.name()), attribute.Int("tts.audio_bytes", len(clip.Data)))
			return clip, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", t.name(), err))
		if ctx.Err() != nil {
			break
		}
		logger.Warn("speech synthesis transport failed", "transport", t.name(), "error", err)
	}

	err := fmt.Errorf("%w: %w", texttospeech.ErrSynthesisFailure, errors.Join(errs...))
	span.RecordError(err)
	span.SetStatus(codes.Error, "speech synthesis failed")
	return audio.Clip{}, err
}

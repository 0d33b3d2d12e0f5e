package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	orchestration "github.com/koscakluka/linguaflow/core"
	"github.com/koscakluka/linguaflow/core/audio/miniaudio"
	"github.com/koscakluka/linguaflow/core/audio/portaudio"
	"github.com/koscakluka/linguaflow/core/events"
	"github.com/koscakluka/linguaflow/core/platform"
	"github.com/koscakluka/linguaflow/core/playback"
	"github.com/koscakluka/linguaflow/core/speechtotext"
	"github.com/koscakluka/linguaflow/core/speechtotext/deepgram"
	"github.com/koscakluka/linguaflow/core/speechtotext/webspeech"
	"github.com/koscakluka/linguaflow/core/texttospeech/elevenlabs"
	"github.com/koscakluka/linguaflow/core/translation"
	"github.com/koscakluka/linguaflow/core/voices"
	"github.com/koscakluka/linguaflow/core/voices/espeak"
	"github.com/koscakluka/linguaflow/internal/config"
)

const streamBufferSize = 4096

// services owns every device and server opened for one command.
type services struct {
	orchestrator *orchestration.Orchestrator
	bridge       *webspeech.Bridge
	bridgeAddr   string

	closers []func()
}

func (s *services) Close() {
	s.orchestrator.Close()
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

type wiringOptions struct {
	recognition bool
	onEvent     func(events.Event)
}

func buildServices(ctx context.Context, cfg *config.Config, opts wiringOptions) (*services, error) {
	s := &services{bridgeAddr: cfg.Recognition.BridgeAddr}
	orchestratorOpts := []orchestration.OrchestratorOption{
		orchestration.WithOutputMode(orchestration.OutputMode(strings.ToLower(cfg.Speech.Output))),
		orchestration.WithAutoSpeak(cfg.Speech.AutoSpeak),
		orchestration.WithTranslator(newTranslator(cfg.Translation)),
		orchestration.WithEventHandler(opts.onEvent),
	}

	// One miniaudio context serves the playback graph and the microphone.
	var graph *miniaudio.Client
	if client, err := miniaudio.NewClient(); err != nil {
		slog.Warn("audio graph unavailable", "error", err)
	} else {
		graph = client
		s.closers = append(s.closers, client.Close)
	}

	sinkOpts := []playback.SinkOption{playback.WithRuntime(platform.Detect())}
	if graph != nil {
		sinkOpts = append(sinkOpts, playback.WithAudioGraph(graph))
	}
	if element, err := portaudio.NewClient(streamBufferSize); err != nil {
		slog.Warn("streaming audio output unavailable", "error", err)
	} else {
		s.closers = append(s.closers, element.Close)
		sinkOpts = append(sinkOpts, playback.WithMediaElement(element))
	}
	orchestratorOpts = append(orchestratorOpts, orchestration.WithAudioOutput(playback.NewSink(sinkOpts...)))

	if cfg.ElevenLabs.APIKey != "" {
		client, err := elevenlabs.NewClient(cfg.ElevenLabs.APIKey,
			elevenlabs.WithBaseURL(cfg.ElevenLabs.BaseURL),
			elevenlabs.WithStreamURL(cfg.ElevenLabs.StreamURL),
			elevenlabs.WithDefaultVoice(cfg.ElevenLabs.DefaultVoice),
			elevenlabs.WithModels(cfg.ElevenLabs.PrimaryModel, cfg.ElevenLabs.FallbackModel),
			elevenlabs.WithOutputFormat(cfg.ElevenLabs.OutputFormat),
			elevenlabs.WithVoices(cfg.ElevenLabs.Voices),
			elevenlabs.WithStreamingFallback(cfg.ElevenLabs.Streaming),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud speech client: %w", err)
		}
		orchestratorOpts = append(orchestratorOpts, orchestration.WithCloudSpeech(client))
	}

	if synthesizer := espeak.New(); synthesizer.Available() {
		orchestratorOpts = append(orchestratorOpts, orchestration.WithPlatformSpeech(synthesizer, voices.NewCatalog(synthesizer)))
	} else {
		slog.Debug("platform voice unavailable, espeak-ng not found")
	}

	if opts.recognition {
		engine, bridge := selectEngine(cfg, graph)
		s.bridge = bridge
		if engine != nil {
			orchestratorOpts = append(orchestratorOpts, orchestration.WithRecognitionEngine(engine))
		}
	}

	s.orchestrator = orchestration.NewOrchestrator(orchestratorOpts...)
	s.orchestrator.Configure(cfg.Recognition.Continuous, cfg.Languages.Source)
	s.orchestrator.WarmVoices(ctx)
	return s, nil
}

// selectEngine picks the recognition engine. Desktops have no native speech
// plugin, streaming recognition with the microphone stands in for it when a
// key is configured.
func selectEngine(cfg *config.Config, capture *miniaudio.Client) (speechtotext.Engine, *webspeech.Bridge) {
	var native speechtotext.NativeRecognizer
	if cfg.Deepgram.APIKey != "" && capture != nil {
		native = deepgram.NewRecognizer(cfg.Deepgram.APIKey, capture, deepgram.WithModel(cfg.Deepgram.Model))
	}

	switch strings.ToLower(cfg.Recognition.Engine) {
	case "native":
		if native == nil {
			return nil, nil
		}
		return speechtotext.NewNativeEngine(native), nil
	case "web":
		bridge := webspeech.NewBridge()
		return speechtotext.NewWebEngine(bridge), bridge
	default:
		if native != nil {
			return speechtotext.NewNativeEngine(native), nil
		}
		bridge := webspeech.NewBridge()
		return speechtotext.SelectEngine(platform.Detect(), bridge, nil), bridge
	}
}

func newTranslator(cfg config.TranslationConfig) *translation.Fallback {
	switch strings.ToLower(cfg.Backend) {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			slog.Warn("openai translation selected without an api key, using the phrase dictionary")
			return translation.NewFallback("", nil)
		}
		var opts []translation.OpenAIOption
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, translation.WithOpenAIBaseURL(cfg.OpenAI.BaseURL))
		}
		return translation.NewFallback("openai", translation.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model, opts...))
	case "dictionary":
		return translation.NewFallback("", nil)
	default:
		return translation.NewFallback("mymemory", translation.NewMyMemory(
			translation.WithEndpoint(cfg.Endpoint),
			translation.WithEmail(cfg.Email),
		))
	}
}

// serveBridge runs the recognition page server in the background.
func (s *services) serveBridge(ctx context.Context) {
	if s.bridge == nil {
		return
	}
	go func() {
		if err := s.bridge.ListenAndServe(ctx, s.bridgeAddr); err != nil {
			slog.Error("recognition bridge failed", "error", err)
			fmt.Fprintln(os.Stderr, err)
		}
	}()
}

package orchestration

import (
	"context"
	"fmt"

	"github.com/koscakluka/linguaflow/core/events"
	"github.com/koscakluka/linguaflow/core/speechtotext"
)

type speechToText struct {
	// session stores the configured recognition session.
	session SpeechToText
}

type speechToTextCallbacks struct {
	onEvent func(events.Event)
	onEnd   func()
	onError func(err error)
}

func newSpeechToText(session SpeechToText) *speechToText {
	return &speechToText{session: session}
}

func (s *speechToText) set(session SpeechToText) {
	if s != nil {
		s.session = session
	}
}

func (s *speechToText) isConfigured() bool {
	return s != nil && s.session != nil
}

func (s *speechToText) Configure(continuous bool, language string) {
	if !s.isConfigured() {
		return
	}
	s.session.Configure(continuous, language)
}

// Start begins a recognition run. Transcripts are forwarded as events, the
// run ends with exactly one of onEnd or onError. Without a session the run
// fails immediately with ErrUnsupportedEngine.
func (s *speechToText) Start(ctx context.Context, callbacks speechToTextCallbacks) {
	if !s.isConfigured() {
		callbacks.onError(speechtotext.ErrUnsupportedEngine)
		return
	}

	s.session.Start(ctx,
		speechtotext.WithTranscriptCallback(func(transcript string, isFinal bool) {
			if isFinal {
				callbacks.onEvent(events.NewTranscriptFinal(transcript))
			} else {
				callbacks.onEvent(events.NewTranscriptInterim(transcript))
			}
		}),
		speechtotext.WithEndCallback(callbacks.onEnd),
		speechtotext.WithErrorCallback(callbacks.onError),
	)
}

func (s *speechToText) Stop(ctx context.Context) {
	if !s.isConfigured() {
		return
	}
	s.session.Stop(ctx)
}

func (s *speechToText) Close(ctx context.Context) error {
	if !s.isConfigured() {
		return nil
	}

	switch c := s.session.(type) {
	case interface{ Close(context.Context) error }:
		if err := c.Close(ctx); err != nil {
			return fmt.Errorf("failed to close recognition session: %w", err)
		}
	case interface{ Close(context.Context) }:
		c.Close(ctx)
	case interface{ Close() error }:
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close recognition session: %w", err)
		}
	case interface{ Close() }:
		c.Close()
	}

	return nil
}

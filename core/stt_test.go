package orchestration

import (
	"context"
	"errors"
	"testing"

	"github.com/koscakluka/linguaflow/core/events"
	"github.com/koscakluka/linguaflow/core/speechtotext"
)

func TestSpeechToTextForwardsTranscriptsAsEvents(t *testing.T) {
	session := &speechToTextSessionStub{}
	facade := newSpeechToText(session)

	received := []events.Event{}
	ended := 0
	facade.Start(context.Background(), speechToTextCallbacks{
		onEvent: func(event events.Event) { received = append(received, event) },
		onEnd:   func() { ended++ },
		onError: func(error) {},
	})

	session.options.TranscriptCallback("hel", false)
	session.options.TranscriptCallback("hello", true)
	session.options.EndCallback()

	if len(received) != 2 {
		t.Fatalf("expected two events, got %d", len(received))
	}
	interim, ok := received[0].(events.TranscriptInterim)
	if !ok || interim.Text != "hel" {
		t.Fatalf("expected interim transcript hel, got %#v", received[0])
	}
	final, ok := received[1].(events.TranscriptFinal)
	if !ok || final.Text != "hello" {
		t.Fatalf("expected final transcript hello, got %#v", received[1])
	}
	if ended != 1 {
		t.Fatalf("expected one end callback, got %d", ended)
	}
}

func TestSpeechToTextWithoutSessionIsUnsupported(t *testing.T) {
	facade := newSpeechToText(nil)

	var reported error
	facade.Start(context.Background(), speechToTextCallbacks{
		onEvent: func(events.Event) {},
		onEnd:   func() {},
		onError: func(err error) { reported = err },
	})

	if !errors.Is(reported, speechtotext.ErrUnsupportedEngine) {
		t.Fatalf("expected unsupported engine, got %v", reported)
	}
	facade.Stop(context.Background())
	if err := facade.Close(context.Background()); err != nil {
		t.Fatalf("expected close without session to succeed, got %v", err)
	}
}

func TestSpeechToTextCloseWrapsSessionError(t *testing.T) {
	session := &speechToTextSessionStub{closeErr: errors.New("boom")}
	facade := newSpeechToText(session)

	err := facade.Close(context.Background())
	if err == nil || !errors.Is(err, session.closeErr) {
		t.Fatalf("expected wrapped close error, got %v", err)
	}
}

type speechToTextSessionStub struct {
	options  speechtotext.TranscriptionOptions
	closeErr error
}

func (s *speechToTextSessionStub) Configure(bool, string) {}

func (s *speechToTextSessionStub) Start(_ context.Context, opts ...speechtotext.TranscriptionOption) {
	for _, opt := range opts {
		opt(&s.options)
	}
}

func (s *speechToTextSessionStub) Stop(context.Context) {}

func (s *speechToTextSessionStub) Close(context.Context) error { return s.closeErr }

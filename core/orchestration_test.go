package orchestration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/koscakluka/linguaflow/core/audio"
	"github.com/koscakluka/linguaflow/core/events"
	"github.com/koscakluka/linguaflow/core/speechtotext"
	"github.com/koscakluka/linguaflow/core/translation"
	"github.com/koscakluka/linguaflow/core/voices"
)

func TestStartReportsTranscriptsAndReturnsToIdle(t *testing.T) {
	engine := &recognitionEngineStub{}
	recorder := &eventRecorder{}
	o := NewOrchestrator(WithRecognitionEngine(engine), WithEventHandler(recorder.record))
	defer o.Close()

	transcripts := []string{}
	finals := []bool{}
	states := []State{}
	endCalls := 0
	o.Configure(false, "de-DE")
	o.Start(context.Background(),
		WithTranscriptCallback(func(transcript string, isFinal bool) {
			transcripts = append(transcripts, transcript)
			finals = append(finals, isFinal)
		}),
		WithEndCallback(func() { endCalls++ }),
		WithStateChangedCallback(func(state State) { states = append(states, state) }),
	)

	if got := o.State(); got != StateListening {
		t.Fatalf("expected state listening, got %s", got)
	}
	if got := engine.startedConfig().Language; got != "de-DE" {
		t.Fatalf("expected engine to start with de-DE, got %q", got)
	}

	handlers := engine.handlers()
	handlers.OnResult("hallo", false)
	handlers.OnResult("hallo welt", true)
	handlers.OnEnd()

	if len(transcripts) != 2 || transcripts[0] != "hallo" || transcripts[1] != "hallo welt" {
		t.Fatalf("expected transcripts [hallo, hallo welt], got %v", transcripts)
	}
	if finals[0] || !finals[1] {
		t.Fatalf("expected finality [false true], got %v", finals)
	}
	if endCalls != 1 {
		t.Fatalf("expected one end callback, got %d", endCalls)
	}
	if got := o.State(); got != StateIdle {
		t.Fatalf("expected state idle, got %s", got)
	}
	if len(states) != 2 || states[0] != StateListening || states[1] != StateIdle {
		t.Fatalf("expected states [listening idle], got %v", states)
	}

	kinds := recorder.kinds()
	expected := []events.Kind{
		events.KindListeningStarted,
		events.KindTranscriptInterim,
		events.KindTranscriptFinal,
		events.KindListeningEnded,
	}
	if len(kinds) != len(expected) {
		t.Fatalf("expected events %v, got %v", expected, kinds)
	}
	for i := range expected {
		if kinds[i] != expected[i] {
			t.Fatalf("expected events %v, got %v", expected, kinds)
		}
	}
}

func TestStartWithoutEngineReportsUnsupported(t *testing.T) {
	o := NewOrchestrator()
	defer o.Close()

	var reported error
	endCalls := 0
	o.Start(context.Background(),
		WithErrorCallback(func(err error) { reported = err }),
		WithEndCallback(func() { endCalls++ }),
	)

	if !errors.Is(reported, speechtotext.ErrUnsupportedEngine) {
		t.Fatalf("expected unsupported engine error, got %v", reported)
	}
	if endCalls != 0 {
		t.Fatalf("expected no end callback after an error, got %d", endCalls)
	}
	if got := o.State(); got != StateError {
		t.Fatalf("expected state error, got %s", got)
	}
	if !errors.Is(o.Err(), speechtotext.ErrUnsupportedEngine) {
		t.Fatalf("expected Err to keep the unsupported engine error, got %v", o.Err())
	}
}

func TestEngineErrorMovesToErrorState(t *testing.T) {
	engine := &recognitionEngineStub{}
	o := NewOrchestrator(WithRecognitionEngine(engine))
	defer o.Close()

	var reported error
	o.Start(context.Background(), WithErrorCallback(func(err error) { reported = err }))
	engine.handlers().OnError(speechtotext.ErrPermissionDenied)
	engine.handlers().OnEnd()

	if !errors.Is(reported, speechtotext.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", reported)
	}
	if got := o.State(); got != StateError {
		t.Fatalf("expected state error to survive the trailing end, got %s", got)
	}
}

func TestStartAgainEndsThePreviousRun(t *testing.T) {
	engine := &recognitionEngineStub{}
	recorder := &eventRecorder{}
	o := NewOrchestrator(WithRecognitionEngine(engine), WithEventHandler(recorder.record))
	defer o.Close()

	firstEnds, firstErrors := 0, 0
	firstStates := []State{}
	o.Start(context.Background(),
		WithEndCallback(func() { firstEnds++ }),
		WithErrorCallback(func(error) { firstErrors++ }),
		WithStateChangedCallback(func(state State) { firstStates = append(firstStates, state) }),
	)
	oldHandlers := engine.handlers()

	secondEnds := 0
	o.Start(context.Background(), WithEndCallback(func() { secondEnds++ }))
	oldHandlers.OnEnd()

	if firstEnds != 1 || firstErrors != 0 {
		t.Fatalf("expected the first run to end once, got ends=%d errors=%d", firstEnds, firstErrors)
	}
	if len(firstStates) != 2 || firstStates[1] != StateIdle {
		t.Fatalf("expected the first run to see [listening idle], got %v", firstStates)
	}
	if secondEnds != 0 {
		t.Fatalf("expected the second run to be active, got %d ends", secondEnds)
	}
	if got := o.State(); got != StateListening {
		t.Fatalf("expected state listening, got %s", got)
	}

	expected := []events.Kind{
		events.KindListeningStarted,
		events.KindListeningEnded,
		events.KindListeningStarted,
	}
	kinds := recorder.kinds()
	if len(kinds) != len(expected) {
		t.Fatalf("expected events %v, got %v", expected, kinds)
	}
	for i := range expected {
		if kinds[i] != expected[i] {
			t.Fatalf("expected events %v, got %v", expected, kinds)
		}
	}

	engine.handlers().OnEnd()
	if secondEnds != 1 {
		t.Fatalf("expected the second run to end once, got %d", secondEnds)
	}
	if got := o.State(); got != StateIdle {
		t.Fatalf("expected state idle, got %s", got)
	}
}

func TestStopOnlyStopsRecognition(t *testing.T) {
	engine := &recognitionEngineStub{}
	release := make(chan struct{})
	cloud := &cloudSpeechStub{gates: map[string]chan struct{}{"hola": release}}
	output := &audioOutputStub{}
	o := NewOrchestrator(WithRecognitionEngine(engine), WithCloudSpeech(cloud), WithAudioOutput(output))
	defer o.Close()

	o.Start(context.Background())
	o.Speak(context.Background(), "hola", "es-ES")
	o.Stop(context.Background())

	if got := engine.stopCalls.Load(); got != 1 {
		t.Fatalf("expected engine stop once, got %d", got)
	}

	close(release)
	o.AwaitSpeech()

	if got := output.playedTexts(); len(got) != 1 || got[0] != "hola" {
		t.Fatalf("expected in-flight speech to play after stop, got %v", got)
	}
}

func TestSpeakPlaysOnlyLatestRequest(t *testing.T) {
	releaseFirst := make(chan struct{})
	cloud := &cloudSpeechStub{gates: map[string]chan struct{}{"A": releaseFirst}}
	output := &audioOutputStub{played: make(chan string, 2)}
	recorder := &eventRecorder{}
	o := NewOrchestrator(WithCloudSpeech(cloud), WithAudioOutput(output), WithEventHandler(recorder.record))
	defer o.Close()

	o.Speak(context.Background(), "A", "en-US")
	o.Speak(context.Background(), "B", "en-US")

	select {
	case text := <-output.played:
		if text != "B" {
			t.Fatalf("expected B to play first, got %q", text)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for B to play")
	}

	close(releaseFirst)
	o.AwaitSpeech()

	if got := output.playedTexts(); len(got) != 1 || got[0] != "B" {
		t.Fatalf("expected only B to play, got %v", got)
	}
	if got := recorder.count(events.KindSpeechSuperseded); got != 1 {
		t.Fatalf("expected one superseded event, got %d", got)
	}
	if got := recorder.count(events.KindSpeechRendered); got != 1 {
		t.Fatalf("expected one rendered event, got %d", got)
	}
}

func TestNewerRequestCancelsClipAboutToPlay(t *testing.T) {
	cloud := &cloudSpeechStub{}
	output := &audioOutputStub{}
	var o *Orchestrator
	output.beforePlay = func(text string) {
		if text == "A" {
			o.Speak(context.Background(), "B", "en-US")
		}
	}
	o = NewOrchestrator(WithCloudSpeech(cloud), WithAudioOutput(output))
	defer o.Close()

	o.Speak(context.Background(), "A", "en-US")
	o.AwaitSpeech()

	if got := output.playedTexts(); len(got) != 1 || got[0] != "B" {
		t.Fatalf("expected only B to play, got %v", got)
	}
}

func TestCloseCancelsSpeechInFlight(t *testing.T) {
	cloud := &cloudSpeechStub{gates: map[string]chan struct{}{"A": make(chan struct{})}}
	output := &audioOutputStub{}
	o := NewOrchestrator(WithCloudSpeech(cloud), WithAudioOutput(output))

	o.Speak(context.Background(), "A", "en-US")
	o.Close()

	done := make(chan struct{})
	go func() {
		o.AwaitSpeech()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected close to cancel the pending synthesis")
	}
	if got := output.playedTexts(); len(got) != 0 {
		t.Fatalf("expected nothing to play, got %v", got)
	}
}

func TestSpeakIgnoresEmptyText(t *testing.T) {
	cloud := &cloudSpeechStub{}
	recorder := &eventRecorder{}
	o := NewOrchestrator(WithCloudSpeech(cloud), WithEventHandler(recorder.record))
	defer o.Close()

	o.Speak(context.Background(), "", "en-US")
	o.Speak(context.Background(), "   ", "en-US")
	o.AwaitSpeech()

	if got := cloud.calls.Load(); got != 0 {
		t.Fatalf("expected no synthesis calls, got %d", got)
	}
	if got := len(recorder.kinds()); got != 0 {
		t.Fatalf("expected no events, got %d", got)
	}
	if o.IsSynthesizing() {
		t.Fatalf("expected no synthesis in flight")
	}
}

func TestCloudModeNeverFallsBackToPlatformVoice(t *testing.T) {
	cloud := &cloudSpeechStub{err: errors.New("all tiers failed")}
	platform := &platformSpeechStub{}
	output := &audioOutputStub{}
	recorder := &eventRecorder{}
	o := NewOrchestrator(
		WithOutputMode(OutputCloud),
		WithCloudSpeech(cloud),
		WithPlatformSpeech(platform, nil),
		WithAudioOutput(output),
		WithEventHandler(recorder.record),
	)
	defer o.Close()

	o.Speak(context.Background(), "hello", "en-US")
	o.AwaitSpeech()

	if got := platform.speakCalls.Load(); got != 0 {
		t.Fatalf("expected platform voice to stay silent, got %d calls", got)
	}
	if got := len(output.playedTexts()); got != 0 {
		t.Fatalf("expected nothing played, got %d clips", got)
	}
	if got := recorder.count(events.KindSpeechFailed); got != 1 {
		t.Fatalf("expected one failed event, got %d", got)
	}
}

func TestCloudModeWithoutClientFails(t *testing.T) {
	platform := &platformSpeechStub{}
	recorder := &eventRecorder{}
	o := NewOrchestrator(WithOutputMode(OutputCloud), WithPlatformSpeech(platform, nil), WithEventHandler(recorder.record))
	defer o.Close()

	o.Speak(context.Background(), "hello", "en-US")
	o.AwaitSpeech()

	failed := recorder.failed()
	if len(failed) != 1 || !errors.Is(failed[0].Err, ErrNoSynthesizer) {
		t.Fatalf("expected one failure with ErrNoSynthesizer, got %v", failed)
	}
	if got := platform.speakCalls.Load(); got != 0 {
		t.Fatalf("expected platform voice to stay silent, got %d calls", got)
	}
}

func TestAutoModePrefersCloud(t *testing.T) {
	cloud := &cloudSpeechStub{}
	platform := &platformSpeechStub{}
	output := &audioOutputStub{}
	o := NewOrchestrator(WithCloudSpeech(cloud), WithPlatformSpeech(platform, nil), WithAudioOutput(output))
	defer o.Close()

	o.Speak(context.Background(), "hello", "en-US")
	o.AwaitSpeech()

	if got := cloud.calls.Load(); got != 1 {
		t.Fatalf("expected one cloud call, got %d", got)
	}
	if got := platform.speakCalls.Load() + platform.renderCalls.Load(); got != 0 {
		t.Fatalf("expected platform voice unused, got %d calls", got)
	}
}

func TestPlatformRendererPlaysThroughAudioOutput(t *testing.T) {
	platform := platformRendererStub{&platformSpeechStub{
		voices: []voices.Voice{
			{ID: "plain", Name: "eSpeak German", Language: "de-DE"},
			{ID: "neural", Name: "Neural German", Language: "de-DE"},
		},
	}}
	output := &audioOutputStub{}
	recorder := &eventRecorder{}
	o := NewOrchestrator(WithPlatformSpeech(platform, nil), WithAudioOutput(output), WithEventHandler(recorder.record))
	defer o.Close()

	o.Speak(context.Background(), "guten tag", "de-DE")
	o.AwaitSpeech()

	if got := platform.cancelCalls.Load(); got != 1 {
		t.Fatalf("expected platform speech canceled once before rendering, got %d", got)
	}
	utterance := platform.lastUtterance()
	if utterance.Voice == nil || utterance.Voice.ID != "neural" {
		t.Fatalf("expected the premium voice, got %+v", utterance.Voice)
	}
	if utterance.Rate != 0.95 || utterance.Pitch != 0.9 {
		t.Fatalf("expected german pacing 0.95/0.9, got %v/%v", utterance.Rate, utterance.Pitch)
	}
	if got := output.playedTexts(); len(got) != 1 || got[0] != "guten tag" {
		t.Fatalf("expected rendered clip to be played, got %v", got)
	}
	rendered := recorder.rendered()
	if len(rendered) != 1 || rendered[0].Path != events.SpeechPathPlatform {
		t.Fatalf("expected one platform rendered event, got %v", rendered)
	}
}

func TestPlatformSpeakSilencesAudioOutput(t *testing.T) {
	platform := &platformSpeechStub{}
	output := &audioOutputStub{}
	o := NewOrchestrator(WithPlatformSpeech(platform, nil), WithAudioOutput(output))
	defer o.Close()

	o.Speak(context.Background(), "bonjour", "fr-FR")
	o.AwaitSpeech()

	if got := platform.speakCalls.Load(); got != 1 {
		t.Fatalf("expected one platform utterance, got %d", got)
	}
	if got := output.stopCalls.Load(); got != 1 {
		t.Fatalf("expected audio output stopped before platform speech, got %d", got)
	}
	if got := platform.lastUtterance().Language; got != "fr-FR" {
		t.Fatalf("expected utterance in fr-FR, got %q", got)
	}
}

func TestPlaybackFailureIsNotSurfaced(t *testing.T) {
	cloud := &cloudSpeechStub{}
	output := &audioOutputStub{err: errors.New("no output device")}
	recorder := &eventRecorder{}
	o := NewOrchestrator(WithCloudSpeech(cloud), WithAudioOutput(output), WithEventHandler(recorder.record))
	defer o.Close()

	o.Speak(context.Background(), "hello", "en-US")
	o.AwaitSpeech()

	if got := recorder.count(events.KindSpeechRendered); got != 1 {
		t.Fatalf("expected rendered event despite playback failure, got %d", got)
	}
	if got := recorder.count(events.KindSpeechFailed); got != 0 {
		t.Fatalf("expected no failed event for playback, got %d", got)
	}
}

func TestTranslateDropsSupersededResult(t *testing.T) {
	releaseFirst := make(chan struct{})
	translator := &translatorStub{
		gates:   map[string]chan struct{}{"one": releaseFirst},
		results: map[string]string{"one": "uno", "two": "dos"},
	}
	o := NewOrchestrator(WithTranslator(translator))
	defer o.Close()

	results := make(chan translation.Result, 2)
	o.Translate(context.Background(), "one", "en-US", "es-ES", func(result translation.Result) { results <- result })
	o.Translate(context.Background(), "two", "en-US", "es-ES", func(result translation.Result) { results <- result })

	select {
	case result := <-results:
		if result.Text != "dos" {
			t.Fatalf("expected dos, got %q", result.Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for translation")
	}

	close(releaseFirst)

	select {
	case result := <-results:
		t.Fatalf("expected superseded result to be dropped, got %q", result.Text)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTranslateAutoSpeaksTranslation(t *testing.T) {
	translator := &translatorStub{results: map[string]string{"hello": "hola"}}
	cloud := &cloudSpeechStub{}
	output := &audioOutputStub{played: make(chan string, 1)}
	recorder := &eventRecorder{}
	o := NewOrchestrator(
		WithTranslator(translator),
		WithCloudSpeech(cloud),
		WithAudioOutput(output),
		WithAutoSpeak(true),
		WithEventHandler(recorder.record),
	)
	defer o.Close()

	o.Translate(context.Background(), "hello", "en-US", "es-ES", nil)

	select {
	case text := <-output.played:
		if text != "hola" {
			t.Fatalf("expected hola to be spoken, got %q", text)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for auto speak")
	}
	if got := cloud.lastLanguage(); got != "es-ES" {
		t.Fatalf("expected speech in target language, got %q", got)
	}
	if got := recorder.count(events.KindTranslationCompleted); got != 1 {
		t.Fatalf("expected one completed translation, got %d", got)
	}
}

func TestTranslateDegradedPlaceholderIsNotSpoken(t *testing.T) {
	translator := &translatorStub{degraded: true}
	cloud := &cloudSpeechStub{}
	recorder := &eventRecorder{}
	o := NewOrchestrator(
		WithTranslator(translator),
		WithCloudSpeech(cloud),
		WithAutoSpeak(true),
		WithEventHandler(recorder.record),
	)
	defer o.Close()

	results := make(chan translation.Result, 1)
	o.Translate(context.Background(), "good evening", "en-US", "fr-FR", func(result translation.Result) { results <- result })

	select {
	case result := <-results:
		if result.Text != "[Translated to French]: good evening" {
			t.Fatalf("expected placeholder text, got %q", result.Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for translation")
	}
	o.AwaitSpeech()

	if got := recorder.count(events.KindTranslationDegraded); got != 1 {
		t.Fatalf("expected one degraded translation event, got %d", got)
	}
	if got := cloud.calls.Load(); got != 0 {
		t.Fatalf("expected placeholder to stay silent, got %d synthesis calls", got)
	}
}

func TestClosedOrchestratorIgnoresRequests(t *testing.T) {
	engine := &recognitionEngineStub{}
	cloud := &cloudSpeechStub{}
	o := NewOrchestrator(WithRecognitionEngine(engine), WithCloudSpeech(cloud))
	o.Close()

	o.Start(context.Background())
	o.Speak(context.Background(), "hello", "en-US")
	o.AwaitSpeech()

	if got := engine.startCalls.Load(); got != 0 {
		t.Fatalf("expected no engine start after close, got %d", got)
	}
	if got := cloud.calls.Load(); got != 0 {
		t.Fatalf("expected no synthesis after close, got %d", got)
	}
}

type recognitionEngineStub struct {
	mu         sync.Mutex
	config     speechtotext.Config
	current    speechtotext.Handlers
	startCalls atomic.Int32
	stopCalls  atomic.Int32
}

func (e *recognitionEngineStub) Name() string                  { return "stub" }
func (e *recognitionEngineStub) Prepare(context.Context) error { return nil }

func (e *recognitionEngineStub) Start(_ context.Context, config speechtotext.Config, handlers speechtotext.Handlers) error {
	e.startCalls.Add(1)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = config
	e.current = handlers
	return nil
}

func (e *recognitionEngineStub) Stop(context.Context) error {
	e.stopCalls.Add(1)
	return nil
}

func (e *recognitionEngineStub) handlers() speechtotext.Handlers {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *recognitionEngineStub) startedConfig() speechtotext.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

type cloudSpeechStub struct {
	gates map[string]chan struct{}
	err   error

	calls    atomic.Int32
	mu       sync.Mutex
	language string
}

func (c *cloudSpeechStub) Synthesize(ctx context.Context, text, language string) (audio.Clip, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.language = language
	c.mu.Unlock()

	if gate, ok := c.gates[text]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return audio.Clip{}, ctx.Err()
		}
	}
	if c.err != nil {
		return audio.Clip{}, c.err
	}
	return audio.Clip{Data: []byte(text), ContentType: "audio/mpeg"}, nil
}

func (c *cloudSpeechStub) lastLanguage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

type platformSpeechStub struct {
	voices []voices.Voice

	speakCalls  atomic.Int32
	renderCalls atomic.Int32
	cancelCalls atomic.Int32

	mu        sync.Mutex
	utterance voices.Utterance
}

func (p *platformSpeechStub) Voices(context.Context) ([]voices.Voice, error) { return p.voices, nil }
func (p *platformSpeechStub) OnVoicesChanged(func())                         {}
func (p *platformSpeechStub) Cancel()                                        { p.cancelCalls.Add(1) }

func (p *platformSpeechStub) Speak(_ context.Context, utterance voices.Utterance) error {
	p.speakCalls.Add(1)
	p.remember(utterance)
	return nil
}

func (p *platformSpeechStub) remember(utterance voices.Utterance) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.utterance = utterance
}

func (p *platformSpeechStub) lastUtterance() voices.Utterance {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.utterance
}

// platformRendererStub hands clips back instead of speaking them.
type platformRendererStub struct {
	*platformSpeechStub
}

func (p platformRendererStub) Render(_ context.Context, utterance voices.Utterance) (audio.Clip, error) {
	p.renderCalls.Add(1)
	p.remember(utterance)
	return audio.Clip{Data: []byte(utterance.Text), ContentType: "audio/wav"}, nil
}

type audioOutputStub struct {
	err        error
	played     chan string
	beforePlay func(text string)

	mu        sync.Mutex
	texts     []string
	stopCalls atomic.Int32
}

func (a *audioOutputStub) Play(ctx context.Context, clip audio.Clip) error {
	if a.beforePlay != nil {
		a.beforePlay(string(clip.Data))
	}
	if a.err != nil {
		return a.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	a.texts = append(a.texts, string(clip.Data))
	a.mu.Unlock()
	if a.played != nil {
		a.played <- string(clip.Data)
	}
	return nil
}

func (a *audioOutputStub) Stop() { a.stopCalls.Add(1) }

func (a *audioOutputStub) playedTexts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.texts...)
}

type translatorStub struct {
	gates    map[string]chan struct{}
	results  map[string]string
	degraded bool
}

func (s *translatorStub) Translate(ctx context.Context, text, from, to string) (translation.Result, error) {
	if gate, ok := s.gates[text]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return translation.Result{}, ctx.Err()
		}
	}
	if s.degraded {
		return translation.Result{
			Text:     translation.Placeholder(text, to),
			From:     from,
			To:       to,
			Source:   translation.SourcePlaceholder,
			Degraded: true,
		}, nil
	}
	return translation.Result{Text: s.results[text], From: from, To: to, Source: "stub"}, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]events.Kind, 0, len(r.events))
	for _, event := range r.events {
		kinds = append(kinds, event.Kind())
	}
	return kinds
}

func (r *eventRecorder) count(kind events.Kind) int {
	count := 0
	for _, k := range r.kinds() {
		if k == kind {
			count++
		}
	}
	return count
}

func (r *eventRecorder) failed() []events.SpeechFailed {
	r.mu.Lock()
	defer r.mu.Unlock()
	var failed []events.SpeechFailed
	for _, event := range r.events {
		if typed, ok := event.(events.SpeechFailed); ok {
			failed = append(failed, typed)
		}
	}
	return failed
}

func (r *eventRecorder) rendered() []events.SpeechRendered {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rendered []events.SpeechRendered
	for _, event := range r.events {
		if typed, ok := event.(events.SpeechRendered); ok {
			rendered = append(rendered, typed)
		}
	}
	return rendered
}

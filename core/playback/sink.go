package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/koscakluka/linguaflow/core/audio"
	"github.com/koscakluka/linguaflow/core/platform"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type tier interface {
	name() string
	available() bool
	play(ctx context.Context, clip audio.Clip) error
	stop()
}

// Sink renders synthesized clips through the most reliable output available
// on the current runtime. It owns a single playback channel: starting a new
// clip supersedes whatever is still playing.
type Sink struct {
	runtime platform.Runtime

	native    *nativeTier
	buffered  *bufferedTier
	streaming *streamingTier

	mu          sync.Mutex
	cancelPrev  context.CancelFunc
	activeTier  tier
	playCounter uint64
}

type SinkOption func(*Sink)

func WithRuntime(runtime platform.Runtime) SinkOption {
	return func(s *Sink) { s.runtime = runtime }
}

// WithNativePlayer enables the native tier. Clips are written into cacheDir
// on fs for the duration of the playback.
func WithNativePlayer(player NativePlayer, fs afero.Fs, cacheDir string) SinkOption {
	return func(s *Sink) {
		if fs == nil {
			fs = afero.NewOsFs()
		}
		s.native.player = player
		s.native.fs = fs
		s.native.cacheDir = cacheDir
	}
}

func WithAudioGraph(graph AudioGraph) SinkOption {
	return func(s *Sink) { s.buffered.graph = graph }
}

func WithMediaElement(element MediaElement) SinkOption {
	return func(s *Sink) { s.streaming.element = element }
}

// WithPlaybackSlack changes the extra time the native tier waits past the
// decoded duration before releasing the asset.
func WithPlaybackSlack(slack time.Duration) SinkOption {
	return func(s *Sink) { s.native.slack = slack }
}

func withSleep(sleep func(context.Context, time.Duration) error) SinkOption {
	return func(s *Sink) { s.native.sleep = sleep }
}

func NewSink(opts ...SinkOption) *Sink {
	s := &Sink{
		runtime:   platform.Detect(),
		native:    &nativeTier{slack: defaultPlaybackSlack, sleep: sleepContext},
		buffered:  &bufferedTier{},
		streaming: &streamingTier{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.native.enabled = s.runtime.Native

	return s
}

// Play stops any clip still playing and renders clip through the first tier
// that succeeds, in order: native player, buffered audio graph, streaming
// media element.
//
// Failures of single tiers are only logged. The returned error wraps
// ErrPlaybackFailure when every tier failed, callers are expected to log it
// and carry on. A clip whose ctx is already cancelled is not played and the
// context error is returned.
func (s *Sink) Play(ctx context.Context, clip audio.Clip) error {
	ctx, span := tracer.Start(ctx, "play audio")
	defer span.End()
	span.SetAttributes(
		attribute.Int("audio.size", len(clip.Data)),
		attribute.String("audio.content_type", clip.MediaType()),
	)

	if clip.IsEmpty() {
		err := fmt.Errorf("%w: empty clip", ErrPlaybackFailure)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	playCtx, playID, err := s.supersede(ctx)
	if err != nil {
		logger.DebugContext(ctx, "clip cancelled before playback", "error", err)
		return err
	}

	var errs error
	for _, t := range []tier{s.native, s.buffered, s.streaming} {
		if !t.available() {
			continue
		}
		if playCtx.Err() != nil {
			logger.DebugContext(ctx, "playback superseded before starting", "tier", t.name())
			return nil
		}

		s.setActive(playID, t)
		if err := t.play(playCtx, clip); err != nil {
			logger.WarnContext(ctx, "playback tier failed, falling back", "tier", t.name(), "error", err)
			errs = errors.Join(errs, fmt.Errorf("%s: %w", t.name(), err))
			continue
		}

		span.SetAttributes(attribute.String("audio.tier", t.name()))
		return nil
	}

	if errs == nil {
		errs = ErrTierUnavailable
	}
	err = fmt.Errorf("%w: %w", ErrPlaybackFailure, errs)
	logger.ErrorContext(ctx, "all playback tiers failed", "error", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Stop interrupts the clip that is currently playing, if any.
func (s *Sink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// supersede replaces the current playback. A clip whose ctx is already
// cancelled leaves the current playback alone.
func (s *Sink) supersede(ctx context.Context) (context.Context, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.stopLocked()
	// Playback must outlive the request that produced it, only a newer clip
	// or Stop ends it early.
	playCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelPrev = cancel
	s.playCounter++
	return playCtx, s.playCounter, nil
}

func (s *Sink) setActive(playID uint64, t tier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if playID == s.playCounter {
		s.activeTier = t
	}
}

func (s *Sink) stopLocked() {
	if s.cancelPrev != nil {
		s.cancelPrev()
		s.cancelPrev = nil
	}
	if s.activeTier != nil {
		s.activeTier.stop()
		s.activeTier = nil
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

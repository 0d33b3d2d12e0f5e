package speechtotext

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Session drives one recognition engine. It owns the run lifecycle: every
// run started with Start finishes with exactly one EndCallback or
// ErrorCallback, continuous runs are restarted until Stop is called.
type Session struct {
	engine Engine

	// engineMu serializes engine Start and Stop so a restart can never slip
	// in after Stop has been issued.
	engineMu sync.Mutex

	mu      sync.Mutex
	config  Config
	current *run
	runs    uint64
}

type run struct {
	id      uint64
	ctx     context.Context
	config  Config
	options TranscriptionOptions

	shouldStop bool
	terminated bool
	restarts   int
}

// NewSession creates a session for engine. A nil engine is allowed, every
// Start then fails with ErrUnsupportedEngine.
func NewSession(engine Engine) *Session {
	return &Session{
		engine: engine,
		config: DefaultConfig(),
	}
}

// Configure sets the configuration for subsequent runs.
func (s *Session) Configure(continuous bool, language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Continuous = continuous
	if language != "" {
		s.config.Language = language
	}
}

func (s *Session) SetInterimResults(interim bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.InterimResults = interim
}

func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// IsActive reports whether a run has started and not yet terminated.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && !s.current.terminated
}

// Start begins a new run with a snapshot of the current configuration.
// Failures are delivered through the ErrorCallback, never returned. An
// active run is stopped and ends with its EndCallback before the new run
// starts.
func (s *Session) Start(ctx context.Context, opts ...TranscriptionOption) {
	options := newTranscriptionOptions(opts...)

	s.mu.Lock()
	previous := s.current
	if previous != nil && !previous.terminated {
		previous.shouldStop = true
		previous.terminated = true
	} else {
		previous = nil
	}
	s.runs++
	r := &run{
		id:      s.runs,
		ctx:     context.WithoutCancel(ctx),
		config:  s.config,
		options: options,
	}
	s.current = r
	s.mu.Unlock()

	if previous != nil {
		previous.options.EndCallback()
	}

	ctx, span := tracer.Start(ctx, "start recognition", trace.WithAttributes(
		attribute.Int64("recognition.run", int64(r.id)),
		attribute.String("recognition.language", r.config.Language),
		attribute.Bool("recognition.continuous", r.config.Continuous),
	))
	defer span.End()

	if s.engine == nil {
		s.fail(r, ErrUnsupportedEngine)
		span.SetStatus(codes.Error, ErrUnsupportedEngine.Error())
		return
	}
	span.SetAttributes(attribute.String("recognition.engine", s.engine.Name()))

	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	if previous != nil {
		if err := s.engine.Stop(ctx); err != nil {
			logger.Warn("failed to stop replaced recognition run", "run", previous.id, "error", err)
		}
	}

	if err := s.engine.Prepare(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to prepare engine")
		s.fail(r, err)
		return
	}

	s.mu.Lock()
	stopped := r.shouldStop
	s.mu.Unlock()
	if stopped {
		s.end(r)
		return
	}

	if err := s.engine.Start(ctx, r.config, s.handlers(r)); err != nil {
		err = startFailure(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start engine")
		s.fail(r, err)
		return
	}
	logger.Debug("recognition started", "run", r.id, "engine", s.engine.Name(), "language", r.config.Language)
}

// Stop requests the active run to stop. The run terminates when the engine
// reports its end. No restart happens once Stop has been called.
func (s *Session) Stop(ctx context.Context) {
	s.mu.Lock()
	r := s.current
	if r == nil || r.terminated {
		s.mu.Unlock()
		return
	}
	r.shouldStop = true
	s.mu.Unlock()

	if s.engine == nil {
		return
	}

	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	if err := s.engine.Stop(ctx); err != nil {
		logger.Warn("failed to stop recognition engine", "run", r.id, "error", err)
	}
}

// Close stops the active run and releases engine resources.
func (s *Session) Close(ctx context.Context) error {
	s.Stop(ctx)

	switch e := s.engine.(type) {
	case interface{ Close(context.Context) error }:
		if err := e.Close(ctx); err != nil {
			return fmt.Errorf("failed to close recognition engine: %w", err)
		}
	case interface{ Close() error }:
		if err := e.Close(); err != nil {
			return fmt.Errorf("failed to close recognition engine: %w", err)
		}
	}
	return nil
}

func (s *Session) handlers(r *run) Handlers {
	return Handlers{
		OnResult: func(transcript string, isFinal bool) {
			if !s.isLive(r) {
				return
			}
			r.options.TranscriptCallback(transcript, isFinal)
		},
		OnEnd: func() {
			s.mu.Lock()
			if s.current != r || r.terminated {
				s.mu.Unlock()
				return
			}
			restart := r.config.Continuous && !r.shouldStop
			s.mu.Unlock()

			if restart {
				go s.restart(r)
				return
			}
			s.end(r)
		},
		OnError: func(err error) {
			s.fail(r, err)
		},
	}
}

func (s *Session) restart(r *run) {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	s.mu.Lock()
	if s.current != r || r.terminated {
		s.mu.Unlock()
		return
	}
	if r.shouldStop {
		s.mu.Unlock()
		s.end(r)
		return
	}
	r.restarts++
	s.mu.Unlock()

	if err := s.engine.Start(r.ctx, r.config, s.handlers(r)); err != nil {
		logger.Error("failed to restart continuous recognition", "run", r.id, "error", err)
		s.fail(r, startFailure(err))
		return
	}
	logger.Debug("recognition restarted", "run", r.id, "restarts", r.restarts)
}

func (s *Session) isLive(r *run) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == r && !r.terminated
}

func (s *Session) terminate(r *run) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != r || r.terminated {
		return false
	}
	r.terminated = true
	return true
}

func (s *Session) end(r *run) {
	if s.terminate(r) {
		r.options.EndCallback()
	}
}

func (s *Session) fail(r *run, err error) {
	if !s.terminate(r) {
		return
	}
	if !errors.Is(err, ErrUnsupportedEngine) && !errors.Is(err, ErrPermissionDenied) &&
		!errors.Is(err, ErrStartFailure) && !errors.Is(err, ErrEngine) {
		err = fmt.Errorf("%w: %w", ErrEngine, err)
	}
	r.options.ErrorCallback(err)
}

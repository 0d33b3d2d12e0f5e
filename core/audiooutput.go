package orchestration

import (
	"context"
	"fmt"
	"reflect"

	"github.com/koscakluka/linguaflow/core/audio"
	"github.com/koscakluka/linguaflow/core/playback"
)

// audioOutput is the single playback channel of the orchestrator. Playback
// is best effort: errors are returned for logging and never stop the
// calling flow.
type audioOutput struct {
	output AudioOutput
}

func newAudioOutput(output AudioOutput) *audioOutput {
	audioOutput := audioOutput{}
	audioOutput.set(output)
	return &audioOutput
}

// set replaces the output. Nil and typed-nil outputs are treated as
// unconfigured.
func (a *audioOutput) set(output AudioOutput) {
	if a == nil {
		return
	}
	if isNilAudioOutput(output) {
		a.output = nil
		return
	}
	a.output = output
}

func (a *audioOutput) isConfigured() bool {
	return a != nil && a.output != nil
}

func (a *audioOutput) Play(ctx context.Context, clip audio.Clip) error {
	if !a.isConfigured() {
		return fmt.Errorf("%w: no audio output configured", playback.ErrPlaybackFailure)
	}
	return a.output.Play(ctx, clip)
}

// Stop interrupts the current clip when the output supports it.
func (a *audioOutput) Stop() {
	if !a.isConfigured() {
		return
	}

	switch o := a.output.(type) {
	case interface{ Stop() }:
		o.Stop()
	case interface{ Stop() error }:
		if err := o.Stop(); err != nil {
			logger.Warn("failed to stop audio output", "error", err)
		}
	}
}

func (a *audioOutput) Close() error {
	if !a.isConfigured() {
		return nil
	}

	switch o := a.output.(type) {
	case interface{ Close() error }:
		if err := o.Close(); err != nil {
			return fmt.Errorf("failed to close audio output: %w", err)
		}
	case interface{ Close() }:
		o.Close()
	}
	return nil
}

func isNilAudioOutput(output AudioOutput) bool {
	if output == nil {
		return true
	}

	v := reflect.ValueOf(output)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

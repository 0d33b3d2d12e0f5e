package speechtotext

import (
	"context"

	"github.com/koscakluka/linguaflow/core/platform"
)

// Handlers receive the engine events of one run. Engines must not invoke
// them synchronously from Start or Stop.
type Handlers struct {
	OnResult func(transcript string, isFinal bool)
	OnEnd    func()
	OnError  func(err error)
}

// Engine is the capability set shared by every recognition backend.
type Engine interface {
	Name() string
	// Prepare makes sure the engine can be used: availability and
	// permissions. It is called before every session start, not on restarts.
	Prepare(ctx context.Context) error
	Start(ctx context.Context, config Config, handlers Handlers) error
	Stop(ctx context.Context) error
}

// SelectEngine picks the backend for the runtime once. Native runtimes use
// the native recognizer when one is provided, everything else uses the web
// recognizer. It returns nil when nothing can recognize speech.
func SelectEngine(runtime platform.Runtime, web WebRecognizer, native NativeRecognizer) Engine {
	if runtime.Native && native != nil {
		return NewNativeEngine(native)
	}
	if web != nil {
		return NewWebEngine(web)
	}
	if native != nil {
		return NewNativeEngine(native)
	}
	return nil
}

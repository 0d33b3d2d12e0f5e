package orchestration

import "github.com/koscakluka/linguaflow/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts StartOptions, handler func(events.Event)) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.TranscriptInterim:
			if opts.onTranscript != nil {
				opts.onTranscript(typedEvent.Text, false)
			}
		case events.TranscriptFinal:
			if opts.onTranscript != nil {
				opts.onTranscript(typedEvent.Text, true)
			}
		case events.ListeningEnded:
			if opts.onEnd != nil {
				opts.onEnd()
			}
		case events.ListeningFailed:
			if opts.onError != nil {
				opts.onError(typedEvent.Err)
			}
		}

		if handler != nil {
			handler(event)
		}
	}
}

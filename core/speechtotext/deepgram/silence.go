package deepgram

import (
	"context"
	"time"

	"github.com/koscakluka/linguaflow/core/audio"
	"github.com/koscakluka/linguaflow/internal/utils"
)

// generateSilence keeps the Deepgram stream alive while the microphone is
// quiet: silence frames first so endpointing can fire, keep alives after.
func (r *Recognizer) generateSilence(ctx context.Context, encoding audio.EncodingInfo) {
	type silenceGeneratorState string
	const (
		silenceGeneratorStateWaiting   silenceGeneratorState = "waiting"
		silenceGeneratorStateSilence   silenceGeneratorState = "silence"
		silenceGeneratorStateKeepAlive silenceGeneratorState = "keepAlive"
	)

	const durationMs = 50
	const milisecondsPerSecond = 1000
	ticker := time.NewTicker(durationMs * time.Millisecond)
	defer ticker.Stop()

	chunk := make([]byte, encoding.SampleRate*encoding.Format.ByteSize()*durationMs/milisecondsPerSecond)
	for i := range chunk {
		chunk[i] = encoding.SilenceValue()
	}

	var state = silenceGeneratorStateWaiting
	var firstSilenceTime *time.Time
	var lastKeepAliveTime *time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sinceLastMsg := r.sinceLastMessage()
			switch state {
			case silenceGeneratorStateWaiting:
				if sinceLastMsg > durationMs*time.Millisecond {
					state = silenceGeneratorStateSilence
					firstSilenceTime = utils.Ptr(time.Now())
					continue
				}

			case silenceGeneratorStateSilence:
				if sinceLastMsg < durationMs*time.Millisecond {
					state = silenceGeneratorStateWaiting
					firstSilenceTime = nil
					continue
				}
				if time.Since(*firstSilenceTime) >= time.Second {
					state = silenceGeneratorStateKeepAlive
					lastKeepAliveTime = utils.Ptr(time.Now())
					firstSilenceTime = nil
					continue
				}

				if err := r.sendSilence(chunk); err != nil {
					logger.Warn("failed to send silence", "error", err)
				}

			case silenceGeneratorStateKeepAlive:
				if sinceLastMsg < durationMs*time.Millisecond {
					state = silenceGeneratorStateWaiting
					continue
				}

				if time.Since(*lastKeepAliveTime) >= 5*time.Second {
					lastKeepAliveTime = utils.Ptr(time.Now())
					r.sendKeepAlive()
				}
			}
		}
	}
}

func (r *Recognizer) sinceLastMessage() time.Duration {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	return time.Since(r.lastMsgTs)
}

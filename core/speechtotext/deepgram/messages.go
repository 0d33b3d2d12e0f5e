package deepgram

import (
	"encoding/json"
	"strings"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/koscakluka/linguaflow/core/speechtotext"
)

var closeStreamType = string(api.TypeCloseStreamResponse)

func (r *Recognizer) processMessage(msg []byte) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Warn("failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Warn("failed to unmarshal deepgram results", "error", err)
			return
		}

		transcript := ""
		if len(msgResp.Channel.Alternatives) > 0 {
			transcript = strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
		}

		if msgResp.IsFinal {
			if transcript != "" {
				r.accumulatedTranscript = strings.TrimSpace(r.accumulatedTranscript + " " + transcript)
			}
			if msgResp.SpeechFinal {
				r.onSpeechEnded()
			}
			return
		}

		if transcript != "" {
			interim := strings.TrimSpace(r.accumulatedTranscript + " " + transcript)
			r.emit(speechtotext.NativeEventPartialResults, speechtotext.NativeEventData{Matches: []string{interim}})
		}

	case api.TypeUtteranceEndResponse:
		r.onSpeechEnded()
	}
}

// onSpeechEnded reports the utterance and stops listening, a native
// recognizer handles a single utterance per start.
func (r *Recognizer) onSpeechEnded() {
	if r.resultSent {
		return
	}
	transcript := strings.TrimSpace(r.accumulatedTranscript)
	r.accumulatedTranscript = ""
	if transcript == "" {
		return
	}

	r.resultSent = true
	r.emit(speechtotext.NativeEventResult, speechtotext.NativeEventData{Matches: []string{transcript}})

	if err := r.capture.StopCapture(); err != nil {
		logger.Warn("failed to stop microphone capture", "error", err)
	}
	if err := r.closeStream(); err != nil {
		logger.Warn("failed to close deepgram stream", "error", err)
	}
}

package elevenlabs

import (
	"fmt"
	"strings"

	"github.com/koscakluka/linguaflow/core/texttospeech"
)

const voiceNotFoundSignature = "voice_not_found"

// APIError is a non successful vendor response. StatusCode is the HTTP
// status for REST and the close code for the streaming transport.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("elevenlabs responded with %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Is(target error) bool {
	return target == texttospeech.ErrVoiceNotFound && strings.Contains(e.Body, voiceNotFoundSignature)
}

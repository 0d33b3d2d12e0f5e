package audio

import (
	"mime"
	"strings"
)

const ContentTypeMPEG = "audio/mpeg"

// Clip is a complete, already synthesized audio payload.
type Clip struct {
	Data        []byte
	ContentType string
}

func (c Clip) IsEmpty() bool { return len(c.Data) == 0 }

// MediaType returns the content type without parameters, defaulting to mpeg.
func (c Clip) MediaType() string {
	if c.ContentType == "" {
		return ContentTypeMPEG
	}

	mediaType, _, err := mime.ParseMediaType(c.ContentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(c.ContentType, ";", 2)[0]))
	}
	return mediaType
}

// Extension is the file extension used when the clip is written to disk.
func (c Clip) Extension() string {
	switch c.MediaType() {
	case "audio/wav", "audio/x-wav":
		return "wav"
	case "audio/pcm", "audio/l16":
		return "pcm"
	default:
		return "mp3"
	}
}

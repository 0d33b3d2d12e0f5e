package deepgram

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/koscakluka/linguaflow/core/audio"
)

var ErrUnsupportedEncoding = errors.New("microphone encoding not supported by deepgram")

// streamEncoding is the raw audio format announced in the listen url.
type streamEncoding struct {
	name       string
	sampleRate int
}

func (e streamEncoding) apply(query url.Values) {
	query.Set("encoding", e.name)
	query.Set("sample_rate", strconv.Itoa(e.sampleRate))
}

// streamEncodingFor maps the capture format to deepgram's names. The
// companded formats are telephony formats and only accepted at 8kHz.
func streamEncodingFor(info audio.EncodingInfo) (streamEncoding, error) {
	switch info.SampleRate {
	case 8000, 16000, 24000, 32000, 48000:
	default:
		return streamEncoding{}, fmt.Errorf("%w: sample rate %d", ErrUnsupportedEncoding, info.SampleRate)
	}

	var name string
	switch info.Format {
	case audio.EncodingLinear16:
		return streamEncoding{name: "linear16", sampleRate: info.SampleRate}, nil
	case audio.EncodingALaw:
		name = "alaw"
	case audio.EncodingMulaw:
		name = "mulaw"
	default:
		return streamEncoding{}, fmt.Errorf("%w: format %q", ErrUnsupportedEncoding, info.Format.Name())
	}
	if info.SampleRate != 8000 {
		return streamEncoding{}, fmt.Errorf("%w: %s at %d Hz", ErrUnsupportedEncoding, name, info.SampleRate)
	}
	return streamEncoding{name: name, sampleRate: info.SampleRate}, nil
}

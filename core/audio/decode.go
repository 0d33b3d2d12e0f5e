package audio

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strconv"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces 16-bit little endian stereo
const mp3Channels = 2

// Decoded is a clip converted to raw PCM ready for a buffered output.
type Decoded struct {
	PCM      []byte
	Encoding EncodingInfo
	Duration time.Duration
}

// Decode converts the clip into linear16 PCM. MPEG, WAV and raw L16/PCM
// payloads are supported.
func Decode(clip Clip) (*Decoded, error) {
	if clip.IsEmpty() {
		return nil, fmt.Errorf("empty audio clip")
	}

	switch clip.MediaType() {
	case "audio/mpeg", "audio/mp3":
		return decodeMPEG(clip.Data)
	case "audio/pcm", "audio/l16":
		encoding := pcmEncoding(clip.ContentType)
		pcm := clip.Data[:len(clip.Data)-len(clip.Data)%encoding.BytesPerFrame()]
		return &Decoded{PCM: pcm, Encoding: encoding, Duration: encoding.Duration(len(pcm))}, nil
	case "audio/wav", "audio/x-wav", "audio/wave":
		return decodeWAV(clip.Data)
	default:
		return nil, fmt.Errorf("unsupported audio content type %q", clip.ContentType)
	}
}

// NewStreamDecoder wraps an mpeg stream so it can be read as PCM while it
// is still arriving.
func NewStreamDecoder(r io.Reader) (io.Reader, EncodingInfo, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, EncodingInfo{}, fmt.Errorf("failed to open mp3 stream: %w", err)
	}

	return decoder, EncodingInfo{
		SampleRate: decoder.SampleRate(),
		Channels:   mp3Channels,
		Format:     EncodingLinear16,
	}, nil
}

func decodeMPEG(data []byte) (*Decoded, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to read decoded mp3: %w", err)
	}

	encoding := EncodingInfo{
		SampleRate: decoder.SampleRate(),
		Channels:   mp3Channels,
		Format:     EncodingLinear16,
	}
	return &Decoded{PCM: pcm, Encoding: encoding, Duration: encoding.Duration(len(pcm))}, nil
}

func pcmEncoding(contentType string) EncodingInfo {
	encoding := GetDefaultEncodingInfo()
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return encoding
	}

	if rate, err := strconv.Atoi(params["rate"]); err == nil && rate > 0 {
		encoding.SampleRate = rate
	}
	if channels, err := strconv.Atoi(params["channels"]); err == nil && channels > 0 {
		encoding.Channels = channels
	}
	return encoding
}

package audio

import "time"

const (
	DefaultSampleRate = 16000
	DefaultFormat     = "linear16"
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Channels: 1, Format: encodingFormat(DefaultFormat)}
}

type EncodingInfo struct {
	SampleRate int
	// Channels defaults to mono when zero
	Channels int
	Format   encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

func (e EncodingInfo) ChannelCount() int {
	if e.Channels <= 0 {
		return 1
	}
	return e.Channels
}

// BytesPerFrame is the size of one sample across all channels.
func (e EncodingInfo) BytesPerFrame() int {
	return e.Format.ByteSize() * e.ChannelCount()
}

// Duration reports how long size bytes of audio in this encoding play for.
func (e EncodingInfo) Duration(size int) time.Duration {
	frameSize := e.BytesPerFrame()
	if e.SampleRate <= 0 || frameSize <= 0 {
		return 0
	}

	frames := size / frameSize
	return time.Duration(frames) * time.Second / time.Duration(e.SampleRate)
}

func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case encodingFormat("alaw"):
		return 0x55
	case encodingFormat("mulaw"):
		return 0xFF
	case encodingFormat("linear16"):
		return 0
	}

	return 0
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case encodingFormat("mulaw"), encodingFormat("alaw"):
		return 1
	case encodingFormat("linear16"):
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)

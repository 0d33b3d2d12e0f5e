package audio

import (
	"encoding/binary"
	"fmt"
)

const wavFormatPCM = 1

// decodeWAV reads a RIFF/WAVE payload holding 16-bit integer PCM. The data
// chunk size is ignored when it overruns the payload, streamed WAVs often
// carry a placeholder size.
func decodeWAV(data []byte) (*Decoded, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a wav payload")
	}

	var encoding *EncodingInfo
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8

		switch id {
		case "fmt ":
			if body+16 > len(data) {
				return nil, fmt.Errorf("truncated wav fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			channels := int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate := int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if format != wavFormatPCM || bitsPerSample != 16 {
				return nil, fmt.Errorf("unsupported wav format %d with %d bits per sample", format, bitsPerSample)
			}
			encoding = &EncodingInfo{SampleRate: sampleRate, Channels: channels, Format: EncodingLinear16}

		case "data":
			if encoding == nil {
				return nil, fmt.Errorf("wav data chunk before fmt chunk")
			}
			end := body + size
			if size <= 0 || end > len(data) {
				end = len(data)
			}
			pcm := data[body:end]
			pcm = pcm[:len(pcm)-len(pcm)%encoding.BytesPerFrame()]
			return &Decoded{PCM: pcm, Encoding: *encoding, Duration: encoding.Duration(len(pcm))}, nil
		}

		offset = body + size + size%2
	}

	return nil, fmt.Errorf("wav payload has no data chunk")
}

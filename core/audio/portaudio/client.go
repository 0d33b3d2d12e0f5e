package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/linguaflow/core/audio"
)

// Client plays encoded audio through a blocking PortAudio output stream,
// decoding while it writes.
type Client struct {
	bufferSize int

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	return &Client{bufferSize: bufferSize}, nil
}

func (c *Client) Close() {
	_ = c.Stop()
	portaudio.Terminate()
}

// PlayStream blocks until the stream is fully played, Stop is called or ctx
// is cancelled.
func (c *Client) PlayStream(ctx context.Context, stream io.Reader, contentType string) error {
	pcm, encoding, err := openPCM(stream, contentType)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.mu.Unlock()

	channels := encoding.ChannelCount()
	out := make([]int16, c.bufferSize*channels)
	output, err := portaudio.OpenDefaultStream(0, channels, float64(encoding.SampleRate), c.bufferSize, out)
	if err != nil {
		return fmt.Errorf("failed to open PortAudio stream: %w", err)
	}
	defer output.Close()

	if err := output.Start(); err != nil {
		return fmt.Errorf("failed to start PortAudio stream: %w", err)
	}
	defer output.Stop()

	chunk := make([]byte, len(out)*2)
	for {
		if ctx.Err() != nil {
			return nil
		}

		n, readErr := io.ReadFull(pcm, chunk)
		if n > 0 {
			clear(out)
			if err := binary.Read(bytes.NewReader(chunk[:n-n%2]), binary.LittleEndian, out[:n/2]); err != nil {
				return fmt.Errorf("failed to convert audio chunk: %w", err)
			}
			if err := output.Write(); err != nil {
				return fmt.Errorf("failed to write to PortAudio stream: %w", err)
			}
		}

		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			return nil
		} else if readErr != nil {
			return fmt.Errorf("failed to read audio stream: %w", readErr)
		}
	}
}

func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return nil
}

func openPCM(stream io.Reader, contentType string) (io.Reader, audio.EncodingInfo, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(contentType)
	}

	switch mediaType {
	case "audio/pcm", "audio/l16", "audio/wav", "audio/x-wav":
		decoded, err := audio.Decode(audio.Clip{ContentType: contentType, Data: readAll(stream)})
		if err != nil {
			return nil, audio.EncodingInfo{}, err
		}
		return bytes.NewReader(decoded.PCM), decoded.Encoding, nil
	case "", "audio/mpeg", "audio/mp3":
		return audio.NewStreamDecoder(stream)
	default:
		return nil, audio.EncodingInfo{}, fmt.Errorf("unsupported stream content type %q", contentType)
	}
}

func readAll(r io.Reader) []byte {
	data, _ := io.ReadAll(r)
	return data
}

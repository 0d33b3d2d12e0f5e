package miniaudio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/linguaflow/core/audio"
)

// Client owns one miniaudio context shared by the playback graph and the
// microphone capture.
type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	playbackClient
	captureClient
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {}, //log.Println("malgo:", message) },
	)
	if err != nil {
		return nil, fmt.Errorf("malgo InitContext failed: %w", err)
	}

	client := Client{
		audioContext: audioCtx,
	}
	client.playbackClient.audioContext = audioCtx
	client.captureClient.audioContext = audioCtx

	return &client, nil
}

// Resume makes sure the playback device is running, opening it with the
// default encoding if nothing was played yet.
func (c *Client) Resume(_ context.Context) error {
	return c.playbackClient.Resume(audio.GetDefaultEncodingInfo())
}

// PlayBuffer replaces whatever is queued with the decoded clip.
func (c *Client) PlayBuffer(_ context.Context, decoded *audio.Decoded) error {
	if decoded == nil {
		return fmt.Errorf("nothing to play")
	}
	return c.playbackClient.PlayBuffer(decoded.PCM, decoded.Encoding)
}

func (c *Client) Stop() error {
	c.playbackClient.ClearBuffer()
	return nil
}

// OpenCapture initializes the microphone device. It fails when the host
// denies access to the input device.
func (c *Client) OpenCapture(_ context.Context) error {
	return c.captureClient.Init()
}

func (c *Client) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	return c.captureClient.Start(onAudio)
}

func (c *Client) StopCapture() error {
	return c.captureClient.Stop()
}

func (c *Client) CaptureEncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (c *Client) Close() {
	_ = c.captureClient.Uninit()
	_ = c.playbackClient.Uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}

package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/linguaflow/core/audio"
)

type playbackClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig
	encoding     audio.EncodingInfo

	leftoverAudio []byte

	mu      sync.Mutex
	audioMu sync.Mutex
}

func (c *playbackClient) init(encoding audio.EncodingInfo) error {
	if encoding.Format != audio.EncodingLinear16 {
		return fmt.Errorf("unsupported playback format %q", encoding.Format.Name())
	}

	sampleRate := uint32(encoding.SampleRate)
	channels := encoding.ChannelCount()
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = sampleRate
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	c.config.Periods = 4

	var err error
	if c.device, err = malgo.InitDevice(
		c.audioContext.Context,
		c.config,
		malgo.DeviceCallbacks{Data: c.processAudio(bytesPerFrame)},
	); err != nil {
		return err
	}
	c.encoding = encoding

	return nil
}

// Resume starts the device, (re)opening it when the encoding changed.
func (c *playbackClient) Resume(encoding audio.EncodingInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.audioContext == nil {
		return fmt.Errorf("audio context not initialized")
	}

	if c.device == nil {
		if err := c.init(encoding); err != nil {
			return fmt.Errorf("failed to initialize playback device: %w", err)
		}
	}

	if c.device.IsStarted() {
		return nil
	}
	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	return nil
}

func (c *playbackClient) PlayBuffer(pcm []byte, encoding audio.EncodingInfo) error {
	c.mu.Lock()
	if c.device != nil && c.encoding != encoding {
		c.device.Uninit()
		c.device = nil
	}
	c.mu.Unlock()

	if err := c.Resume(encoding); err != nil {
		return err
	}

	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	c.leftoverAudio = append(make([]byte, 0, len(pcm)), pcm...)
	return nil
}

func (c *playbackClient) ClearBuffer() {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	c.leftoverAudio = make([]byte, 0)
}

func (c *playbackClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return nil
	}

	c.device.Uninit()
	c.device = nil

	return nil
}

func (c *playbackClient) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		c.audioMu.Lock()
		defer c.audioMu.Unlock()

		if len(c.leftoverAudio) == 0 {
			return
		}

		if len(c.leftoverAudio) < need {
			_ = copy(pOutput, c.leftoverAudio)
			c.leftoverAudio = nil
			return
		}

		_ = copy(pOutput, c.leftoverAudio[:need])
		c.leftoverAudio = c.leftoverAudio[need:]
	}
}

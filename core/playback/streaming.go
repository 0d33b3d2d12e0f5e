package playback

import (
	"bytes"
	"context"
	"fmt"

	"github.com/koscakluka/linguaflow/core/audio"
)

type streamingTier struct {
	element MediaElement
}

func (t *streamingTier) name() string    { return "streaming" }
func (t *streamingTier) available() bool { return t.element != nil }

func (t *streamingTier) play(ctx context.Context, clip audio.Clip) error {
	contentType := clip.ContentType
	if contentType == "" {
		contentType = audio.ContentTypeMPEG
	}

	if err := t.element.PlayStream(ctx, bytes.NewReader(clip.Data), contentType); err != nil {
		return fmt.Errorf("failed to play stream: %w", err)
	}
	return nil
}

func (t *streamingTier) stop() {
	if t.element != nil {
		_ = t.element.Stop()
	}
}

package playback

import (
	"context"
	"fmt"

	"github.com/koscakluka/linguaflow/core/audio"
)

type bufferedTier struct {
	graph AudioGraph
}

func (t *bufferedTier) name() string    { return "buffered" }
func (t *bufferedTier) available() bool { return t.graph != nil }

func (t *bufferedTier) play(ctx context.Context, clip audio.Clip) error {
	if err := t.graph.Resume(ctx); err != nil {
		return fmt.Errorf("failed to resume audio graph: %w", err)
	}

	decoded, err := audio.Decode(clip)
	if err != nil {
		return fmt.Errorf("failed to decode clip: %w", err)
	}

	if ctx.Err() != nil {
		return nil
	}

	if err := t.graph.PlayBuffer(ctx, decoded); err != nil {
		return fmt.Errorf("failed to play buffer: %w", err)
	}
	return nil
}

func (t *bufferedTier) stop() {
	if t.graph != nil {
		_ = t.graph.Stop() // best effort, the next clip replaces the buffer anyway
	}
}

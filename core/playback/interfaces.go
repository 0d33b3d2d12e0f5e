package playback

import (
	"context"
	"io"

	"github.com/koscakluka/linguaflow/core/audio"
)

// NativePlayer is the native mobile audio plugin. Assets are addressed by an
// opaque id chosen by the caller.
type NativePlayer interface {
	Preload(ctx context.Context, assetID string, uri string) error
	Play(ctx context.Context, assetID string) error
	Stop(ctx context.Context, assetID string) error
	Unload(ctx context.Context, assetID string) error
}

// AudioGraph plays fully decoded buffers. Resume wakes a suspended output
// before anything is queued.
type AudioGraph interface {
	Resume(ctx context.Context) error
	PlayBuffer(ctx context.Context, decoded *audio.Decoded) error
	Stop() error
}

// MediaElement plays an encoded stream as it is read, it is the least
// capable output and is only used when nothing better worked.
type MediaElement interface {
	PlayStream(ctx context.Context, stream io.Reader, contentType string) error
	Stop() error
}

package playback

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/koscakluka/linguaflow/core/audio"
	"github.com/spf13/afero"
)

// native players report completion unreliably, so the asset is kept alive a
// little longer than the decoded audio
const defaultPlaybackSlack = 500 * time.Millisecond

type nativeTier struct {
	enabled  bool
	player   NativePlayer
	fs       afero.Fs
	cacheDir string

	slack time.Duration
	sleep func(context.Context, time.Duration) error
}

func (t *nativeTier) name() string { return "native" }

func (t *nativeTier) available() bool {
	return t.enabled && t.player != nil && t.fs != nil
}

// play hands the clip to the native player through a transient cache file
// and holds on to it until the decoded duration has passed.
func (t *nativeTier) play(ctx context.Context, clip audio.Clip) error {
	decoded, err := audio.Decode(clip)
	if err != nil {
		return fmt.Errorf("failed to determine clip duration: %w", err)
	}

	assetID := "tts-" + uuid.NewString()
	filePath := filepath.Join(t.cacheDir, assetID+"."+clip.Extension())

	// Cleanup has to happen even when the playback was superseded.
	cleanupCtx := context.WithoutCancel(ctx)

	if err := afero.WriteFile(t.fs, filePath, clip.Data, 0o600); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	defer func() {
		if removeErr := t.fs.Remove(filePath); removeErr != nil {
			logger.DebugContext(cleanupCtx, "failed to remove cache file", "path", filePath, "error", removeErr)
		}
	}()

	if err := t.player.Preload(ctx, assetID, fileURI(filePath)); err != nil {
		return fmt.Errorf("failed to preload asset: %w", err)
	}
	defer func() {
		if unloadErr := t.player.Unload(cleanupCtx, assetID); unloadErr != nil {
			logger.DebugContext(cleanupCtx, "failed to unload asset", "asset_id", assetID, "error", unloadErr)
		}
	}()

	if err := t.player.Play(ctx, assetID); err != nil {
		return fmt.Errorf("failed to play asset: %w", err)
	}

	if err := t.sleep(ctx, decoded.Duration+t.slack); err != nil {
		if errors.Is(err, context.Canceled) {
			// superseded by a newer clip
			if stopErr := t.player.Stop(cleanupCtx, assetID); stopErr != nil {
				logger.DebugContext(cleanupCtx, "failed to stop superseded asset", "asset_id", assetID, "error", stopErr)
			}
			return nil
		}
		return err
	}

	return nil
}

func (t *nativeTier) stop() {}

func fileURI(filePath string) string {
	p := filepath.ToSlash(filePath)
	if !path.IsAbs(p) {
		p = "/" + p
	}
	return "file://" + p
}

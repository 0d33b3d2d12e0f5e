// Package voices picks on-device synthesis voices and the pacing they are
// spoken with.
package voices

import (
	"context"
	"strings"
	"sync"

	"github.com/koscakluka/linguaflow/internal/langtag"
)

// Voice is a platform synthesis voice.
type Voice struct {
	ID       string
	Name     string
	Language string
	// Default marks the platform's default voice.
	Default bool
}

// Source is the platform voice list. Voices may be empty until the platform
// has loaded them, it then signals through OnVoicesChanged.
type Source interface {
	Voices(ctx context.Context) ([]Voice, error)
	OnVoicesChanged(callback func())
}

var premiumMarkers = []string{"google", "microsoft", "apple", "siri", "premium", "enhanced", "natural", "neural"}

type Catalog struct {
	source Source

	mu         sync.RWMutex
	voices     []Voice
	warmed     bool
	ready      chan struct{}
	subscribed bool
}

func NewCatalog(source Source) *Catalog {
	return &Catalog{
		source: source,
		ready:  make(chan struct{}),
	}
}

// Refresh reloads the voice list. When the platform has not loaded its
// voices yet the catalog subscribes, once, to the platform change signal.
func (c *Catalog) Refresh(ctx context.Context) error {
	if c.source == nil {
		return nil
	}

	voices, err := c.source.Voices(ctx)
	if err != nil {
		return err
	}
	c.store(voices)

	c.mu.Lock()
	subscribe := !c.warmed && !c.subscribed
	if subscribe {
		c.subscribed = true
	}
	c.mu.Unlock()

	if subscribe {
		c.source.OnVoicesChanged(func() {
			voices, err := c.source.Voices(context.Background())
			if err != nil {
				logger.Warn("failed to reload voices", "error", err)
				return
			}
			c.store(voices)
		})
	}
	return nil
}

func (c *Catalog) store(voices []Voice) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(voices) == 0 && c.warmed {
		return
	}
	c.voices = append([]Voice(nil), voices...)
	if len(voices) > 0 && !c.warmed {
		c.warmed = true
		close(c.ready)
		logger.Debug("voice catalog warmed", "voices", len(voices))
	}
}

// Warmed reports whether a non-empty voice list has been observed.
func (c *Catalog) Warmed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.warmed
}

// Ready is closed once the catalog is warmed.
func (c *Catalog) Ready() <-chan struct{} {
	return c.ready
}

func (c *Catalog) Voices() []Voice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Voice(nil), c.voices...)
}

// Select returns the best voice for language. Language correctness comes
// first (exact tag, then primary subtag, premium voices preferred), then any
// premium voice, then the platform default, then the first voice.
func (c *Catalog) Select(language string) (Voice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return selectVoice(c.voices, language)
}

func selectVoice(voices []Voice, language string) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}

	var matches []Voice
	for _, voice := range voices {
		if langtag.Equal(voice.Language, language) {
			matches = append(matches, voice)
		}
	}
	if len(matches) == 0 {
		primary := langtag.Primary(language)
		for _, voice := range voices {
			if langtag.Primary(voice.Language) == primary {
				matches = append(matches, voice)
			}
		}
	}
	if len(matches) > 0 {
		if voice, ok := firstPremium(matches); ok {
			return voice, true
		}
		return matches[0], true
	}

	if voice, ok := firstPremium(voices); ok {
		return voice, true
	}
	for _, voice := range voices {
		if voice.Default {
			return voice, true
		}
	}
	return voices[0], true
}

func firstPremium(voices []Voice) (Voice, bool) {
	for _, voice := range voices {
		if IsPremium(voice) {
			return voice, true
		}
	}
	return Voice{}, false
}

// IsPremium reports whether the voice name carries a known vendor or
// quality marker.
func IsPremium(voice Voice) bool {
	name := strings.ToLower(voice.Name)
	for _, marker := range premiumMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

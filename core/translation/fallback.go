package translation

import (
	"context"
	"errors"
	"strings"
)

const (
	SourceDictionary  = "dictionary"
	SourcePlaceholder = "placeholder"
)

type Result struct {
	Text string
	From string
	To   string
	// Source names what produced Text: a backend name, SourceDictionary or
	// SourcePlaceholder.
	Source string
	// Degraded is set when Text did not come from the primary backend.
	Degraded bool
	// Err is the primary backend failure behind a degraded result.
	Err error
}

// Fallback tries the primary backend, then the phrase dictionary, and
// finally returns a placeholder. It never fails unless ctx is done.
type Fallback struct {
	primary     Translator
	primaryName string
	dictionary  *Dictionary
}

func NewFallback(name string, primary Translator) *Fallback {
	return &Fallback{
		primary:     primary,
		primaryName: name,
		dictionary:  NewDictionary(),
	}
}

func (f *Fallback) Translate(ctx context.Context, text, from, to string) (Result, error) {
	result := Result{From: from, To: to}
	text = strings.TrimSpace(text)
	if text == "" {
		return result, nil
	}

	if f.primary != nil {
		translated, err := f.primary.Translate(ctx, text, from, to)
		if err == nil {
			result.Text = translated
			result.Source = f.primaryName
			return result, nil
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if !errors.Is(err, ErrNoTranslation) {
			logger.Warn("translation backend failed", "backend", f.primaryName, "error", err)
		}
		result.Err = err
		result.Degraded = true
	}

	if translated, err := f.dictionary.Translate(ctx, text, from, to); err == nil {
		result.Text = translated
		result.Source = SourceDictionary
		return result, nil
	}

	result.Text = Placeholder(text, to)
	result.Source = SourcePlaceholder
	result.Degraded = true
	return result, nil
}

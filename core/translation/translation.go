// Package translation turns recognized text into the target language. Remote
// backends are wrapped by Fallback so the caller always gets something to
// show and speak.
package translation

import (
	"context"
	"errors"

	"github.com/koscakluka/linguaflow/internal/langtag"
)

var (
	// ErrNoTranslation means the backend had no translation for the text.
	ErrNoTranslation = errors.New("no translation available")
	ErrBackend       = errors.New("translation backend failed")
)

type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

type Language struct {
	Code string
	Name string
}

// Languages offered for selection, in display order.
var Languages = []Language{
	{Code: "en-US", Name: "English"},
	{Code: "es-ES", Name: "Spanish"},
	{Code: "fr-FR", Name: "French"},
	{Code: "de-DE", Name: "German"},
	{Code: "ja-JP", Name: "Japanese"},
}

// LanguageName returns the display name of code, matching on the primary
// subtag when the exact tag is not listed.
func LanguageName(code string) string {
	for _, language := range Languages {
		if langtag.Equal(language.Code, code) {
			return language.Name
		}
	}
	for _, language := range Languages {
		if langtag.Primary(language.Code) == langtag.Primary(code) {
			return language.Name
		}
	}
	return code
}

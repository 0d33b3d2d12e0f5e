package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/koscakluka/linguaflow/internal/langtag"
)

// Dictionary translates a handful of common phrases offline.
type Dictionary struct {
	phrases map[string]map[string]string
}

var commonPhrases = map[string]map[string]string{
	"hello":        {"es": "Hola", "fr": "Bonjour", "de": "Hallo", "ja": "こんにちは"},
	"how are you":  {"es": "¿Cómo estás?", "fr": "Comment allez-vous?", "de": "Wie geht es dir?", "ja": "お元気ですか"},
	"thank you":    {"es": "Gracias", "fr": "Merci", "de": "Danke", "ja": "ありがとう"},
	"good morning": {"es": "Buenos días", "fr": "Bonjour", "de": "Guten Morgen", "ja": "おはようございます"},
}

func NewDictionary() *Dictionary {
	d := &Dictionary{phrases: make(map[string]map[string]string, len(commonPhrases))}
	for phrase, translations := range commonPhrases {
		for to, translation := range translations {
			d.Add(phrase, to, translation)
		}
	}
	return d
}

// Add registers a phrase translation, keyed by the target primary subtag.
func (d *Dictionary) Add(phrase, to, translation string) {
	key := normalizePhrase(phrase)
	if d.phrases[key] == nil {
		d.phrases[key] = map[string]string{}
	}
	d.phrases[key][langtag.Primary(to)] = translation
}

func (d *Dictionary) Translate(_ context.Context, text, _, to string) (string, error) {
	if translated, ok := d.phrases[normalizePhrase(text)][langtag.Primary(to)]; ok {
		return translated, nil
	}
	return "", ErrNoTranslation
}

// Placeholder marks text as untranslated for the target language.
func Placeholder(text, to string) string {
	return fmt.Sprintf("[Translated to %s]: %s", LanguageName(to), text)
}

func normalizePhrase(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

package translation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"
)

type translatorStub struct {
	text  string
	err   error
	calls int
}

func (s *translatorStub) Translate(context.Context, string, string, string) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestDictionary(t *testing.T) {
	is := is.New(t)
	d := NewDictionary()

	got, err := d.Translate(context.Background(), "  Thank You ", "en-US", "ja-JP")
	is.NoErr(err)
	is.Equal(got, "ありがとう") // phrases match case-insensitively and by primary subtag

	_, err = d.Translate(context.Background(), "see you later", "en-US", "es-ES")
	is.True(errors.Is(err, ErrNoTranslation)) // unknown phrase

	d.Add("See you later", "es", "Hasta luego")
	got, err = d.Translate(context.Background(), "see you later", "en-US", "es-MX")
	is.NoErr(err)
	is.Equal(got, "Hasta luego")

	_, err = NewDictionary().Translate(context.Background(), "see you later", "en-US", "es-ES")
	is.True(errors.Is(err, ErrNoTranslation)) // additions do not leak between dictionaries
}

func TestPlaceholderAndLanguageName(t *testing.T) {
	is := is.New(t)

	is.Equal(Placeholder("where is the station", "de-DE"), "[Translated to German]: where is the station")
	is.Equal(LanguageName("ja"), "Japanese") // primary subtag match
	is.Equal(LanguageName("sv-SE"), "sv-SE") // unknown codes are shown as is
}

func TestFallback(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	primary := &translatorStub{text: "Hola amigo"}
	result, err := NewFallback("remote", primary).Translate(ctx, "hello friend", "en-US", "es-ES")
	is.NoErr(err)
	is.Equal(result.Text, "Hola amigo")
	is.Equal(result.Source, "remote")
	is.True(!result.Degraded)

	failing := &translatorStub{err: ErrBackend}
	result, err = NewFallback("remote", failing).Translate(ctx, "good morning", "en-US", "de-DE")
	is.NoErr(err)
	is.Equal(result.Text, "Guten Morgen")
	is.Equal(result.Source, "dictionary")
	is.True(result.Degraded)
	is.True(errors.Is(result.Err, ErrBackend))

	result, err = NewFallback("remote", failing).Translate(ctx, "where is the station", "en-US", "fr-FR")
	is.NoErr(err)
	is.Equal(result.Text, "[Translated to French]: where is the station")
	is.Equal(result.Source, "placeholder")

	result, err = NewFallback("", nil).Translate(ctx, "hello", "en-US", "fr-FR")
	is.NoErr(err)
	is.Equal(result.Text, "Bonjour")
	is.True(!result.Degraded) // dictionary is the primary source without a backend

	empty := &translatorStub{}
	result, err = NewFallback("remote", empty).Translate(ctx, "   ", "en-US", "fr-FR")
	is.NoErr(err)
	is.Equal(result.Text, "")
	is.Equal(empty.calls, 0) // blank text is never sent
}

func TestMyMemory(t *testing.T) {
	is := is.New(t)

	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]any{
			"responseData":   map[string]any{"translatedText": "Bonjour &amp; bienvenue"},
			"responseStatus": 200,
		})
	}))
	defer server.Close()

	translator := NewMyMemory(WithEndpoint(server.URL), WithEmail("dev@example.com"))
	got, err := translator.Translate(context.Background(), "Hello & welcome", "en-US", "fr-FR")
	is.NoErr(err)
	is.Equal(got, "Bonjour & bienvenue")
	is.Equal(gotQuery["langpair"][0], "en|fr")
	is.Equal(gotQuery["q"][0], "Hello & welcome")
	is.Equal(gotQuery["de"][0], "dev@example.com")
}

func TestMyMemoryQuotaError(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"responseData":    map[string]any{"translatedText": "MYMEMORY WARNING"},
			"responseStatus":  "429",
			"responseDetails": "quota exceeded",
		})
	}))
	defer server.Close()

	_, err := NewMyMemory(WithEndpoint(server.URL)).Translate(context.Background(), "hi", "en", "es")
	is.True(errors.Is(err, ErrBackend))
}

func TestOpenAI(t *testing.T) {
	is := is.New(t)

	var gotRequest struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotRequest)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   gotRequest.Model,
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": " Danke schön \n"}}},
		})
	}))
	defer server.Close()

	translator := NewOpenAI("test-key", "", WithOpenAIBaseURL(server.URL+"/v1"))
	got, err := translator.Translate(context.Background(), "thank you very much", "en-US", "de-DE")
	is.NoErr(err)
	is.Equal(got, "Danke schön")
	is.Equal(gotRequest.Model, DefaultOpenAIModel)
	is.Equal(len(gotRequest.Messages), 2)
	is.Equal(gotRequest.Messages[1].Content, "thank you very much")
}

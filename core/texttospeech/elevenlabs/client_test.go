package elevenlabs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/linguaflow/core/texttospeech"
)

type recordedRequest struct {
	voice string
	body  map[string]any
	query string
	key   string
}

type restServer struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(n int, r recordedRequest) (int, string)
}

func (s *restServer) handler(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/v1/text-to-speech/"), "/")
	var body map[string]any
	data, _ := io.ReadAll(r.Body)
	json.Unmarshal(data, &body)

	rec := recordedRequest{voice: parts[0], body: body, query: r.URL.RawQuery, key: r.Header.Get("xi-api-key")}
	s.mu.Lock()
	s.requests = append(s.requests, rec)
	n := len(s.requests)
	s.mu.Unlock()

	status, payload := s.respond(n, rec)
	if status == http.StatusOK {
		w.Header().Set("Content-Type", "audio/mpeg")
	}
	w.WriteHeader(status)
	io.WriteString(w, payload)
}

func newTestClient(t *testing.T, s *restServer, opts ...ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(s.handler))
	t.Cleanup(server.Close)

	opts = append([]ClientOption{WithBaseURL(server.URL), WithStreamingFallback(false)}, opts...)
	client, err := NewClient("test-key", opts...)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestVoiceForUsesOverridesAndDefault(t *testing.T) {
	client, _ := NewClient("key", WithVoices(map[string]string{"es": "custom-es", "SV": "custom-sv"}))

	if got := client.VoiceFor("es-ES"); got != "custom-es" {
		t.Fatalf("expected override for es, got %s", got)
	}
	if got := client.VoiceFor("sv-SE"); got != "custom-sv" {
		t.Fatalf("expected override for sv, got %s", got)
	}
	if got := client.VoiceFor("ja-JP"); got != builtinVoices["ja"] {
		t.Fatalf("expected built-in ja voice, got %s", got)
	}
	if got := client.VoiceFor("tl-PH"); got != DefaultVoice {
		t.Fatalf("expected default voice, got %s", got)
	}
}

func TestSynthesizeFirstAttempt(t *testing.T) {
	s := &restServer{respond: func(int, recordedRequest) (int, string) { return http.StatusOK, "mp3-bytes" }}
	client := newTestClient(t, s)

	clip, err := client.Synthesize(context.Background(), "Hola", "es-ES")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(clip.Data) != "mp3-bytes" || clip.ContentType != "audio/mpeg" {
		t.Fatalf("expected mp3 clip, got %q %s", clip.Data, clip.ContentType)
	}

	if len(s.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(s.requests))
	}
	req := s.requests[0]
	if req.voice != builtinVoices["es"] || req.key != "test-key" {
		t.Fatalf("expected es voice with api key, got %+v", req)
	}
	if req.body["model_id"] != DefaultPrimaryModel || req.body["language_code"] != "es" || req.body["text"] != "Hola" {
		t.Fatalf("expected turbo request with language code, got %v", req.body)
	}
	if !strings.Contains(req.query, "output_format=mp3_44100_128") {
		t.Fatalf("expected output format query, got %s", req.query)
	}
	settings, _ := req.body["voice_settings"].(map[string]any)
	if settings["stability"] != 0.35 || settings["similarity_boost"] != 0.9 || settings["style"] != 0.55 || settings["use_speaker_boost"] != true {
		t.Fatalf("expected default voice settings, got %v", settings)
	}
}

func TestSynthesizeVoiceNotFoundRetriesDefaultVoiceOnce(t *testing.T) {
	s := &restServer{respond: func(n int, _ recordedRequest) (int, string) {
		if n == 1 {
			return http.StatusNotFound, `{"detail":{"status":"voice_not_found","message":"A voice with that id does not exist"}}`
		}
		return http.StatusOK, "default-voice-audio"
	}}
	client := newTestClient(t, s)

	clip, err := client.Synthesize(context.Background(), "Bonjour", "fr-FR")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(clip.Data) != "default-voice-audio" {
		t.Fatalf("expected default voice audio, got %q", clip.Data)
	}
	if len(s.requests) != 2 {
		t.Fatalf("expected exactly two requests, got %d", len(s.requests))
	}
	second := s.requests[1]
	if second.voice != DefaultVoice || second.body["model_id"] != DefaultPrimaryModel || second.body["language_code"] != "fr" {
		t.Fatalf("expected default voice retry with turbo and language code, got %+v", second)
	}
}

func TestSynthesizeDefaultVoiceFailureIsFinal(t *testing.T) {
	s := &restServer{respond: func(n int, _ recordedRequest) (int, string) {
		if n == 1 {
			return http.StatusNotFound, `voice_not_found`
		}
		return http.StatusInternalServerError, "boom"
	}}
	client := newTestClient(t, s)

	_, err := client.Synthesize(context.Background(), "Hallo", "de-DE")
	if !errors.Is(err, texttospeech.ErrSynthesisFailure) {
		t.Fatalf("expected synthesis failure, got %v", err)
	}
	if len(s.requests) != 2 {
		t.Fatalf("expected no multilingual attempt after default voice, got %d requests", len(s.requests))
	}
}

func TestSynthesizeGenericFailureRetriesMultilingualWithoutLanguage(t *testing.T) {
	s := &restServer{respond: func(n int, _ recordedRequest) (int, string) {
		if n == 1 {
			return http.StatusUnprocessableEntity, `{"detail":"unsupported language"}`
		}
		return http.StatusOK, "multilingual-audio"
	}}
	client := newTestClient(t, s)

	clip, err := client.Synthesize(context.Background(), "Hello", "he-IL")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(clip.Data) != "multilingual-audio" {
		t.Fatalf("expected multilingual audio, got %q", clip.Data)
	}
	if len(s.requests) != 2 {
		t.Fatalf("expected two requests, got %d", len(s.requests))
	}
	second := s.requests[1]
	if second.voice != builtinVoices["he"] || second.body["model_id"] != DefaultFallbackModel {
		t.Fatalf("expected primary voice with multilingual model, got %+v", second)
	}
	if _, ok := second.body["language_code"]; ok {
		t.Fatalf("expected no language code on multilingual retry, got %v", second.body)
	}
}

func TestSynthesizeVoiceNotFoundOnDefaultVoiceUsesMultilingual(t *testing.T) {
	s := &restServer{respond: func(int, recordedRequest) (int, string) {
		return http.StatusNotFound, "voice_not_found"
	}}
	client := newTestClient(t, s)

	_, err := client.Synthesize(context.Background(), "Hello", "en-US")
	if !errors.Is(err, texttospeech.ErrSynthesisFailure) || !errors.Is(err, texttospeech.ErrVoiceNotFound) {
		t.Fatalf("expected synthesis failure caused by missing voice, got %v", err)
	}
	if len(s.requests) != 2 {
		t.Fatalf("expected two requests, got %d", len(s.requests))
	}
	if s.requests[1].body["model_id"] != DefaultFallbackModel {
		t.Fatalf("expected multilingual retry, got %v", s.requests[1].body)
	}
}

func TestSynthesizeNeverExceedsThreeRequestsPerTransport(t *testing.T) {
	s := &restServer{respond: func(int, recordedRequest) (int, string) {
		return http.StatusInternalServerError, "down"
	}}
	client := newTestClient(t, s)

	if _, err := client.Synthesize(context.Background(), "Hi", "ja-JP"); err == nil {
		t.Fatalf("expected error")
	}
	if len(s.requests) > 3 {
		t.Fatalf("expected at most three requests, got %d", len(s.requests))
	}
}

func TestSynthesizeFallsBackToStreamingTransport(t *testing.T) {
	rest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer rest.Close()

	var gotQuery string
	var gotMessages []streamingTextMessage
	upgrader := websocket.Upgrader{}
	stream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			var msg streamingTextMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			gotMessages = append(gotMessages, msg)
			if msg.Text == "" {
				break
			}
		}
		conn.WriteJSON(map[string]any{"audio": base64.StdEncoding.EncodeToString([]byte("chunk-1 "))})
		conn.WriteJSON(map[string]any{"audio": base64.StdEncoding.EncodeToString([]byte("chunk-2"))})
		conn.WriteJSON(map[string]any{"isFinal": true})
	}))
	defer stream.Close()

	client, err := NewClient("test-key",
		WithBaseURL(rest.URL),
		WithStreamURL("ws"+strings.TrimPrefix(stream.URL, "http")),
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	clip, err := client.Synthesize(context.Background(), "Guten Tag", "de-DE")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(clip.Data) != "chunk-1 chunk-2" {
		t.Fatalf("expected concatenated stream audio, got %q", clip.Data)
	}
	if !strings.Contains(gotQuery, "model_id="+DefaultPrimaryModel) || !strings.Contains(gotQuery, "language_code=de") {
		t.Fatalf("expected turbo model with language code, got %s", gotQuery)
	}
	if len(gotMessages) != 3 || gotMessages[0].VoiceSettings == nil || gotMessages[1].Text != "Guten Tag " {
		t.Fatalf("expected settings, text and end of input messages, got %+v", gotMessages)
	}
}

func TestAPIErrorVoiceNotFound(t *testing.T) {
	if !errors.Is(&APIError{StatusCode: 404, Body: `{"status":"voice_not_found"}`}, texttospeech.ErrVoiceNotFound) {
		t.Fatalf("expected voice_not_found body to match ErrVoiceNotFound")
	}
	if errors.Is(&APIError{StatusCode: 500, Body: "server error"}, texttospeech.ErrVoiceNotFound) {
		t.Fatalf("expected generic error not to match ErrVoiceNotFound")
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"mp3_44100_128": "audio/mpeg",
		"pcm_24000":     "audio/pcm;rate=24000;channels=1",
		"ulaw_8000":     "audio/basic",
	}
	for format, want := range tests {
		if got := contentTypeFor(format); got != want {
			t.Fatalf("expected %s for %s, got %s", want, format, got)
		}
	}
}

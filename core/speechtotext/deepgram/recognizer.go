// Package deepgram recognizes speech on desktops by streaming microphone
// audio to Deepgram. It exposes the native recognizer shape so the session
// treats it like a mobile recognition plugin: one utterance per start.
package deepgram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/linguaflow/core/audio"
	"github.com/koscakluka/linguaflow/core/speechtotext"
)

const (
	defaultListenURL = "wss://api.deepgram.com/v1/listen"
	defaultModel     = "nova-3"
)

// AudioCapture is the microphone the recognizer streams from.
type AudioCapture interface {
	OpenCapture(ctx context.Context) error
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
	CaptureEncodingInfo() audio.EncodingInfo
}

type Recognizer struct {
	apiKey    string
	model     string
	listenURL string
	dialer    *websocket.Dialer
	capture   AudioCapture

	listenersMu sync.Mutex
	listeners   map[speechtotext.NativeEvent]map[uint64]func(speechtotext.NativeEventData)
	nextID      uint64

	captureMu     sync.Mutex
	captureOpened bool

	connMu    sync.Mutex
	conn      *websocket.Conn
	lastMsgTs time.Time
	cancel    context.CancelFunc

	accumulatedTranscript string
	resultSent            bool
}

type RecognizerOption func(*Recognizer)

func WithModel(model string) RecognizerOption {
	return func(r *Recognizer) {
		if model != "" {
			r.model = model
		}
	}
}

func WithListenURL(listenURL string) RecognizerOption {
	return func(r *Recognizer) {
		if listenURL != "" {
			r.listenURL = listenURL
		}
	}
}

func WithDialer(dialer *websocket.Dialer) RecognizerOption {
	return func(r *Recognizer) {
		r.dialer = dialer
	}
}

func NewRecognizer(apiKey string, capture AudioCapture, opts ...RecognizerOption) *Recognizer {
	r := &Recognizer{
		apiKey:    apiKey,
		model:     defaultModel,
		listenURL: defaultListenURL,
		dialer:    websocket.DefaultDialer,
		capture:   capture,
		listeners: map[speechtotext.NativeEvent]map[uint64]func(speechtotext.NativeEventData){},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recognizer) Available(context.Context) (bool, error) {
	return r.apiKey != "" && r.capture != nil, nil
}

// CheckPermissions reports granted once the microphone has been opened.
func (r *Recognizer) CheckPermissions(context.Context) (speechtotext.PermissionState, error) {
	r.captureMu.Lock()
	defer r.captureMu.Unlock()
	if r.captureOpened {
		return speechtotext.PermissionGranted, nil
	}
	return speechtotext.PermissionPrompt, nil
}

// RequestPermissions opens the microphone, desktops have no separate
// permission prompt so a failed open counts as a denial.
func (r *Recognizer) RequestPermissions(ctx context.Context) (speechtotext.PermissionState, error) {
	r.captureMu.Lock()
	defer r.captureMu.Unlock()
	if r.captureOpened {
		return speechtotext.PermissionGranted, nil
	}
	if err := r.capture.OpenCapture(ctx); err != nil {
		logger.Warn("failed to open microphone", "error", err)
		return speechtotext.PermissionDenied, nil
	}
	r.captureOpened = true
	return speechtotext.PermissionGranted, nil
}

func (r *Recognizer) AddListener(_ context.Context, event speechtotext.NativeEvent, listener func(speechtotext.NativeEventData)) (speechtotext.ListenerHandle, error) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()

	r.nextID++
	id := r.nextID
	if r.listeners[event] == nil {
		r.listeners[event] = map[uint64]func(speechtotext.NativeEventData){}
	}
	r.listeners[event][id] = listener
	return &listenerHandle{recognizer: r, event: event, id: id}, nil
}

type listenerHandle struct {
	recognizer *Recognizer
	event      speechtotext.NativeEvent
	id         uint64
}

func (h *listenerHandle) Remove(context.Context) error {
	h.recognizer.listenersMu.Lock()
	defer h.recognizer.listenersMu.Unlock()
	delete(h.recognizer.listeners[h.event], h.id)
	return nil
}

func (r *Recognizer) emit(event speechtotext.NativeEvent, data speechtotext.NativeEventData) {
	r.listenersMu.Lock()
	listeners := make([]func(speechtotext.NativeEventData), 0, len(r.listeners[event]))
	for _, listener := range r.listeners[event] {
		listeners = append(listeners, listener)
	}
	r.listenersMu.Unlock()

	for _, listener := range listeners {
		listener(data)
	}
}

func (r *Recognizer) Start(ctx context.Context, options speechtotext.NativeStartOptions) error {
	r.connMu.Lock()
	if r.conn != nil {
		r.connMu.Unlock()
		return fmt.Errorf("recognition already running")
	}
	r.connMu.Unlock()

	encodingInfo := r.capture.CaptureEncodingInfo()
	encoding, err := streamEncodingFor(encodingInfo)
	if err != nil {
		return err
	}

	conn, err := r.connectWebsocket(ctx, connectionOptions{
		encoding:       encoding,
		language:       options.Language,
		interimResults: options.PartialResults,
	})
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.connMu.Lock()
	r.conn = conn
	r.cancel = cancel
	r.lastMsgTs = time.Now()
	r.accumulatedTranscript = ""
	r.resultSent = false
	r.connMu.Unlock()

	if err := r.capture.StartCapture(streamCtx, r.sendAudio); err != nil {
		cancel()
		r.closeConn()
		return fmt.Errorf("failed to start microphone capture: %w", err)
	}

	go r.generateSilence(streamCtx, encodingInfo)
	go r.readAndProcessMessages(streamCtx, conn)
	return nil
}

// Stop stops the microphone and asks Deepgram to flush and close the
// stream. The end event follows once the socket closes.
func (r *Recognizer) Stop(context.Context) error {
	if err := r.capture.StopCapture(); err != nil {
		logger.Warn("failed to stop microphone capture", "error", err)
	}
	return r.closeStream()
}

type connectionOptions struct {
	encoding       streamEncoding
	language       string
	interimResults bool
}

func (r *Recognizer) connectWebsocket(ctx context.Context, options connectionOptions) (*websocket.Conn, error) {
	if r.apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not configured")
	}

	listenURL, err := url.Parse(r.listenURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listen url: %w", err)
	}
	queryParams := listenURL.Query()
	options.encoding.apply(queryParams)
	queryParams.Set("channels", "1")
	queryParams.Set("model", r.model)
	if options.language != "" {
		queryParams.Set("language", options.language)
	}
	queryParams.Set("smart_format", "true")
	queryParams.Set("utterance_end_ms", "1000")
	queryParams.Set("interim_results", "true")
	queryParams.Set("endpointing", "300")
	queryParams.Set("vad_events", "true")
	listenURL.RawQuery = queryParams.Encode()

	conn, _, err := r.dialer.DialContext(ctx, listenURL.String(),
		http.Header{"Authorization": {"Token " + r.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func (r *Recognizer) sendAudio(audio []byte) {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	if r.conn == nil {
		return
	}
	r.lastMsgTs = time.Now()
	if err := r.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		logger.Warn("failed to write audio to deepgram", "error", err)
	}
}

func (r *Recognizer) sendSilence(audio []byte) error {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	if r.conn == nil {
		return nil
	}
	if err := r.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

func (r *Recognizer) sendKeepAlive() {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	if r.conn == nil {
		return
	}
	if err := r.conn.WriteJSON(
		struct {
			Type string `json:"type"`
		}{
			Type: "KeepAlive",
		}); err != nil {
		logger.Warn("failed to write keep alive to deepgram", "error", err)
	}
}

func (r *Recognizer) closeStream() error {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	if r.conn != nil {
		if err := r.conn.WriteJSON(struct {
			Type string `json:"type"`
		}{Type: closeStreamType}); err != nil {
			return fmt.Errorf("failed to close deepgram stream: %w", err)
		}
	}
	return nil
}

func (r *Recognizer) closeConn() {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
}

func (r *Recognizer) readAndProcessMessages(ctx context.Context, conn *websocket.Conn) {
	defer r.emit(speechtotext.NativeEventEnd, speechtotext.NativeEventData{})
	defer r.closeConn()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) && ctx.Err() == nil {
				logger.Error("failed to read deepgram websocket message", "error", err)
				r.emit(speechtotext.NativeEventError, speechtotext.NativeEventData{Code: "network", Err: err})
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			r.processMessage(msg)
		}
	}
}

// Package webspeech runs the browser Web Speech API on behalf of the core. A
// small page served by the Bridge performs recognition in the browser and
// forwards engine events back over a websocket.
package webspeech

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/linguaflow/core/speechtotext"
)

//go:embed page.html
var page []byte

var ErrNoPage = errors.New("no recognition page connected")

type message struct {
	Type string `json:"type"`

	// start
	Language       string `json:"language,omitempty"`
	Continuous     bool   `json:"continuous,omitempty"`
	InterimResults bool   `json:"interimResults,omitempty"`

	// result
	ResultIndex int      `json:"resultIndex,omitempty"`
	Results     []result `json:"results,omitempty"`

	// error
	Error string `json:"error,omitempty"`

	// hello
	Supported bool `json:"supported,omitempty"`
}

type result struct {
	Transcript string `json:"transcript"`
	IsFinal    bool   `json:"isFinal"`
}

// Bridge implements speechtotext.WebRecognizer on top of a connected
// browser page.
type Bridge struct {
	upgrader websocket.Upgrader

	mu             sync.Mutex
	conn           *websocket.Conn
	helloSeen      bool
	supported      bool
	running        bool
	connected      chan struct{}
	handlers       speechtotext.WebHandlers
	language       string
	continuous     bool
	interimResults bool

	writeMu sync.Mutex
}

func NewBridge() *Bridge {
	return &Bridge{
		upgrader:  websocket.Upgrader{CheckOrigin: sameHost},
		connected: make(chan struct{}),
		language:  speechtotext.DefaultLanguage,
	}
}

// Handler serves the recognition page on "/" and its websocket on "/ws".
func (b *Bridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	})
	mux.HandleFunc("/ws", b.serveWebsocket)
	return mux
}

// ListenAndServe serves the bridge on addr until ctx is done.
func (b *Bridge) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	server := &http.Server{Handler: b.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("recognition page available", "url", "http://"+listener.Addr().String()+"/")
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("recognition bridge stopped: %w", err)
	}
	return nil
}

// Connected is closed once a page has connected.
func (b *Bridge) Connected() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

func (b *Bridge) SetLanguage(language string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.language = language
}

func (b *Bridge) SetContinuous(continuous bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.continuous = continuous
}

func (b *Bridge) SetInterimResults(interim bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.interimResults = interim
}

func (b *Bridge) SetHandlers(handlers speechtotext.WebHandlers) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = handlers
}

func (b *Bridge) Start() error {
	b.mu.Lock()
	conn := b.conn
	start := message{
		Type:           "start",
		Language:       b.language,
		Continuous:     b.continuous,
		InterimResults: b.interimResults,
	}
	b.running = conn != nil
	b.mu.Unlock()

	if conn == nil {
		return ErrNoPage
	}
	if err := b.write(conn, start); err != nil {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
		return err
	}
	return nil
}

func (b *Bridge) Stop() error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()

	if conn == nil {
		return nil
	}
	return b.write(conn, message{Type: "stop"})
}

func (b *Bridge) write(conn *websocket.Conn, msg message) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to recognition page: %w", err)
	}
	return nil
}

func (b *Bridge) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("failed to upgrade recognition page connection", "error", err)
		return
	}

	b.mu.Lock()
	previous := b.conn
	b.conn = conn
	b.helloSeen = false
	interrupted, handlers := b.running, b.handlers
	b.running = false
	b.mu.Unlock()
	if previous != nil {
		previous.Close()
	}
	if interrupted {
		abort(handlers)
	}

	defer func() {
		b.mu.Lock()
		current := b.conn == conn
		interrupted, handlers := current && b.running, b.handlers
		if current {
			b.conn = nil
			b.helloSeen = false
			b.running = false
		}
		b.mu.Unlock()
		conn.Close()

		if interrupted {
			logger.Warn("recognition page disconnected while listening")
			abort(handlers)
		}
	}()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("recognition page disconnected", "error", err)
			}
			return
		}
		b.dispatch(msg)
	}
}

func (b *Bridge) dispatch(msg message) {
	b.mu.Lock()
	handlers := b.handlers
	b.mu.Unlock()

	switch msg.Type {
	case "hello":
		b.mu.Lock()
		b.helloSeen = true
		b.supported = msg.Supported
		select {
		case <-b.connected:
		default:
			close(b.connected)
		}
		b.mu.Unlock()
	case "result":
		if handlers.OnResult == nil {
			return
		}
		event := speechtotext.WebResultEvent{ResultIndex: msg.ResultIndex}
		for _, r := range msg.Results {
			event.Results = append(event.Results, speechtotext.WebResult{Transcript: r.Transcript, IsFinal: r.IsFinal})
		}
		handlers.OnResult(event)
	case "end":
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
		if handlers.OnEnd != nil {
			handlers.OnEnd()
		}
	case "error":
		if handlers.OnError != nil {
			handlers.OnError(msg.Error)
		}
	default:
		logger.Debug("unknown recognition page message", "type", msg.Type)
	}
}

// Supported reports false once the connected page has said its browser has
// no speech recognition. Until a page has said hello support is unknown and
// Start reports ErrNoPage instead.
func (b *Bridge) Supported() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.helloSeen || b.supported
}

// abort ends a run whose page went away, the page can no longer report it.
func abort(handlers speechtotext.WebHandlers) {
	if handlers.OnError != nil {
		handlers.OnError("network")
	}
	if handlers.OnEnd != nil {
		handlers.OnEnd()
	}
}

func sameHost(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
}

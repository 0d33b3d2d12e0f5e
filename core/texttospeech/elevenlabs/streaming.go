package elevenlabs

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/linguaflow/core/audio"
	"go.opentelemetry.io/otel/attribute"
)

// streamingTransport renders a whole text through the stream-input
// websocket: an initial message carrying the voice settings, the text, and
// an empty text marking the end of input.
type streamingTransport struct {
	client *Client
}

type streamingTextMessage struct {
	Text          string         `json:"text"`
	VoiceSettings *voiceSettings `json:"voice_settings,omitempty"`
	Flush         bool           `json:"flush,omitempty"`
}

type streamingResponse struct {
	Audio   string `json:"audio"`
	IsFinal *bool  `json:"isFinal"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (t *streamingTransport) name() string { return "streaming" }

func (t *streamingTransport) synthesize(ctx context.Context, voice string, request synthesisRequest) (audio.Clip, error) {
	ctx, span := tracer.Start(ctx, "synthesize speech streaming")
	defer span.End()

	c := t.client
	span.SetAttributes(
		attribute.String("request.voice", voice),
		attribute.String("request.model", request.ModelID),
		attribute.Bool("request.language_code", request.LanguageCode != nil),
	)

	query := url.Values{}
	query.Set("model_id", request.ModelID)
	query.Set("output_format", c.outputFormat)
	if request.LanguageCode != nil {
		query.Set("language_code", *request.LanguageCode)
	}
	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s/stream-input?%s", c.streamURL, url.PathEscape(voice), query.Encode())

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, http.Header{"xi-api-key": {c.apiKey}})
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
			err := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
			span.RecordError(err)
			return audio.Clip{}, err
		}
		err = fmt.Errorf("failed to open socket connection to elevenlabs: %w", err)
		span.RecordError(err)
		return audio.Clip{}, err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	messages := []streamingTextMessage{
		{Text: " ", VoiceSettings: &request.VoiceSettings},
		{Text: ensureTrailingSpace(request.Text), Flush: true},
		{Text: ""},
	}
	for _, msg := range messages {
		if err := conn.WriteJSON(msg); err != nil {
			err = fmt.Errorf("failed to send text to elevenlabs: %w", err)
			span.RecordError(err)
			return audio.Clip{}, err
		}
	}

	var buf bytes.Buffer
	for {
		var msg streamingResponse
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return audio.Clip{}, ctx.Err()
			}
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure && buf.Len() > 0 {
					break
				}
				err := &APIError{StatusCode: closeErr.Code, Body: closeErr.Text}
				span.RecordError(err)
				return audio.Clip{}, err
			}
			if buf.Len() > 0 {
				break
			}
			err = fmt.Errorf("failed to read elevenlabs stream: %w", err)
			span.RecordError(err)
			return audio.Clip{}, err
		}

		if msg.Error != "" || (msg.Message != "" && msg.Audio == "") {
			body := msg.Error
			if msg.Message != "" {
				body = strings.TrimSpace(body + " " + msg.Message)
			}
			err := &APIError{StatusCode: msg.Code, Body: body}
			span.RecordError(err)
			return audio.Clip{}, err
		}

		if msg.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				err = fmt.Errorf("failed to decode audio chunk: %w", err)
				span.RecordError(err)
				return audio.Clip{}, err
			}
			buf.Write(chunk)
		}

		if msg.IsFinal != nil && *msg.IsFinal {
			break
		}
	}

	if buf.Len() == 0 {
		err := fmt.Errorf("empty audio stream")
		span.RecordError(err)
		return audio.Clip{}, err
	}
	span.SetAttributes(attribute.Int("response.audio_bytes", buf.Len()))
	return audio.Clip{Data: buf.Bytes(), ContentType: contentTypeFor(c.outputFormat)}, nil
}

func ensureTrailingSpace(text string) string {
	if strings.HasSuffix(text, " ") {
		return text
	}
	return text + " "
}

// contentTypeFor maps an output format such as "mp3_44100_128" or
// "pcm_16000" to the content type of the produced audio.
func contentTypeFor(outputFormat string) string {
	codec, rest, _ := strings.Cut(outputFormat, "_")
	switch codec {
	case "pcm":
		rate, _, _ := strings.Cut(rest, "_")
		if _, err := strconv.Atoi(rate); err != nil {
			rate = "16000"
		}
		return "audio/pcm;rate=" + rate + ";channels=1"
	case "ulaw":
		return "audio/basic"
	default:
		return audio.ContentTypeMPEG
	}
}

package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/koscakluka/linguaflow/core/audio"
	"go.opentelemetry.io/otel/attribute"
)

type restTransport struct {
	client *Client
}

func (t *restTransport) name() string { return "rest" }

func (t *restTransport) synthesize(ctx context.Context, voice string, request synthesisRequest) (audio.Clip, error) {
	ctx, span := tracer.Start(ctx, "synthesize speech rest")
	defer span.End()

	c := t.client
	span.SetAttributes(
		attribute.String("request.voice", voice),
		attribute.String("request.model", request.ModelID),
		attribute.Bool("request.language_code", request.LanguageCode != nil),
	)

	requestBodyBytes, err := json.Marshal(request)
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		return audio.Clip{}, err
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s/stream?%s", c.baseURL, url.PathEscape(voice),
		url.Values{"output_format": {c.outputFormat}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBodyBytes))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		return audio.Clip{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", audio.ContentTypeMPEG)
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		return audio.Clip{}, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		err := &APIError{StatusCode: resp.StatusCode, Body: string(errorBody)}
		span.RecordError(err)
		return audio.Clip{}, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("error reading response body: %w", err)
		span.RecordError(err)
		return audio.Clip{}, err
	}
	if len(data) == 0 {
		err := fmt.Errorf("empty audio response")
		span.RecordError(err)
		return audio.Clip{}, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFor(c.outputFormat)
	}
	return audio.Clip{Data: data, ContentType: contentType}, nil
}

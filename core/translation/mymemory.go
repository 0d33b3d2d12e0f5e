package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/koscakluka/linguaflow/internal/langtag"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultMyMemoryEndpoint = "https://api.mymemory.translated.net/get"

// MyMemory translates with the MyMemory public REST API.
type MyMemory struct {
	endpoint   string
	email      string
	httpClient *http.Client
}

type MyMemoryOption func(*MyMemory)

func WithEndpoint(endpoint string) MyMemoryOption {
	return func(m *MyMemory) {
		if endpoint != "" {
			m.endpoint = endpoint
		}
	}
}

// WithEmail raises the anonymous daily quota.
func WithEmail(email string) MyMemoryOption {
	return func(m *MyMemory) { m.email = email }
}

func WithHTTPClient(client *http.Client) MyMemoryOption {
	return func(m *MyMemory) {
		if client != nil {
			m.httpClient = client
		}
	}
}

func NewMyMemory(opts ...MyMemoryOption) *MyMemory {
	m := &MyMemory{
		endpoint:   DefaultMyMemoryEndpoint,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	// ResponseStatus is a number on success and sometimes a string on errors.
	ResponseStatus  any    `json:"responseStatus"`
	ResponseDetails string `json:"responseDetails"`
}

func (m *MyMemory) Translate(ctx context.Context, text, from, to string) (string, error) {
	ctx, span := tracer.Start(ctx, "translate mymemory")
	defer span.End()

	query := url.Values{}
	query.Set("q", text)
	query.Set("langpair", langtag.Primary(from)+"|"+langtag.Primary(to))
	if m.email != "" {
		query.Set("de", m.email)
	}
	span.SetAttributes(attribute.String("request.langpair", query.Get("langpair")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		return "", err
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: error sending request: %w", ErrBackend, err)
		span.RecordError(err)
		return "", err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		err := fmt.Errorf("%w: non-OK HTTP status %s: %s", ErrBackend, resp.Status, strings.TrimSpace(string(body)))
		span.RecordError(err)
		return "", err
	}

	var parsed myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		err = fmt.Errorf("%w: error decoding response: %w", ErrBackend, err)
		span.RecordError(err)
		return "", err
	}

	if status := fmt.Sprint(parsed.ResponseStatus); status != "200" {
		err := fmt.Errorf("%w: status %s: %s", ErrBackend, status, parsed.ResponseDetails)
		span.RecordError(err)
		return "", err
	}

	translated := strings.TrimSpace(html.UnescapeString(parsed.ResponseData.TranslatedText))
	if translated == "" {
		return "", ErrNoTranslation
	}
	return translated, nil
}

package webclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"notes-sync-server/internal/domain"
	"notes-sync-server/internal/metrics"

	"github.com/sirupsen/logrus"
)

const DefaultTimeout = 60 * time.Second

const previewLimit = 500

type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

func (m Method) valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return true
	}
	return false
}

type Client struct {
	http    *http.Client
	logger  logrus.FieldLogger
	metrics *metrics.Metrics
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(logger logrus.FieldLogger, opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request sends body (JSON encoded, when non-nil) to rawURL and decodes a 2xx
// JSON response into T. On any failure it returns the zero T and a
// *RequestError naming the failure kind; it never panics.
func Request[T any](ctx context.Context, c *Client, rawURL string, method Method, body *T) (T, error) {
	var zero T

	log := c.logger.WithFields(logrus.Fields{
		"url":    rawURL,
		"method": string(method),
	})
	log.Debug("starting request")

	start := time.Now()
	result, err := do[T](ctx, c, log, rawURL, method, body)
	c.metrics.ObserveRequest(string(method), outcome(err), time.Since(start))

	if err != nil {
		log.WithError(err).WithField("kind", string(KindOf(err))).Warn("request failed")
		return zero, err
	}

	log.WithField("duration", time.Since(start)).Debug("request succeeded")
	return result, nil
}

func do[T any](ctx context.Context, c *Client, log logrus.FieldLogger, rawURL string, method Method, body *T) (T, error) {
	var zero T

	u, err := url.Parse(rawURL)
	if err != nil {
		return zero, &RequestError{Kind: KindBadURL, Err: err}
	}
	if !u.IsAbs() || u.Host == "" {
		return zero, &RequestError{Kind: KindBadURL, Err: fmt.Errorf("not an absolute url: %q", rawURL)}
	}
	if !method.valid() {
		return zero, &RequestError{Kind: KindBadURL, Err: fmt.Errorf("unsupported method %q", method)}
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return zero, &RequestError{Kind: KindEncode, Err: err}
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, string(method), u.String(), payload)
	if err != nil {
		return zero, &RequestError{Kind: KindBadURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, &RequestError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	log.WithField("status", resp.StatusCode).Debug("got response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return zero, &RequestError{Kind: KindBadStatus, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &RequestError{Kind: KindTransport, StatusCode: resp.StatusCode, Err: err}
	}

	log.WithField("preview", preview(data)).Trace("raw response")

	result, err := decode[T](data)
	if err != nil {
		return zero, &RequestError{Kind: KindDecode, StatusCode: resp.StatusCode, Err: err}
	}
	return result, nil
}

func decode[T any](data []byte) (T, error) {
	var result T

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return result, &domain.DecodeError{Kind: domain.DecodeMissingValue, Err: errors.New("empty response body")}
	}

	if err := json.Unmarshal(trimmed, &result); err != nil {
		return result, classifyDecodeError(err)
	}
	return result, nil
}

func classifyDecodeError(err error) *domain.DecodeError {
	var decodeErr *domain.DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &domain.DecodeError{Kind: domain.DecodeTypeMismatch, Field: typeErr.Field, Err: err}
	}

	return &domain.DecodeError{Kind: domain.DecodeCorrupted, Err: err}
}

func preview(data []byte) string {
	if len(data) > previewLimit {
		return string(data[:previewLimit]) + "..."
	}
	return string(data)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(KindOf(err))
}

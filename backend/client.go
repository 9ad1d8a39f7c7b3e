package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-learning-portal/content"
	"github.com/jrsteele09/go-learning-portal/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxResponseBytes = 1 << 20

// Client talks to the learning platform REST API on behalf of one browser
// context. Each Client owns its own cookie jar, so the backend session cookie
// of one visitor is never sent for another.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
}

var (
	_ session.AuthAPI       = (*Client)(nil)
	_ content.SecureViewAPI = (*Client)(nil)
)

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithTransport sets the round tripper (primarily for testing).
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "[backend New] invalid base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("[backend New] base url %q must be absolute", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "[backend New] cookie jar")
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Jar: jar},
		logger:     log.With().Str("component", "backend").Logger(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// do sends body as JSON and decodes the answer into out. Wrapped answers
// ({"user": {...}} or {"data": {...}}) are unwrapped using envelopeKeys.
func (c *Client) do(ctx context.Context, method, path string, body, out any, envelopeKeys ...string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "[Client %s %s] encode body", method, path)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return errors.Wrapf(err, "[Client %s %s] new request", method, path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[Client %s %s]", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.Wrapf(err, "[Client %s %s] read body", method, path)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(method, path, resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := decodeEnvelope(data, out, envelopeKeys...); err != nil {
		return errors.Wrapf(err, "[Client %s %s] decode body", method, path)
	}
	return nil
}

func newAPIError(method, path string, status int, data []byte) *APIError {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(data, &body)
	return &APIError{Method: method, Path: path, Status: status, Message: body.Message}
}

func decodeEnvelope(data []byte, out any, keys ...string) error {
	if len(keys) > 0 {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err == nil {
			for _, k := range keys {
				raw, ok := fields[k]
				if ok && len(raw) > 0 && raw[0] == '{' {
					return json.Unmarshal(raw, out)
				}
			}
		}
	}
	return json.Unmarshal(data, out)
}

// Package transport posts round messages to the counterparty and unwraps its
// reply envelopes.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chain5j/mpc-party2/mpcerr"
)

const (
	KeyGenPathPrefix = "bitverse/wallet/v1/private/mpc/ecdsa/keygen"
	SignPathPrefix   = "bitverse/wallet/v1/private/mpc/ecdsa/sign"

	DefaultTimeout = 30 * time.Second

	maxReplySize = 8 << 20
)

// Poster is the single round trip the orchestrators need.
type Poster interface {
	Post(ctx context.Context, path string, body interface{}) (*ServerReply, error)
}

type Config struct {
	Endpoint  string
	AuthToken string
	Timeout   time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

// Client is safe for concurrent use; its configuration is fixed at
// construction.
type Client struct {
	baseURL   string
	authToken string
	client    *http.Client
	log       zerolog.Logger
}

func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.Endpoint, "/"),
		authToken: cfg.AuthToken,
		client:    &http.Client{Timeout: timeout},
		log:       log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Post sends one request to {endpoint}/{path}. A nil body is sent as {}.
// There is no retry; any failure to obtain a decodable envelope is a
// transport error.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*ServerReply, error) {
	start := time.Now()

	reply, status, err := c.post(ctx, path, body)

	event := c.log.Debug().
		Str("path", path).
		Int("status", status).
		Dur("took", time.Since(start))
	if err != nil {
		event.Err(err).Msg("counterparty request failed")
		return nil, mpcerr.Transport(path, err)
	}
	event.Int("ret_code", reply.RetCode).Msg("counterparty request")

	return reply, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*ServerReply, int, error) {
	payload := []byte("{}")
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, 0, errors.Wrap(err, "encode request")
		}
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "read reply")
	}

	var reply ServerReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, resp.StatusCode, errors.Wrapf(err, "HTTP %d: undecodable reply", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			RetCode *int `json:"retCode"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil || envelope.RetCode == nil {
			return nil, resp.StatusCode, errors.Errorf("HTTP %d: %s", resp.StatusCode, truncate(raw, 128))
		}
	}

	return &reply, resp.StatusCode, nil
}

// PostAndDecode posts body and decodes a successful reply into v.
func PostAndDecode(ctx context.Context, p Poster, path string, body, v interface{}) error {
	reply, err := p.Post(ctx, path, body)
	if err != nil {
		return err
	}
	return reply.decode(path, v)
}

// KeyGenPath and SignPath join a round name onto the endpoint prefixes.
func KeyGenPath(round string) string {
	return KeyGenPathPrefix + "/" + round
}

func SignPath(round string) string {
	return SignPathPrefix + "/" + round
}

func truncate(raw []byte, n int) string {
	if len(raw) > n {
		return string(raw[:n]) + "..."
	}
	return string(raw)
}

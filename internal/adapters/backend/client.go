// Package backend talks to the fitness backend's stream endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/liveroom/internal/config"
	"github.com/dkeye/liveroom/internal/domain"
)

const DefaultTimeout = 10 * time.Second

var ErrEmptyMessage = errors.New("empty message")

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

type Client struct {
	base       string
	token      string
	httpClient *http.Client
}

func New(cfg config.BackendConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:       strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// StreamDetails fetches and normalises a session's streaming details.
func (c *Client) StreamDetails(ctx context.Context, sessionID string) (domain.StreamDetails, error) {
	var raw rawStream
	if err := c.do(ctx, http.MethodGet, streamPath(sessionID, ""), nil, &raw); err != nil {
		return domain.StreamDetails{}, err
	}
	return raw.normalize(sessionID), nil
}

func (c *Client) StartStream(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, streamPath(sessionID, "start"), nil, nil)
}

func (c *Client) EndStream(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, streamPath(sessionID, "end"), nil, nil)
}

// JoinStream and LeaveStream are membership notifications; the backend treats
// repeats as no-ops.
func (c *Client) JoinStream(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, streamPath(sessionID, "join"), nil, nil)
}

func (c *Client) LeaveStream(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, streamPath(sessionID, "leave"), nil, nil)
}

func (c *Client) Participants(ctx context.Context, sessionID string) ([]string, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, streamPath(sessionID, "participants"), nil, &raw); err != nil {
		return nil, err
	}
	return normalizeParticipantList(raw), nil
}

func (c *Client) SendChat(ctx context.Context, sessionID, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	return c.do(ctx, http.MethodPost, streamPath(sessionID, "message"), map[string]string{"message": message}, nil)
}

func (c *Client) SendReaction(ctx context.Context, sessionID, kind string) error {
	if kind == "" {
		return ErrEmptyMessage
	}
	return c.do(ctx, http.MethodPost, streamPath(sessionID, "reaction"), map[string]string{"type": kind}, nil)
}

func streamPath(sessionID, action string) string {
	p := "/stream/" + url.PathEscape(sessionID)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &msg) == nil {
			apiErr.Message = msg.Message
		}
		log.Warn().Str("module", "adapters.backend").Str("path", path).Int("status", resp.StatusCode).Msg("backend error")
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

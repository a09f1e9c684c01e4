package studioapi

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

	"studio/internal/domain"
	"studio/internal/infra"
)

// ErrMissingToken indicates that the client was configured without a bearer token.
var ErrMissingToken = errors.New("studioapi: bearer token is required")

// Options configures the studio API client.
type Options struct {
	BaseURL        string
	Token          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client calls the studio HTTP API on behalf of a teacher.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *infra.Logger
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("studioapi: %s (%s, status %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("studioapi: status %d: %s", e.StatusCode, e.Message)
}

// NewClient constructs a client with defaults for every unset option.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("studioapi: base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("studioapi: invalid base url: %w", err)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(opts.Token),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CreateUploadSession asks the API for a one-time upload destination.
func (c *Client) CreateUploadSession(ctx context.Context, corsOrigin string) (domain.UploadSession, error) {
	var session domain.UploadSession
	payload := map[string]string{"corsOrigin": corsOrigin}
	if err := c.do(ctx, http.MethodPost, "/v1/uploads", payload, &session); err != nil {
		return domain.UploadSession{}, err
	}
	return session, nil
}

// UploadStatus performs one status request for uploadID.
func (c *Client) UploadStatus(ctx context.Context, uploadID string) (domain.UploadState, error) {
	var state domain.UploadState
	path := "/v1/uploads/status?uploadId=" + url.QueryEscape(uploadID)
	if err := c.do(ctx, http.MethodGet, path, nil, &state); err != nil {
		return domain.UploadState{}, err
	}
	return state, nil
}

// GetClass loads a class by id.
func (c *Client) GetClass(ctx context.Context, id string) (*domain.Class, error) {
	var class domain.Class
	if err := c.do(ctx, http.MethodGet, "/v1/classes/"+url.PathEscape(id), nil, &class); err != nil {
		return nil, err
	}
	return &class, nil
}

// SaveClass creates the class when it has no id and replaces it otherwise.
func (c *Client) SaveClass(ctx context.Context, class domain.Class) (*domain.Class, error) {
	method, path := http.MethodPost, "/v1/classes"
	if class.ID != "" {
		method, path = http.MethodPut, "/v1/classes/"+url.PathEscape(class.ID)
	}
	var saved domain.Class
	if err := c.do(ctx, method, path, class, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// RemoveClassVideo clears the video of a persisted class.
func (c *Client) RemoveClassVideo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/classes/"+url.PathEscape(id)+"/video", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	if c.token == "" {
		return ErrMissingToken
	}
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("studioapi: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("studioapi: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("studioapi: http request: %w", err)
	}
	defer resp.Body.Close()
	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("studioapi: request")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("studioapi: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var detail struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Error != "" {
			apiErr.Message = detail.Error
			apiErr.Code = detail.Code
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("studioapi: decode response: %w", err)
	}
	return nil
}

package mux

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

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
)

// ErrMissingCredentials indicates that the client was configured without an access token.
var ErrMissingCredentials = errors.New("mux: access token is required")

// Upload statuses reported by the media service.
const (
	UploadWaiting      = "waiting"
	UploadAssetCreated = "asset_created"
	UploadErrored      = "errored"
	UploadCancelled    = "cancelled"
	UploadTimedOut     = "timed_out"
)

// Asset statuses reported by the media service.
const (
	AssetPreparing = "preparing"
	AssetReady     = "ready"
	AssetErrored   = "errored"
)

// Options configures the media service client.
type Options struct {
	TokenID        string
	TokenSecret    string
	BaseURL        string
	PlaybackPolicy string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client talks to the Mux video API.
type Client struct {
	tokenID        string
	tokenSecret    string
	baseURL        string
	playbackPolicy string
	httpClient     *http.Client
	logger         *infra.Logger
}

// Upload is a direct upload resource. Passthrough echoes the value stored
// in its asset settings at creation.
type Upload struct {
	ID          string
	URL         string
	Status      string
	AssetID     string
	Passthrough string
}

// Asset is a transcoded video.
type Asset struct {
	ID          string
	Status      string
	PlaybackIDs []string
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("mux: %s (%s, status %d)", e.Message, e.Type, e.StatusCode)
	}
	return fmt.Sprintf("mux: status %d: %s", e.StatusCode, e.Message)
}

type createUploadRequest struct {
	CORSOrigin       string           `json:"cors_origin"`
	NewAssetSettings newAssetSettings `json:"new_asset_settings"`
}

type newAssetSettings struct {
	PlaybackPolicy []string `json:"playback_policy,omitempty"`
	Passthrough    string   `json:"passthrough,omitempty"`
}

type uploadEnvelope struct {
	Data struct {
		ID               string           `json:"id"`
		URL              string           `json:"url"`
		Status           string           `json:"status"`
		AssetID          string           `json:"asset_id"`
		NewAssetSettings newAssetSettings `json:"new_asset_settings"`
	} `json:"data"`
}

type assetEnvelope struct {
	Data struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		PlaybackIDs []struct {
			ID     string `json:"id"`
			Policy string `json:"policy"`
		} `json:"playback_ids"`
	} `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Type     string   `json:"type"`
		Messages []string `json:"messages"`
	} `json:"error"`
}

// NewClient constructs a client with defaults for every unset option.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.mux.com"
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("mux: invalid base url: %w", err)
	}
	policy := strings.TrimSpace(opts.PlaybackPolicy)
	if policy == "" {
		policy = "public"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		tokenID:        strings.TrimSpace(opts.TokenID),
		tokenSecret:    strings.TrimSpace(opts.TokenSecret),
		baseURL:        baseURL,
		playbackPolicy: policy,
		httpClient:     httpClient,
		logger:         logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.tokenID != "" && c.tokenSecret != ""
}

// CreateUpload requests a one-time upload URL scoped to corsOrigin. The
// passthrough value is kept on the upload and its asset.
func (c *Client) CreateUpload(ctx context.Context, corsOrigin, passthrough string) (*Upload, error) {
	payload := createUploadRequest{
		CORSOrigin: strings.TrimSpace(corsOrigin),
		NewAssetSettings: newAssetSettings{
			PlaybackPolicy: []string{c.playbackPolicy},
			Passthrough:    strings.TrimSpace(passthrough),
		},
	}
	if payload.CORSOrigin == "" {
		payload.CORSOrigin = "*"
	}
	var env uploadEnvelope
	if err := c.do(ctx, http.MethodPost, "/video/v1/uploads", payload, &env); err != nil {
		return nil, err
	}
	if env.Data.ID == "" || env.Data.URL == "" {
		return nil, errors.New("mux: upload response missing id or url")
	}
	c.logger.Debug().Str("upload_id", env.Data.ID).Msg("mux: upload created")
	return env.upload(), nil
}

// CreateUploadSession adapts CreateUpload to the session shape served to
// clients, recording owner as the passthrough.
func (c *Client) CreateUploadSession(ctx context.Context, corsOrigin, owner string) (domain.UploadSession, error) {
	upload, err := c.CreateUpload(ctx, corsOrigin, owner)
	if err != nil {
		return domain.UploadSession{}, err
	}
	return domain.UploadSession{UploadURL: upload.URL, UploadID: upload.ID}, nil
}

// GetUpload fetches a direct upload by id.
func (c *Client) GetUpload(ctx context.Context, uploadID string) (*Upload, error) {
	uploadID = strings.TrimSpace(uploadID)
	if uploadID == "" {
		return nil, errors.New("mux: upload id is required")
	}
	var env uploadEnvelope
	if err := c.do(ctx, http.MethodGet, "/video/v1/uploads/"+url.PathEscape(uploadID), nil, &env); err != nil {
		return nil, err
	}
	return env.upload(), nil
}

func (env uploadEnvelope) upload() *Upload {
	return &Upload{
		ID:          env.Data.ID,
		URL:         env.Data.URL,
		Status:      env.Data.Status,
		AssetID:     env.Data.AssetID,
		Passthrough: env.Data.NewAssetSettings.Passthrough,
	}
}

// GetAsset fetches an asset by id.
func (c *Client) GetAsset(ctx context.Context, assetID string) (*Asset, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil, errors.New("mux: asset id is required")
	}
	var env assetEnvelope
	if err := c.do(ctx, http.MethodGet, "/video/v1/assets/"+url.PathEscape(assetID), nil, &env); err != nil {
		return nil, err
	}
	asset := &Asset{ID: env.Data.ID, Status: env.Data.Status}
	for _, p := range env.Data.PlaybackIDs {
		if p.ID != "" {
			asset.PlaybackIDs = append(asset.PlaybackIDs, p.ID)
		}
	}
	return asset, nil
}

// DeleteAsset removes an asset. A missing asset is not an error.
func (c *Client) DeleteAsset(ctx context.Context, assetID string) error {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil
	}
	err := c.do(ctx, http.MethodDelete, "/video/v1/assets/"+url.PathEscape(assetID), nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

// UploadStatus resolves the combined upload/asset state in the shape served by
// the upload-status endpoint. Owner carries the upload's passthrough.
func (c *Client) UploadStatus(ctx context.Context, uploadID string) (domain.UploadState, error) {
	upload, err := c.GetUpload(ctx, uploadID)
	if err != nil {
		return domain.UploadState{}, err
	}
	state, err := c.uploadState(ctx, upload)
	if err != nil {
		return domain.UploadState{}, err
	}
	state.Owner = upload.Passthrough
	return state, nil
}

func (c *Client) uploadState(ctx context.Context, upload *Upload) (domain.UploadState, error) {
	switch upload.Status {
	case UploadWaiting:
		return domain.UploadState{Status: domain.RemoteStatusWaiting}, nil
	case UploadErrored, UploadCancelled, UploadTimedOut:
		return domain.UploadState{Status: domain.RemoteStatusErrored}, nil
	case UploadAssetCreated:
	default:
		return domain.UploadState{}, fmt.Errorf("mux: unknown upload status %q", upload.Status)
	}
	if upload.AssetID == "" {
		return domain.UploadState{Status: domain.RemoteStatusProcessing}, nil
	}
	asset, err := c.GetAsset(ctx, upload.AssetID)
	if err != nil {
		return domain.UploadState{}, err
	}
	switch asset.Status {
	case AssetReady:
		state := domain.UploadState{Status: domain.RemoteStatusAssetCreated, AssetID: asset.ID}
		if len(asset.PlaybackIDs) > 0 {
			state.PlaybackID = asset.PlaybackIDs[0]
		}
		return state, nil
	case AssetErrored:
		return domain.UploadState{Status: domain.RemoteStatusErrored}, nil
	default:
		return domain.UploadState{Status: domain.RemoteStatusProcessing, AssetID: asset.ID}, nil
	}
}

// ThumbnailURL returns the still image URL for a playback id.
func ThumbnailURL(playbackID string) string {
	playbackID = strings.TrimSpace(playbackID)
	if playbackID == "" {
		return ""
	}
	return "https://image.mux.com/" + url.PathEscape(playbackID) + "/thumbnail.jpg"
}

// StreamURL returns the HLS playlist URL for a playback id.
func StreamURL(playbackID string) string {
	playbackID = strings.TrimSpace(playbackID)
	if playbackID == "" {
		return ""
	}
	return "https://stream.mux.com/" + url.PathEscape(playbackID) + ".m3u8"
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	if !c.HasCredentials() {
		return ErrMissingCredentials
	}
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("mux: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("mux: build request: %w", err)
	}
	req.SetBasicAuth(c.tokenID, c.tokenSecret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mux: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("mux: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var detail errorEnvelope
		if err := json.Unmarshal(raw, &detail); err == nil && len(detail.Error.Messages) > 0 {
			apiErr.Type = detail.Error.Type
			apiErr.Message = strings.Join(detail.Error.Messages, "; ")
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("mux: decode response: %w", err)
	}
	return nil
}

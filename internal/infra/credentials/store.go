package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"studio/internal/infra"
	"studio/internal/sqlinline"
)

const (
	ProviderMux = "mux"
)

// ErrMalformedToken is returned when a stored media token is not "id:secret".
var ErrMalformedToken = errors.New("credentials: mux token must be id:secret")

// MuxCredentials is the access token pair for the media service.
type MuxCredentials struct {
	TokenID     string
	TokenSecret string
}

// Empty reports whether either half of the pair is missing.
func (c MuxCredentials) Empty() bool {
	return c.TokenID == "" || c.TokenSecret == ""
}

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// MuxCredentials loads the stored pair. A missing row yields empty credentials.
func (s *Store) MuxCredentials(ctx context.Context) (MuxCredentials, error) {
	token, err := s.Token(ctx, ProviderMux)
	if err != nil || token == "" {
		return MuxCredentials{}, err
	}
	id, secret, ok := strings.Cut(token, ":")
	id, secret = strings.TrimSpace(id), strings.TrimSpace(secret)
	if !ok || id == "" || secret == "" {
		return MuxCredentials{}, ErrMalformedToken
	}
	return MuxCredentials{TokenID: id, TokenSecret: secret}, nil
}

// Resolve prefers explicitly configured credentials and falls back to the store.
func (s *Store) Resolve(ctx context.Context, configured MuxCredentials) (MuxCredentials, error) {
	if !configured.Empty() {
		return configured, nil
	}
	return s.MuxCredentials(ctx)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetMuxCredentials(ctx context.Context, creds MuxCredentials) error {
	creds.TokenID = strings.TrimSpace(creds.TokenID)
	creds.TokenSecret = strings.TrimSpace(creds.TokenSecret)
	if creds.Empty() {
		return errors.New("mux token id and secret are required")
	}
	if strings.Contains(creds.TokenID, ":") {
		return errors.New("mux token id must not contain ':'")
	}
	return s.upsert(ctx, ProviderMux, creds.TokenID+":"+creds.TokenSecret, map[string]any{"token_id": creds.TokenID})
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}

package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	landing "github.com/goliatone/go-landing"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

// Config holds the GoTrue endpoint and project key.
type Config struct {
	BaseURL string
	APIKey  string
	// EmailRedirectURL is where the verification link lands after signup
	EmailRedirectURL string

	HTTPClient *http.Client
}

// Client implements landing.AuthGateway against a GoTrue compatible API.
type Client struct {
	config     Config
	baseURL    string
	httpClient *http.Client
}

// New creates a new GoTrue client.
func New(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		config:     cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: client,
	}
}

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Email    string                 `json:"email"`
	Password string                 `json:"password"`
	Data     landing.SignUpMetadata `json:"data"`
}

type resendRequest struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

// SignInWithPassword implements landing.AuthGateway.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*landing.Session, error) {
	query := url.Values{"grant_type": {"password"}}

	session := new(landing.Session)
	if err := c.post(ctx, "sign_in", "/token", query, passwordGrant{
		Email:    email,
		Password: password,
	}, session); err != nil {
		return nil, err
	}

	return session, nil
}

// SignUp implements landing.AuthGateway.
func (c *Client) SignUp(ctx context.Context, email, password string, meta landing.SignUpMetadata) error {
	query := url.Values{}
	if c.config.EmailRedirectURL != "" {
		query.Set("redirect_to", c.config.EmailRedirectURL)
	}

	return c.post(ctx, "sign_up", "/signup", query, signUpRequest{
		Email:    email,
		Password: password,
		Data:     meta,
	}, nil)
}

// ResendVerificationEmail implements landing.AuthGateway.
func (c *Client) ResendVerificationEmail(ctx context.Context, email string) error {
	query := url.Values{}
	if c.config.EmailRedirectURL != "" {
		query.Set("redirect_to", c.config.EmailRedirectURL)
	}

	return c.post(ctx, "resend", "/resend", query, resendRequest{
		Type:  "signup",
		Email: email,
	}, nil)
}

func (c *Client) post(ctx context.Context, operation, path string, query url.Values, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode gateway request").
			WithMetadata(map[string]any{"operation": operation})
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build gateway request").
			WithMetadata(map[string]any{"operation": operation})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("apikey", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "identity provider is unreachable").
			WithTextCode("GATEWAY_UNREACHABLE").
			WithMetadata(map[string]any{"operation": operation})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return responseError(operation, resp.StatusCode, raw)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "invalid response from identity provider").
			WithTextCode("GATEWAY_INVALID_RESPONSE").
			WithMetadata(map[string]any{"operation": operation, "status": resp.StatusCode})
	}

	return nil
}

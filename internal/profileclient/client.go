// Package profileclient is the HTTP gateway to the remote accessibility
// profile store. It owns no state: every call is a single request against
// the authenticated user's profile collection. Idempotent calls get bounded
// retries on transport failures and 5xx responses; creates are sent once.
package profileclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultRetryMax  = 2
	defaultRetryWait = 500 * time.Millisecond

	profilesPath = "/users/me/a11y/profiles"

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. https://shop.example/api/v1.
	BaseURL string

	// Token is the session token sent as a bearer credential.
	Token string

	// RetryMax is the number of retries after the first attempt. Zero
	// disables retries; negative selects the default.
	RetryMax int

	// RetryWait is the minimum backoff between retries.
	RetryWait time.Duration

	// Timeout bounds each individual attempt.
	Timeout time.Duration

	// Logger receives retry diagnostics. Nil silences them.
	Logger *slog.Logger
}

// Client talks to the profile endpoints. Safe for concurrent use.
type Client struct {
	base  string
	token string
	http  *retryablehttp.Client
}

// New creates a client from cfg.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = defaultRetryMax
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = defaultRetryWait
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = cfg.RetryWait
	rc.RetryWaitMax = 4 * cfg.RetryWait
	rc.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	// Hand the final response back instead of a bare "giving up" error so
	// the status and body can be reported.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.CheckRetry = checkRetry
	rc.Logger = nil
	if cfg.Logger != nil {
		rc.Logger = cfg.Logger
	}

	return &Client{
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		token: cfg.Token,
		http:  rc,
	}
}

// List returns the caller's profiles.
func (c *Client) List(ctx context.Context) ([]a11y.Profile, error) {
	resp, err := c.do(ctx, http.MethodGet, profilesPath, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	profiles, err := a11y.DecodeProfiles(resp.Body)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: err.Error(), Err: ErrNetwork}
	}
	return profiles, nil
}

// Create stores a new profile and returns it with its server-assigned id.
// Any ID already set on p is ignored.
func (c *Client) Create(ctx context.Context, p a11y.Profile) (a11y.Profile, error) {
	p.ID = ""
	resp, err := c.do(ctx, http.MethodPost, profilesPath, p, http.StatusCreated, http.StatusOK)
	if err != nil {
		return a11y.Profile{}, err
	}
	defer resp.Body.Close()
	return decodeOne(resp)
}

// Update replaces the name, description and bundle of an existing profile.
// A 204 response returns p as sent.
func (c *Client) Update(ctx context.Context, p a11y.Profile) (a11y.Profile, error) {
	if p.ID == "" {
		return a11y.Profile{}, &APIError{Message: "profile id is required", Err: ErrNotFound}
	}
	resp, err := c.do(ctx, http.MethodPut, profilePath(p.ID), p, http.StatusOK, http.StatusNoContent)
	if err != nil {
		return a11y.Profile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return p, nil
	}
	return decodeOne(resp)
}

// Delete removes a profile by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &APIError{Message: "profile id is required", Err: ErrNotFound}
	}
	resp, err := c.do(ctx, http.MethodDelete, profilePath(id), nil, http.StatusNoContent, http.StatusOK)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// sendOnceKey marks a request context whose request must not be repeated.
type sendOnceKey struct{}

// checkRetry is the default policy except for requests marked send-once.
// A POST that timed out or failed with a 5xx may still have been stored,
// and a repeat would create a second profile.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Value(sendOnceKey{}) != nil {
		return false, ctx.Err()
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func profilePath(id string) string {
	return profilesPath + "/" + url.PathEscape(id)
}

func decodeOne(resp *http.Response) (a11y.Profile, error) {
	p, err := a11y.DecodeProfile(resp.Body)
	if err != nil {
		return a11y.Profile{}, &APIError{Status: resp.StatusCode, Message: err.Error(), Err: ErrNetwork}
	}
	return p, nil
}

// do sends one request and returns the response when its status is one of
// want. Any other outcome is returned as an *APIError with the body closed.
func (c *Client) do(ctx context.Context, method, path string, body any, want ...int) (*http.Response, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	if method == http.MethodPost {
		ctx = context.WithValue(ctx, sendOnceKey{}, true)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &APIError{Message: ctxErr.Error(), Err: ErrNetwork, cause: ctxErr}
		}
		return nil, &APIError{Message: err.Error(), Err: ErrNetwork, cause: err}
	}

	for _, code := range want {
		if resp.StatusCode == code {
			return resp, nil
		}
	}
	defer resp.Body.Close()
	return nil, errorFromResponse(resp)
}

// errorBody is the JSON error envelope written by the profile service.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Field   string `json:"field"`
}

func errorFromResponse(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Err: sentinelFor(resp.StatusCode)}

	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(data, &eb) == nil {
		apiErr.Type = eb.Type
		apiErr.Field = eb.Field
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	if errors.Is(apiErr.Err, ErrDuplicateName) && apiErr.Field == "" {
		apiErr.Field = "profileName"
	}
	return apiErr
}

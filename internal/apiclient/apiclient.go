package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ljosc/discuss/internal/domain"
	internal_errors "github.com/ljosc/discuss/internal/errors"
	"github.com/ljosc/discuss/internal/logger"
	"github.com/ljosc/discuss/internal/metrics"
)

// TokenSource supplies the access token attached to protected requests.
// credstore.Store satisfies it.
type TokenSource interface {
	Get(kind domain.CredentialKind) (string, bool, error)
}

// APIClient handles all communication with the forum service.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
	tokens     TokenSource

	mu            sync.RWMutex
	onAuthFailure func(ctx context.Context)
}

func New(baseURL string, tokens TokenSource, timeout time.Duration) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// OnAuthFailure registers the logout hook run when the service rejects
// the access token of a protected request.
func (c *APIClient) OnAuthFailure(fn func(ctx context.Context)) {
	c.mu.Lock()
	c.onAuthFailure = fn
	c.mu.Unlock()
}

type request struct {
	op        string
	method    string
	path      string
	body      any
	protected bool
	// expect is the only status treated as success.
	expect int
}

// do sends req and returns the response when its status is the expected
// one; the caller closes the body. Every other outcome becomes a
// classified error.
func (c *APIClient) do(ctx context.Context, req request) (resp *http.Response, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRemote(req.op, start, err) }()

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", req.op, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.BaseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	if req.protected {
		token, ok, err := c.tokens.Get(domain.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("read access token: %w", err)
		}
		if ok {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err = c.HttpClient.Do(httpReq)
	if err != nil {
		return nil, internal_errors.Network(req.op, err)
	}

	if resp.StatusCode != req.expect {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		rejection := internal_errors.FromStatus(req.op, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
		if rejection.Kind == internal_errors.AuthFailure && req.protected {
			c.authFailed(ctx, req.op)
		}
		return nil, rejection
	}
	return resp, nil
}

func (c *APIClient) authFailed(ctx context.Context, op string) {
	c.mu.RLock()
	hook := c.onAuthFailure
	c.mu.RUnlock()

	logger.Log.Warn("access token rejected", "component", "apiclient", "op", op)
	if hook != nil {
		hook(ctx)
	}
}

// send performs a request whose success response carries no payload.
func (c *APIClient) send(ctx context.Context, req request) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// fetch performs a request and decodes the JSON success payload into out.
func (c *APIClient) fetch(ctx context.Context, req request, out any) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &internal_errors.Error{
			Kind: internal_errors.ServerRejection, Op: req.op, StatusCode: resp.StatusCode,
			Message: "cannot decode response", Err: err,
		}
	}
	return nil
}

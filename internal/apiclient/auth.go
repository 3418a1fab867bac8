package apiclient

import (
	"context"
	"net/http"

	"github.com/ljosc/discuss/internal/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	domain.Credentials
	User domain.Profile `json:"user"`
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *APIClient) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	err := c.fetch(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   "/auth/v1/login",
		body:   LoginRequest{Email: email, Password: password},
		expect: http.StatusOK,
	}, &out)
	return out, err
}

func (c *APIClient) Signup(ctx context.Context, username, email, password string) error {
	return c.send(ctx, request{
		op:     "signup",
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   SignupRequest{Username: username, Email: email, Password: password},
		expect: http.StatusCreated,
	})
}

// Ping reports the last visit and doubles as a liveness check of the session.
func (c *APIClient) Ping(ctx context.Context) error {
	return c.send(ctx, request{
		op:        "ping",
		method:    http.MethodGet,
		path:      "/ping",
		protected: true,
		expect:    http.StatusOK,
	})
}

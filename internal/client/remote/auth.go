package remote

import (
	"context"
	"net/http"
	"time"
)

// Session is the credential pair returned by a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges a username and password for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		credentials{Username: username, Password: password}, &s)
	if err != nil {
		return Session{}, err
	}
	return s, nil
}

// Register creates a backend account and returns its initial session.
func (c *Client) Register(ctx context.Context, username, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/auth/register",
		credentials{Username: username, Password: password}, &s)
	if err != nil {
		return Session{}, err
	}
	return s, nil
}

package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Session struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	User         SessionUser `json:"user"`
}

type AuthEndpoint struct {
	transport *Transport
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionEnvelope struct {
	Data Session `json:"data"`
}

// SignIn exchanges credentials for a session and installs the access token
// on the shared transport.
func (a *AuthEndpoint) SignIn(ctx context.Context, email, password string) (*Session, error) {
	resp, err := a.transport.Post(ctx, "/api/v1/auth/signin", signInRequest{Email: email, Password: password}, nil)
	if err != nil {
		return nil, err
	}

	var env sessionEnvelope
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return nil, fmt.Errorf("sign in: decode: %w", err)
	}

	a.transport.SetToken(env.Data.AccessToken)
	return &env.Data, nil
}

// SignOut invalidates the session server-side and drops the local token.
func (a *AuthEndpoint) SignOut(ctx context.Context) error {
	_, err := a.transport.Post(ctx, "/api/v1/auth/signout", struct{}{}, nil)
	a.transport.SetToken("")
	return err
}

// Session returns the session bound to the current access token.
func (a *AuthEndpoint) Session(ctx context.Context) (*Session, error) {
	resp, err := a.transport.Get(ctx, "/api/v1/auth/session", nil)
	if err != nil {
		return nil, err
	}
	var env sessionEnvelope
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return &env.Data, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh trades the refresh token for a fresh session.
func (a *AuthEndpoint) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	resp, err := a.transport.Post(ctx, "/api/v1/auth/refresh", refreshRequest{RefreshToken: refreshToken}, nil)
	if err != nil {
		return nil, err
	}
	var env sessionEnvelope
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return nil, fmt.Errorf("refresh: decode: %w", err)
	}
	a.transport.SetToken(env.Data.AccessToken)
	return &env.Data, nil
}

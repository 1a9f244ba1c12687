package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
	"harborview.com/shiftman/config"
	"harborview.com/shiftman/model"
	"harborview.com/shiftman/security"
)

type AuthMode string

const (
	// AuthModeRemote is a backend-issued session.
	AuthModeRemote AuthMode = "remote"
	// AuthModeLocalDemo is a locally validated demo credential, used when
	// the backend is unreachable. The app stays partially usable.
	AuthModeLocalDemo AuthMode = "local-demo"
)

// AuthResult says which path authenticated the user. Callers decide
// presentation per mode (e.g. an "offline mode" banner for local-demo).
type AuthResult struct {
	Mode    AuthMode
	Session *v1.Session
	User    model.Employee
}

type AuthService struct {
	store  *cache.Store
	api    *v1.Client
	log    *slog.Logger
	demo   []config.DemoCredential
	secret string // base64 signing secret for local demo sessions
}

func NewAuthService(store *cache.Store, api *v1.Client, demo []config.DemoCredential, signingSecret string, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		store:  store,
		api:    api,
		log:    log,
		demo:   demo,
		secret: signingSecret,
	}
}

// SignIn tries the backend first. On any backend failure it consults the
// local demo credentials; only when neither path matches does the original
// backend error surface.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	sess, err := s.api.Auth.SignIn(ctx, email, password)
	if err == nil {
		result := &AuthResult{
			Mode:    AuthModeRemote,
			Session: sess,
			User: model.Employee{
				ID:    sess.User.ID,
				Email: sess.User.Email,
				Role:  model.Role(sess.User.Role),
			},
		}
		s.persistSession(sess)
		return result, nil
	}

	s.log.Warn("backend sign-in failed, consulting demo credentials", "error", err)

	cred := s.matchDemo(email, password)
	if cred == nil {
		return nil, err
	}

	token, terr := security.CreateSessionToken(&security.Identity{
		UserID:   "demo-" + cred.Email,
		Email:    cred.Email,
		Role:     cred.Role,
		Provider: "local",
	}, s.secret, 24*3600)
	if terr != nil {
		return nil, fmt.Errorf("mint demo session: %w", terr)
	}

	sess = &v1.Session{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(24 * time.Hour),
		User: v1.SessionUser{
			ID:    "demo-" + cred.Email,
			Email: cred.Email,
			Role:  cred.Role,
		},
	}
	s.api.Transport.SetToken(token)
	s.persistSession(sess)

	return &AuthResult{
		Mode:    AuthModeLocalDemo,
		Session: sess,
		User: model.Employee{
			ID:        sess.User.ID,
			Email:     cred.Email,
			FirstName: cred.FirstName,
			LastName:  cred.LastName,
			Role:      model.Role(cred.Role),
		},
	}, nil
}

func (s *AuthService) matchDemo(email, password string) *config.DemoCredential {
	for i := range s.demo {
		if strings.EqualFold(s.demo[i].Email, email) && s.demo[i].Password == password {
			return &s.demo[i]
		}
	}
	return nil
}

func (s *AuthService) persistSession(sess *v1.Session) {
	data, err := json.Marshal(sess)
	if err != nil {
		s.log.Warn("failed to marshal session", "error", err)
		return
	}
	if err := s.store.PutSetting(cache.SettingSession, string(data)); err != nil {
		s.log.Warn("failed to persist session", "error", err)
	}
	if err := s.store.PutSetting(cache.SettingAuthenticated, "true"); err != nil {
		s.log.Warn("failed to persist auth flag", "error", err)
	}
}

// IsAuthenticated reflects the cached auth flag, regardless of which path
// produced the session.
func (s *AuthService) IsAuthenticated() bool {
	v, err := s.store.GetSetting(cache.SettingAuthenticated)
	if err != nil {
		s.log.Warn("failed to read auth flag", "error", err)
		return false
	}
	return v == "true"
}

// CurrentSession returns the persisted session, or nil.
func (s *AuthService) CurrentSession() *v1.Session {
	raw, err := s.store.GetSetting(cache.SettingSession)
	if err != nil || raw == "" {
		return nil
	}
	var sess v1.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.log.Warn("failed to decode persisted session", "error", err)
		return nil
	}
	return &sess
}

// Restore re-installs a persisted session on app start, refreshing it when
// the access token expires within the next minute.
func (s *AuthService) Restore(ctx context.Context) (*v1.Session, error) {
	sess := s.CurrentSession()
	if sess == nil {
		return nil, ErrNotAuthenticated
	}

	expiry, err := security.TokenExpiry(sess.AccessToken)
	if err == nil && time.Until(expiry) > time.Minute {
		s.api.Transport.SetToken(sess.AccessToken)
		return sess, nil
	}

	if sess.RefreshToken == "" {
		// demo sessions have no refresh token; hand back what we have and
		// let the next remote call surface the failure
		s.api.Transport.SetToken(sess.AccessToken)
		return sess, nil
	}

	fresh, err := s.api.Auth.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		return nil, err
	}
	s.persistSession(fresh)
	return fresh, nil
}

// SignOut clears the session on both sides. The local wipe happens even
// when the backend call fails.
func (s *AuthService) SignOut(ctx context.Context) error {
	err := s.api.Auth.SignOut(ctx)
	if err != nil {
		s.log.Warn("backend sign-out failed", "error", err)
	}
	if cerr := s.store.ClearAll(); cerr != nil {
		return cerr
	}
	return err
}

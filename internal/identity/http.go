package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/pkg/logger"
)

// HTTPProvider talks to a GoTrue-compatible identity REST API. It caches the
// active session and notifies registered handlers on every change.
type HTTPProvider struct {
	baseURL   string
	jwtSecret string
	client    *http.Client

	mu       sync.Mutex
	current  *Session
	handlers []Handler
}

// NewHTTPProvider creates a provider client for the given base URL. The JWT
// secret verifies the access tokens the provider issues.
func NewHTTPProvider(baseURL, jwtSecret string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		baseURL:   baseURL,
		jwtSecret: jwtSecret,
		client:    &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type signUpResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type errorResponse struct {
	Message     string `json:"msg"`
	Description string `json:"error_description"`
}

// CurrentSession returns the cached session, or nil when signed out or the
// cached token has expired.
func (p *HTTPProvider) CurrentSession(_ context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil, nil
	}
	if p.current.Expired() {
		p.current = nil
		return nil, nil
	}
	session := *p.current
	return &session, nil
}

// OnSessionChange registers a handler fired on sign-in and sign-out.
func (p *HTTPProvider) OnSessionChange(handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
}

// SignIn performs a password grant and establishes the session.
func (p *HTTPProvider) SignIn(ctx context.Context, creds Credentials) (*Session, error) {
	var resp tokenResponse
	if err := p.post(ctx, "/token?grant_type=password", creds, "", &resp); err != nil {
		return nil, err
	}

	claims, err := DecodeAccessToken(resp.AccessToken, p.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("provider returned an unusable access token: %w", err)
	}

	session := &Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		AccessToken: resp.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}

	p.setSession(session)
	return session, nil
}

// SignUp registers a new identity. It does not establish a session; the
// caller signs in afterwards.
func (p *HTTPProvider) SignUp(ctx context.Context, creds Credentials) (*Identity, error) {
	var resp signUpResponse
	if err := p.post(ctx, "/signup", creds, "", &resp); err != nil {
		return nil, err
	}
	return &Identity{UserID: resp.ID, Email: resp.Email}, nil
}

// SignOut revokes the session at the provider and clears the cached one.
// The local session is cleared even if the revocation call fails.
func (p *HTTPProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	token := ""
	if p.current != nil {
		token = p.current.AccessToken
	}
	p.mu.Unlock()

	if token != "" {
		if err := p.post(ctx, "/logout", nil, token, nil); err != nil {
			logger.Warn().Err(err).Msg("identity provider logout failed, clearing local session anyway")
		}
	}

	p.setSession(nil)
	return nil
}

func (p *HTTPProvider) setSession(session *Session) {
	p.mu.Lock()
	p.current = session
	handlers := make([]Handler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.Unlock()

	for _, handler := range handlers {
		handler(session)
	}
}

func (p *HTTPProvider) post(ctx context.Context, path string, body any, bearer string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return apperrors.NewTransientError(err, "identity provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		message := errResp.Message
		if message == "" {
			message = errResp.Description
		}
		if message == "" {
			message = fmt.Sprintf("identity provider returned status %d", resp.StatusCode)
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
			return &apperrors.Error{Err: apperrors.ErrNotAuthenticated, Kind: apperrors.KindAuthorization, Message: message}
		}
		return apperrors.NewTransientError(fmt.Errorf("status %d", resp.StatusCode), message)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	return nil
}

package jellyfin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/mjpeters/reel/internal/domain"
)

// buildAuthHeader constructs the X-Emby-Authorization header
func buildAuthHeader(token string) string {
	header := fmt.Sprintf(`MediaBrowser Client="%s", Device="%s", DeviceId="%s", Version="%s"`,
		clientName, clientName, deviceID, clientVersion)
	if token != "" {
		header += fmt.Sprintf(`, Token="%s"`, token)
	}
	return header
}

// Authenticate performs a username/password login and returns the access
// token and user id for subsequent requests.
func Authenticate(ctx context.Context, httpClient *http.Client, serverURL, username, password string) (*AuthResponse, error) {
	payload, err := json.Marshal(map[string]string{
		"Username": username,
		"Pw":       password,
	})
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/Users/AuthenticateByName", serverURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Emby-Authorization", buildAuthHeader(""))

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrKindNetwork, err, "media server is unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrKindNetwork, err, "failed to read response")
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, domain.NewError(domain.ErrKindAuthRequired, "invalid username or password")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewError(domain.ErrKindServerRejected, "authentication failed: %d", resp.StatusCode)
	}

	var auth AuthResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return nil, domain.WrapError(domain.ErrKindServerRejected, err, "failed to parse auth response")
	}
	if auth.AccessToken == "" {
		return nil, domain.NewError(domain.ErrKindAuthRequired, "server returned no access token")
	}
	return &auth, nil
}

// Session implements domain.SessionGuard. It validates the stored token
// lazily and re-authenticates with the saved credentials when the server
// rejects it. Validation happens at most once per session unless a later
// request invalidates it.
type Session struct {
	client   *Client
	username string
	password string

	// onToken is called after a successful re-authentication so the new
	// token can be persisted.
	onToken func(token, userID string)

	mu        sync.Mutex
	validated bool
}

// NewSession creates a session guard around a client. username/password
// may be empty when only a token is available; re-authentication is then
// impossible and a rejected token surfaces as auth-required.
func NewSession(client *Client, username, password string, onToken func(token, userID string)) *Session {
	return &Session{
		client:   client,
		username: username,
		password: password,
		onToken:  onToken,
	}
}

// IsAuthenticated reports whether a token is present (it may still be
// stale; EnsureValid confirms it against the server).
func (s *Session) IsAuthenticated() bool {
	return s.client.Token() != ""
}

// EnsureValid confirms the session before a fetch, re-authenticating once
// when the token is rejected.
func (s *Session) EnsureValid(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.validated {
		return nil
	}
	if !s.IsAuthenticated() {
		if err := s.reauthenticate(ctx); err != nil {
			return err
		}
		s.validated = true
		return nil
	}

	err := s.client.Ping(ctx)
	if err == nil {
		s.validated = true
		return nil
	}
	if !errors.Is(err, domain.ErrAuthRequired) {
		return err
	}

	if err := s.reauthenticate(ctx); err != nil {
		return err
	}
	s.validated = true
	return nil
}

// Invalidate forces the next EnsureValid to revalidate (called when a
// fetch comes back unauthorized mid-session).
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.validated = false
	s.mu.Unlock()
}

func (s *Session) reauthenticate(ctx context.Context) error {
	if s.username == "" {
		return domain.ErrAuthRequired
	}
	auth, err := Authenticate(ctx, s.client.httpClient, s.client.baseURL, s.username, s.password)
	if err != nil {
		return err
	}
	s.client.SetCredentials(auth.AccessToken, auth.User.ID)
	if s.onToken != nil {
		s.onToken(auth.AccessToken, auth.User.ID)
	}
	return nil
}

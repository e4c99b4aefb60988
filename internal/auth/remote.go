package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RemoteVerifier delegates token verification to the identity provider's user
// endpoint, authenticating the server-to-server call with a service key.
type RemoteVerifier struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

// NewRemoteVerifier creates a verifier that calls the identity provider at
// baseURL. serviceKey is the gateway's own credential for the provider API.
func NewRemoteVerifier(baseURL, serviceKey string) (*RemoteVerifier, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("identity provider url is required")
	}
	if serviceKey == "" {
		return nil, fmt.Errorf("identity provider service key is required")
	}
	return &RemoteVerifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

var _ Verifier = (*RemoteVerifier)(nil)

type remoteUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type remoteError struct {
	Message string `json:"msg"`
	Error   string `json:"error"`
}

// Verify calls GET {base}/auth/v1/user with the caller's token. A 401 whose
// body mentions expiry maps to ErrTokenExpired; any other 401/403 maps to
// ErrTokenInvalid.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrTokenMissing
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return Identity{}, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.serviceKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("verify token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Identity{}, fmt.Errorf("read verify response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var u remoteUser
		if err := json.Unmarshal(body, &u); err != nil || u.ID == "" {
			return Identity{}, ErrTokenInvalid
		}
		return Identity{ID: u.ID, Email: u.Email}, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		var re remoteError
		_ = json.Unmarshal(body, &re)
		msg := strings.ToLower(re.Message + " " + re.Error)
		if strings.Contains(msg, "expired") {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenInvalid
	default:
		return Identity{}, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}
}

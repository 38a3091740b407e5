package moltin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// tokenManager owns the single cached bearer token for the client.
// Renewal is lazy: the first request after expiry pays the auth round
// trip, there is no background refresh.
type tokenManager struct {
	httpClient   *http.Client
	authURL      string
	clientID     string
	clientSecret string

	mu        sync.Mutex
	token     string
	expiresOn time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func newTokenManager(httpClient *http.Client, baseURL, clientID, clientSecret string) *tokenManager {
	return &tokenManager{
		httpClient:   httpClient,
		authURL:      baseURL + "/oauth/access_token",
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Token returns the cached token, acquiring a fresh one via the
// client-credentials grant if none is cached or the cached one has
// expired. A token is only handed out while its expiry is strictly in
// the future; a token that expires mid-flight is not refreshed.
func (m *tokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && time.Now().Before(m.expiresOn) {
		return m.token, nil
	}

	form := url.Values{
		"client_id":     {m.clientID},
		"client_secret": {m.clientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("access token request failed: unexpected status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode access token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("access token response contains no token")
	}

	m.token = tr.AccessToken
	m.expiresOn = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)

	return m.token, nil
}

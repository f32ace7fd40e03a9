package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/event-notify/internal/domain"
)

// Local store keys for the agent's session.
const (
	keyBearer = "session_bearer"
	keyUserID = "session_user_id"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Client talks to the notification API on behalf of a device. The session
// bearer is kept in the local store so it survives agent restarts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      kvStore
}

func New(baseURL string, store kvStore) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		store:      store,
	}
}

type loginResponse struct {
	Bearer  string          `json:"bearer"`
	Session *domain.Session `json:"session"`
}

// Login starts a session and remembers its bearer and user id.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var res loginResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/v1/sessions/login", "", body, &res); err != nil {
		return "", err
	}
	if res.Bearer == "" || res.Session == nil {
		return "", fmt.Errorf("login response missing session")
	}
	if err := c.store.Set(ctx, keyBearer, res.Bearer); err != nil {
		return "", err
	}
	if err := c.store.Set(ctx, keyUserID, res.Session.UserID); err != nil {
		return "", err
	}
	return res.Session.UserID, nil
}

// Logout ends the remote session and forgets it locally. The local session is
// cleared even when the remote call fails.
func (c *Client) Logout(ctx context.Context) error {
	bearer, ok, err := c.store.Get(ctx, keyBearer)
	if err != nil {
		return err
	}
	var remoteErr error
	if ok {
		remoteErr = c.do(ctx, http.MethodPost, "/v1/sessions/logout", bearer, nil, nil)
		if remoteErr != nil {
			slog.Warn("remote logout failed", "err", remoteErr)
		}
	}
	if err := c.store.Delete(ctx, keyBearer); err != nil {
		return err
	}
	if err := c.store.Delete(ctx, keyUserID); err != nil {
		return err
	}
	return remoteErr
}

// CurrentUserID reports the user of the stored session.
func (c *Client) CurrentUserID(ctx context.Context) (string, bool) {
	userID, ok, err := c.store.Get(ctx, keyUserID)
	if err != nil {
		slog.Warn("failed to read local session", "err", err)
		return "", false
	}
	if !ok || userID == "" {
		return "", false
	}
	if _, ok, _ := c.store.Get(ctx, keyBearer); !ok {
		return "", false
	}
	return userID, true
}

// SetPushToken writes token to the profile of the stored session. The API
// resolves the user from the bearer; userID is used for logging only.
func (c *Client) SetPushToken(ctx context.Context, userID, token string) error {
	bearer, ok, err := c.store.Get(ctx, keyBearer)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no active session: %w", domain.ErrUnauthorized)
	}
	slog.Debug("uploading push token", "user_id", userID)
	return c.do(ctx, http.MethodPut, "/v1/users/me/push-token", bearer, domain.UpdatePushTokenRequest{Token: token}, nil)
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// statusError maps an API error response onto the domain sentinel errors.
func statusError(resp *http.Response) error {
	var env struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := string(raw)
	if json.Unmarshal(raw, &env) == nil && env.Error != "" {
		msg = env.Error
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", msg, domain.ErrUnauthorized)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, domain.ErrForbidden)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w", msg, domain.ErrBadRequest)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fmt.Errorf("%s: %w", msg, domain.ErrUnavailable)
	}
	return fmt.Errorf("api error: status=%d, body=%s", resp.StatusCode, msg)
}

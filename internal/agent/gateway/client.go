package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Session is the credential bundle the auth endpoints hand back.
type Session struct {
	Token        string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Profile is the descriptive user record, fetched separately from the session.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification mirrors the server's notification payload.
type Notification struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   string    `json:"entity_id,omitempty"`
	EntityURL  string    `json:"entity_url,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotificationPage is the notification feed plus its server-computed unread count.
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// Client talks to the ops server's REST API and converts every failure into a
// typed *Error.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the given base URL, e.g. "https://ops.example.com".
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type wireEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do performs the request and decodes the success payload into out (which may
// be nil when the caller only cares about success).
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindInvalid, Message: err.Error()}
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: KindInvalid, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}
	defer res.Body.Close()

	var env wireEnvelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return &Error{Kind: KindNetwork, Message: "malformed server response"}
	}
	if !env.Success {
		return errorFromResponse(res.StatusCode, env)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Kind: KindNetwork, Message: "malformed server response"}
		}
	}
	return nil
}

func errorFromResponse(status int, env wireEnvelope) *Error {
	msg := "request failed"
	if env.Error != nil && env.Error.Message != "" {
		msg = env.Error.Message
	}
	switch status {
	case http.StatusBadRequest, http.StatusForbidden, http.StatusConflict:
		return &Error{Kind: KindInvalid, Message: msg}
	case http.StatusUnauthorized:
		return &Error{Kind: KindExpired, Message: msg}
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, Message: msg}
	default:
		return &Error{Kind: KindNetwork, Message: msg}
	}
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateAccount registers a new account; signup lands authenticated.
func (c *Client) CreateAccount(ctx context.Context, email, password, name string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Refresh exchanges the refresh token for a fresh session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": refreshToken,
	}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Logout revokes the session server-side.
func (c *Client) Logout(ctx context.Context, token, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", token, map[string]string{
		"refresh_token": refreshToken,
	}, nil)
}

// ValidateSession checks the access token and returns the identity it belongs to.
func (c *Client) ValidateSession(ctx context.Context, token string) (userID, role string, err error) {
	var out struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/validate", token, nil, &out); err != nil {
		return "", "", err
	}
	return out.UserID, out.Role, nil
}

// GetUserProfile fetches the caller's profile. A KindNotFound error means the
// account no longer exists.
func (c *Client) GetUserProfile(ctx context.Context, token string) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/profile", token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Notifications fetches the caller's feed with its authoritative unread count.
func (c *Client) Notifications(ctx context.Context, token string) (*NotificationPage, error) {
	var page NotificationPage
	if err := c.do(ctx, http.MethodGet, "/api/v1/notifications", token, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// MarkNotificationRead marks one notification read.
func (c *Client) MarkNotificationRead(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/notifications/"+id+"/read", token, nil, nil)
}

// MarkAllNotificationsRead marks the whole feed read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/notifications/read-all", token, nil, nil)
}

// DeleteNotification removes one notification.
func (c *Client) DeleteNotification(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/notifications/"+id, token, nil, nil)
}

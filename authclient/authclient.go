// fixit/authclient/authclient.go

// Package authclient keeps track of whether the admin session of a FixIt
// server is active, from the client side.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync/atomic"
	"time"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// Holder caches the logged-in state. The session cookie lives in the
// client's cookie jar.
type Holder struct {
	baseURL  string
	client   *http.Client
	loggedIn atomic.Bool
}

// New creates a Holder for the server at baseURL. A nil client gets a default
// one with its own cookie jar.
func New(baseURL string, client *http.Client) (*Holder, error) {
	if client == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		client = &http.Client{Jar: jar, Timeout: 10 * time.Second}
	}
	return &Holder{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}, nil
}

// LoggedIn reports the last known session state. It starts out false.
func (h *Holder) LoggedIn() bool {
	return h.loggedIn.Load()
}

// CheckSession asks the server for the session state. Any failure counts as
// logged out.
func (h *Holder) CheckSession(ctx context.Context) bool {
	var state struct {
		LoggedIn bool `json:"loggedIn"`
	}
	if err := h.do(ctx, http.MethodGet, "/api/auth/session", nil, &state); err != nil {
		h.loggedIn.Store(false)
		return false
	}
	h.loggedIn.Store(state.LoggedIn)
	return state.LoggedIn
}

// Login posts the credentials. The state only changes on success.
func (h *Holder) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	if err := h.do(ctx, http.MethodPost, "/api/auth/login", body, nil); err != nil {
		return err
	}
	h.loggedIn.Store(true)
	return nil
}

// Logout ends the session. The state only changes on success.
func (h *Holder) Logout(ctx context.Context) error {
	if err := h.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	h.loggedIn.Store(false)
	return nil
}

func (h *Holder) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

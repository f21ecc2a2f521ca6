package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/havrydotdev/catclient/pkg/utils"
)

const elybyTimeout = 10 * time.Second

// AuthenticationRejected is returned when Ely.by refuses the credentials or
// cannot be reached. A launch must not go ahead after it.
type AuthenticationRejected struct {
	Message string
	Cause   error
}

func (e *AuthenticationRejected) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication rejected: %s: %v", e.Message, e.Cause)
	}
	return "authentication rejected: " + e.Message
}

func (e *AuthenticationRejected) Unwrap() error {
	return e.Cause
}

type agent struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

type authenticateRequest struct {
	Agent    agent  `json:"agent"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type authenticateResponse struct {
	AccessToken     string `json:"accessToken"`
	SelectedProfile *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"selectedProfile"`
}

type errorResponse struct {
	Error        string `json:"error"`
	ErrorMessage string `json:"errorMessage"`
}

type ElybyAuth struct {
	Username string
	Password string

	url    string
	client *http.Client
}

func NewElybyAuth(username, password string) *ElybyAuth {
	return &ElybyAuth{
		Username: username, Password: password,
		url:    utils.ElybyAuthURL,
		client: &http.Client{Timeout: elybyTimeout},
	}
}

func (a *ElybyAuth) WithURL(url string) *ElybyAuth {
	a.url = url
	return a
}

func (a *ElybyAuth) WithHTTPClient(client *http.Client) *ElybyAuth {
	a.client = client
	return a
}

// Authenticate performs a single exchange with the Ely.by auth server.
func (a *ElybyAuth) Authenticate(ctx context.Context) (Session, error) {
	body, err := json.Marshal(authenticateRequest{
		Agent:    agent{Name: "Minecraft", Version: 1},
		Username: a.Username,
		Password: a.Password,
	})
	if err != nil {
		return Session{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return Session{}, &AuthenticationRejected{Message: "invalid auth request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", utils.UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return Session{}, &AuthenticationRejected{Message: "auth failed", Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Session{}, &AuthenticationRejected{Message: "failed to read auth response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return Session{}, &AuthenticationRejected{Message: rejectionMessage(resp.Status, data)}
	}

	var out authenticateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return Session{}, &AuthenticationRejected{Message: "malformed auth response", Cause: err}
	}

	if out.SelectedProfile == nil || out.SelectedProfile.ID == "" || out.AccessToken == "" {
		return Session{}, &AuthenticationRejected{Message: "no profile selected for account"}
	}

	username := out.SelectedProfile.Name
	if username == "" {
		username = a.Username
	}

	return Session{
		Kind:     KindElyby,
		Username: username,
		UUID:     out.SelectedProfile.ID,
		Token:    out.AccessToken,
	}, nil
}

func rejectionMessage(status string, body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.ErrorMessage != "" {
		return e.ErrorMessage
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}

	return status
}

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
)

// HTTPNotifier delivers password reset tokens to the external e-mail API.
// A single attempt is made per call.
type HTTPNotifier struct {
	baseURL string
	client  *http.Client
}

func NewHTTPNotifier(baseURL string, timeout time.Duration) *HTTPNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPNotifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type resetEmailPayload struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (n *HTTPNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	body, err := json.Marshal(resetEmailPayload{Email: email, Token: token})
	if err != nil {
		return fmt.Errorf("encoding reset payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/reset-password/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building reset request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling email api: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("email api returned status %d", resp.StatusCode)
	}
	return nil
}

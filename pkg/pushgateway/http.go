package pushgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HTTPGateway sends pushes through a REST push provider
type HTTPGateway struct {
	BaseURL    string
	APISecret  string
	Issuer     string
	httpClient *http.Client
}

// NewHTTPGateway creates a new HTTPGateway
func NewHTTPGateway(baseURL, apiSecret string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		BaseURL:   baseURL,
		APISecret: apiSecret,
		Issuer:    "tourbook-backend",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (g *HTTPGateway) Name() string { return "HTTP" }

// accessToken signs a short-lived token the provider uses to authenticate us
func (g *HTTPGateway) accessToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    g.Issuer,
		Subject:   "push-dispatch",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(g.APISecret))
}

// Send posts the push to the provider and returns its message id
func (g *HTTPGateway) Send(ctx context.Context, msg Message) (string, error) {
	jsonBody, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	var response struct {
		MessageID string `json:"messageId"`
	}
	if err := g.do(ctx, http.MethodPost, g.BaseURL+"/push", bytes.NewReader(jsonBody), &response); err != nil {
		return "", err
	}
	return response.MessageID, nil
}

// GetDeliveryStatus asks the provider for the delivery status of a message
func (g *HTTPGateway) GetDeliveryStatus(ctx context.Context, messageID string) (string, error) {
	var response struct {
		Status string `json:"status"`
	}
	endpoint := fmt.Sprintf("%s/push/status/%s", g.BaseURL, url.PathEscape(messageID))
	if err := g.do(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return "", err
	}
	if response.Status == StatusPending {
		return StatusPending, ErrStatusPending
	}
	return response.Status, nil
}

func (g *HTTPGateway) do(ctx context.Context, method, endpoint string, body io.Reader, out any) error {
	token, err := g.accessToken()
	if err != nil {
		return fmt.Errorf("failed to sign access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

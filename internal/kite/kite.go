package kite

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://api.kite.trade"

// Client defines the interface for the Kite Connect endpoints the journal
// consumes. This interface enables dependency injection and testing with mock
// implementations.
type Client interface {
	LoginURL() string
	ExchangeToken(ctx context.Context, requestToken string) (string, error)
	GetOrders(ctx context.Context, accessToken string) ([]Order, error)
	GetHoldings(ctx context.Context, accessToken string) ([]Holding, error)
}

// ConnectClient provides methods for the Kite Connect v3 REST API.
// It wraps an HTTP client and carries the API key/secret pair used for the
// login redirect and the checksum-based token exchange.
type ConnectClient struct {
	httpClient *http.Client
	apiKey     string
	apiSecret  string
	baseURL    string
}

// NewConnectClient creates a new Kite client with default HTTP settings.
func NewConnectClient(apiKey, apiSecret string) *ConnectClient {
	return &ConnectClient{
		httpClient: &http.Client{},
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    defaultBaseURL,
	}
}

// LoginURL returns the Kite Connect login redirect for this API key.
func (c *ConnectClient) LoginURL() string {
	return fmt.Sprintf("https://kite.trade/connect/login?api_key=%s&v=3", url.QueryEscape(c.apiKey))
}

// ExchangeToken exchanges the request_token from the login redirect for an
// access token. The checksum is SHA-256 over api_key + request_token +
// api_secret, per the Kite Connect session flow.
func (c *ConnectClient) ExchangeToken(ctx context.Context, requestToken string) (string, error) {
	if requestToken == "" {
		return "", fmt.Errorf("request token is required")
	}

	sum := sha256.Sum256([]byte(c.apiKey + requestToken + c.apiSecret))

	form := url.Values{}
	form.Set("api_key", c.apiKey)
	form.Set("request_token", requestToken)
	form.Set("checksum", hex.EncodeToString(sum[:]))

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/session/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Kite-Version", "3")

	var response sessionResponse
	if err := c.do(req, &response); err != nil {
		return "", err
	}
	if response.Data.AccessToken == "" {
		return "", fmt.Errorf("kite error: %s", response.Message)
	}

	return response.Data.AccessToken, nil
}

// GetOrders fetches today's orders for the session. Callers filter on the
// COMPLETE status; the client returns all rows as the API reports them.
func (c *ConnectClient) GetOrders(ctx context.Context, accessToken string) ([]Order, error) {
	req, err := c.authorizedGet(ctx, "/orders", accessToken)
	if err != nil {
		return nil, err
	}

	var response ordersResponse
	if err := c.do(req, &response); err != nil {
		return nil, err
	}
	if response.Status != "success" {
		return nil, fmt.Errorf("kite error: %s", response.Message)
	}

	return response.Data, nil
}

// GetHoldings fetches the account's long-term holdings.
func (c *ConnectClient) GetHoldings(ctx context.Context, accessToken string) ([]Holding, error) {
	req, err := c.authorizedGet(ctx, "/portfolio/holdings", accessToken)
	if err != nil {
		return nil, err
	}

	var response holdingsResponse
	if err := c.do(req, &response); err != nil {
		return nil, err
	}
	if response.Status != "success" {
		return nil, fmt.Errorf("kite error: %s", response.Message)
	}

	return response.Data, nil
}

func (c *ConnectClient) authorizedGet(ctx context.Context, path, accessToken string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Kite-Version", "3")
	req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", c.apiKey, accessToken))
	return req, nil
}

func (c *ConnectClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		// Error bodies carry a message field; fold it into the error when present.
		var errBody struct {
			Message string `json:"message"`
		}
		//nolint:errcheck // best-effort decode of the error envelope
		json.Unmarshal(data, &errBody)
		return fmt.Errorf("kite http %d: %s", resp.StatusCode, errBody.Message)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode kite response: %w", err)
	}

	return nil
}

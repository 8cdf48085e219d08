// Package api implements the wallet.Backend contract against the platform
// payment REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rentiva/walletsync/internal/logging"
	"github.com/rentiva/walletsync/internal/wallet"
)

const (
	balancePath      = "/payment/wallet/balance"
	topupPath        = "/payment/topup"
	transactionsPath = "/payment/transactions"
)

// HTTPClient talks to the payment API with a bearer token issued outside
// this process.
type HTTPClient struct {
	base   string
	token  string
	client *http.Client
	logger *slog.Logger
}

var _ wallet.Backend = (*HTTPClient)(nil)

// NewHTTPClient builds the payment API client. Timeouts live here; the
// store deliberately adds none of its own.
func NewHTTPClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = logging.Discard()
	}
	return &HTTPClient{
		base:   baseURL,
		token:  token,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// WalletBalance fetches the raw balance payload. The body is returned
// undecoded past JSON because its envelope shape varies; extraction is the
// store's concern.
func (c *HTTPClient) WalletBalance(ctx context.Context) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, balancePath, nil, nil)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode balance payload: %w", err)
	}
	return payload, nil
}

// CreateTopup opens a payment session for the amount.
func (c *HTTPClient) CreateTopup(ctx context.Context, amount int64) (wallet.TopupSession, error) {
	body, err := c.do(ctx, http.MethodPost, topupPath, nil, map[string]int64{"amount": amount})
	if err != nil {
		return wallet.TopupSession{}, err
	}

	var out struct {
		Data struct {
			Transaction struct {
				ID string `json:"id"`
			} `json:"transaction"`
			CheckoutURL string `json:"checkoutUrl"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return wallet.TopupSession{}, fmt.Errorf("decode topup response: %w", err)
	}
	return wallet.TopupSession{
		TransactionID: out.Data.Transaction.ID,
		CheckoutURL:   out.Data.CheckoutURL,
	}, nil
}

// Transactions fetches one filtered page of wallet history.
func (c *HTTPClient) Transactions(ctx context.Context, query wallet.ListQuery) (wallet.TransactionPage, error) {
	values := url.Values{}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Type != "" {
		values.Set("type", string(query.Type))
	}
	if query.Status != "" {
		values.Set("status", string(query.Status))
	}

	body, err := c.do(ctx, http.MethodGet, transactionsPath, values, nil)
	if err != nil {
		return wallet.TransactionPage{}, err
	}

	var out struct {
		Metadata wallet.TransactionPage `json:"metadata"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return wallet.TransactionPage{}, fmt.Errorf("decode transactions response: %w", err)
	}
	return out.Metadata, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	endpoint := c.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call payment api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read payment api response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("payment api error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
		)
		return nil, &wallet.BackendError{
			Status:  resp.StatusCode,
			Message: serverMessage(body),
		}
	}

	return body, nil
}

// serverMessage pulls the backend's human-readable message out of an error
// body, if it sent one.
func serverMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"skybook/models"
)

// httpClient is the TBO-style REST implementation of Client.
type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient returns a Client speaking JSON to the provider gateway.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// envelope is the provider's wire response shape.
type envelope struct {
	Status string          `json:"status"`
	Error  *wireError      `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *httpClient) post(ctx context.Context, path, idempotencyKey string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal provider request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Timeouts and connection failures are retryable.
		return NewTransientError("network", err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewTransientError("network", err.Error())
	}

	switch {
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusRequestTimeout:
		return NewTransientError("providerUnavailable", fmt.Sprintf("%s returned %d", path, resp.StatusCode))
	case resp.StatusCode >= 400:
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
			if env.Error.Code == "offerExpired" {
				return ErrOfferExpired
			}
			return NewFatalError(env.Error.Code, env.Error.Message)
		}
		return NewFatalError("badRequest", fmt.Sprintf("%s returned %d", path, resp.StatusCode))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return NewTransientError("badResponse", fmt.Sprintf("unparseable response from %s", path))
	}
	if env.Error != nil {
		if env.Error.Code == "offerExpired" {
			return ErrOfferExpired
		}
		return NewFatalError(env.Error.Code, env.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return NewTransientError("badResponse", fmt.Sprintf("unparseable payload from %s", path))
		}
	}
	return nil
}

func (c *httpClient) Search(ctx context.Context, params models.SearchParams) (*SearchResult, error) {
	var result SearchResult
	if err := c.post(ctx, "/flights/search", "", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) FareQuote(ctx context.Context, traceID string, resultIndex int) (*models.FareQuote, error) {
	payload := map[string]any{"traceId": traceID, "resultIndex": resultIndex}
	var quote models.FareQuote
	if err := c.post(ctx, "/flights/fare-quote", "", payload, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *httpClient) ServiceCatalog(ctx context.Context, traceID string, resultIndex int) (*models.ServiceCatalog, error) {
	payload := map[string]any{"traceId": traceID, "resultIndex": resultIndex}
	var catalog models.ServiceCatalog
	if err := c.post(ctx, "/flights/ssr", "", payload, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (c *httpClient) Book(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	var result BookingResult
	if err := c.post(ctx, "/flights/book", req.IdempotencyKey, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) Ticket(ctx context.Context, req TicketRequest) (*TicketResult, error) {
	var result TicketResult
	if err := c.post(ctx, "/flights/ticket", req.IdempotencyKey, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) TicketDirect(ctx context.Context, req BookingRequest) (*TicketResult, error) {
	// LCC carriers skip the hold step: one ticket call books and issues.
	var result TicketResult
	if err := c.post(ctx, "/flights/ticket", req.IdempotencyKey, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) Cancel(ctx context.Context, req CancelRequest) error {
	return c.post(ctx, "/flights/cancel", "", req, nil)
}

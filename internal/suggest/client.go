package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mossline/ledgermind/internal/common"
	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
)

// Client talks to the insight service over JSON/HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Wire types. The schema is owned by the insight service.
type suggestionRequest struct {
	Description string   `json:"description"`
	Amount      *float64 `json:"amount,omitempty"`
	AccountID   string   `json:"account_id,omitempty"`
	AccountType string   `json:"account_type,omitempty"`
}

type wireSuggestion struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Reason     string  `json:"reason,omitempty"`
	Color      string  `json:"color,omitempty"`
	Confidence float64 `json:"confidence"`
}

type suggestionResponse struct {
	PayeeSuggestions    []wireSuggestion `json:"payee_suggestions"`
	CategorySuggestions []wireSuggestion `json:"category_suggestions"`
}

// NewClient creates an insight service client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchSuggestions requests ranked payee and category suggestions.
func (c *Client) FetchSuggestions(ctx context.Context, req service.SuggestionRequest) (*service.SuggestionResponse, error) {
	body := suggestionRequest{
		Description: req.Description,
		Amount:      req.Amount,
		AccountID:   req.AccountID,
		AccountType: string(req.AccountType),
	}

	var wire suggestionResponse
	if err := c.post(ctx, "/v1/suggestions", body, &wire); err != nil {
		return nil, err
	}

	return &service.SuggestionResponse{
		Payees:     fromWire(wire.PayeeSuggestions),
		Categories: fromWire(wire.CategorySuggestions),
	}, nil
}

// RecordSelection reports a committed user selection to the insight service.
func (c *Client) RecordSelection(ctx context.Context, event model.SelectionEvent) error {
	return c.post(ctx, "/v1/selections", event, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &common.RetryableError{Err: fmt.Errorf("insight service request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return common.ErrRateLimit
	case resp.StatusCode >= 500:
		return &common.RetryableError{
			Err:       fmt.Errorf("insight service error: status %d", resp.StatusCode),
			Retryable: true,
		}
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &common.RetryableError{
			Err:       fmt.Errorf("insight service rejected request: status %d: %s", resp.StatusCode, string(body)),
			Retryable: false,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func fromWire(wire []wireSuggestion) model.Suggestions {
	suggestions := make(model.Suggestions, 0, len(wire))
	for _, w := range wire {
		suggestionType := model.SuggestionType(w.Type)
		if suggestionType != model.SuggestionExisting {
			suggestionType = model.SuggestionAI
		}
		suggestions = append(suggestions, model.Suggestion{
			ID:         w.ID,
			Name:       w.Name,
			Type:       suggestionType,
			Confidence: w.Confidence,
			Reason:     w.Reason,
			Color:      w.Color,
		})
	}
	return suggestions
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/model"
)

// PaymentsClient requests payment links from the payments microservice.
// This is the only synchronous request/reply exchange with the payment
// side; everything else arrives through the broker.
type PaymentsClient struct {
	baseURL string
	http    *http.Client
}

// NewPaymentsClient builds a client for the given base URL.
func NewPaymentsClient(baseURL string) *PaymentsClient {
	return &PaymentsClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// CreatePaymentLink asks the payments service for a checkout link for the
// given booking. The returned ids are stored on the booking so the
// payment events arriving later can be correlated.
func (c *PaymentsClient) CreatePaymentLink(ctx context.Context, reqBody model.PaymentLinkRequest) (*model.PaymentLinkResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment-link", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payments service: unexpected status %d", resp.StatusCode)
	}
	var out model.PaymentLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("payments service: decode: %w", err)
	}
	return &out, nil
}

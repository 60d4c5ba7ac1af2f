package sms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPGateway sends SMS through a JSON-over-HTTP provider API
type HTTPGateway struct {
	apiURL   string
	apiKey   string
	senderID string
	client   *http.Client
}

// HTTPConfig holds configuration for the HTTP SMS gateway
type HTTPConfig struct {
	APIURL   string
	APIKey   string
	SenderID string
}

// NewHTTPGateway creates a new HTTP SMS gateway client
func NewHTTPGateway(config HTTPConfig) *HTTPGateway {
	return &HTTPGateway{
		apiURL:   config.APIURL,
		apiKey:   config.APIKey,
		senderID: config.SenderID,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// sendRequest is the provider's message payload
type sendRequest struct {
	APIKey   string `json:"api_key"`
	SenderID string `json:"sender_id"`
	Number   string `json:"number"`
	Message  string `json:"message"`
}

// sendResponse is the provider's reply
type sendResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	ErrCode string `json:"err_code"`
}

// Send delivers a message to the given phone number
func (g *HTTPGateway) Send(phone, message string) error {
	payload := sendRequest{
		APIKey:   g.apiKey,
		SenderID: g.senderID,
		Number:   phone,
		Message:  message,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SMS request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read SMS response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS provider returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result sendResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to parse SMS response: %w", err)
	}

	if result.Status != "success" {
		return fmt.Errorf("SMS provider rejected message: %s (%s)", result.Comment, result.ErrCode)
	}

	return nil
}

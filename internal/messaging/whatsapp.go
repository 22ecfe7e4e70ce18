// Package messaging holds the WhatsApp delivery boundary and the message
// template helpers. Delivery is best-effort: callers surface a failed Result
// to the user but never treat it as fatal to the triggering operation.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Result reports the outcome of one send attempt.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Sender delivers a WhatsApp message to a phone number.
type Sender interface {
	SendWhatsAppMessage(ctx context.Context, phoneNumber, message string) (Result, error)
}

// GatewayConfig configures the hosted WhatsApp gateway API.
type GatewayConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// gatewaySender implements Sender against the gateway's JSON-over-HTTP API.
type gatewaySender struct {
	cfg    GatewayConfig
	client *http.Client
}

// NewGatewaySender creates a Sender for the configured gateway.
func NewGatewaySender(cfg GatewayConfig) (Sender, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("whatsapp gateway base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &gatewaySender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type sendRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

type sendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SendWhatsAppMessage posts one message to the gateway. A delivery rejection
// comes back as an unsuccessful Result with nil error; a transport failure is
// returned as an error.
func (s *gatewaySender) SendWhatsAppMessage(ctx context.Context, phoneNumber, message string) (Result, error) {
	if phoneNumber == "" {
		return Result{Success: false, Error: "phone number is required"}, nil
	}

	body, err := json.Marshal(sendRequest{PhoneNumber: phoneNumber, Message: message})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	var decoded sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !decoded.Success {
		msg := decoded.Error
		if msg == "" {
			msg = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
		return Result{Success: false, Error: msg}, nil
	}

	return Result{Success: true}, nil
}

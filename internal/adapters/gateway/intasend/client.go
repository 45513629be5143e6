// Package intasend is the IntaSend adapter behind the PaymentGateway port.
//
// The provider's wire contract has drifted across API versions (endpoint
// paths, payload shapes and response fields), so this package is deliberately
// tolerant when reading responses and is the single place to update when the
// contract moves again.
package intasend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samuelmanoizy/intuipay-dashboard/internal/apperrors"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/core/ports/gateway"
)

const (
	collectionPath   = "/api/v1/payment/mpesa-stk-push/"
	payoutPath       = "/api/v1/payment/transfer"
	payoutStatusPath = "/api/v1/payment/status/"

	maxResponseBytes = 1 << 20
)

// Config holds the credentials and tuning for the IntaSend client.
type Config struct {
	BaseURL   string
	PublicKey string
	SecretKey string
	Currency  string
	Timeout   time.Duration
}

// Client talks to the IntaSend collection and payout APIs.
type Client struct {
	cfg    Config
	httpc  *http.Client
	logger *slog.Logger
}

var _ gateway.PaymentGateway = (*Client)(nil)

// NewClient creates an IntaSend gateway client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// InitiateCollection registers an inbound payment with the provider. The
// funds-in leg runs through the provider's checkout widget, so this call only
// books the request and yields the reference later echoed by notifications.
func (c *Client) InitiateCollection(ctx context.Context, req gateway.CollectionRequest) (*gateway.DispatchResult, error) {
	payload := map[string]any{
		"amount":   req.Amount.String(),
		"currency": c.cfg.Currency,
		"api_ref":  req.APIRef,
	}
	if req.Phone != "" {
		payload["phone_number"] = req.Phone
	}
	if req.PayerName != "" {
		payload["name"] = req.PayerName
	}

	env, err := c.do(ctx, collectionPath, payload)
	if err != nil {
		return nil, err
	}
	ref := env.reference()
	if ref == "" {
		return nil, fmt.Errorf("%w: collection response carries no reference", apperrors.ErrGatewayMalformedResponse)
	}
	return &gateway.DispatchResult{Reference: ref}, nil
}

// InitiatePayout starts an outbound transfer to a mobile money account.
func (c *Client) InitiatePayout(ctx context.Context, req gateway.PayoutRequest) (*gateway.DispatchResult, error) {
	txn := map[string]any{
		"account": req.Destination,
		"amount":  req.Amount.String(),
	}
	if req.RecipientName != "" {
		txn["name"] = req.RecipientName
	}
	if req.Narrative != "" {
		txn["narrative"] = req.Narrative
	}
	payload := map[string]any{
		"currency":          c.cfg.Currency,
		"transactions":      []map[string]any{txn},
		"requires_approval": "NO",
	}

	env, err := c.do(ctx, payoutPath, payload)
	if err != nil {
		return nil, err
	}
	ref := env.reference()
	if ref == "" {
		return nil, fmt.Errorf("%w: payout response carries no reference", apperrors.ErrGatewayMalformedResponse)
	}
	return &gateway.DispatchResult{Reference: ref}, nil
}

// QueryPayoutStatus fetches the remote state of a payout and normalizes the
// provider's status vocabulary onto the four PayoutState values.
func (c *Client) QueryPayoutStatus(ctx context.Context, reference string) (gateway.PayoutState, error) {
	env, err := c.do(ctx, payoutStatusPath, map[string]any{"tracking_id": reference})
	if err != nil {
		return "", err
	}
	return mapPayoutState(env.stateText())
}

// apiEnvelope covers the union of response shapes observed across provider
// API versions. Fields are read on a first-match basis.
type apiEnvelope struct {
	TrackingID string `json:"tracking_id"`
	FileID     string `json:"file_id"`
	CheckoutID string `json:"checkout_id"`
	Status     string `json:"status"`
	State      string `json:"state"`
	Invoice    *struct {
		InvoiceID string `json:"invoice_id"`
		State     string `json:"state"`
	} `json:"invoice"`
}

func (e *apiEnvelope) reference() string {
	refs := []string{e.TrackingID, e.FileID, e.CheckoutID}
	if e.Invoice != nil {
		refs = append(refs, e.Invoice.InvoiceID)
	}
	for _, ref := range refs {
		if ref != "" {
			return ref
		}
	}
	return ""
}

func (e *apiEnvelope) stateText() string {
	if e.Status != "" {
		return e.Status
	}
	if e.State != "" {
		return e.State
	}
	if e.Invoice != nil {
		return e.Invoice.State
	}
	return ""
}

// errorEnvelope extracts a human-readable rejection message, wherever the
// provider put it this time.
type errorEnvelope struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Error   string `json:"error"`
}

func (e *errorEnvelope) text() string {
	for _, s := range []string{e.Message, e.Detail, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) do(ctx context.Context, path string, payload any) (*apiEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gateway request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("X-IntaSend-Public-API-Key", c.cfg.PublicKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrGatewayUnreachable, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %v", apperrors.ErrGatewayUnreachable, path, err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: %s returned HTTP %d", apperrors.ErrGatewayUnreachable, path, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		var ee errorEnvelope
		_ = json.Unmarshal(raw, &ee)
		msg := ee.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.logger.Warn("Gateway rejected request", slog.String("path", path), slog.Int("status", resp.StatusCode), slog.String("message", msg))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrGatewayRejected, msg)
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrGatewayMalformedResponse, path, err)
	}
	return &env, nil
}

// mapPayoutState normalizes the provider's payout status vocabulary.
// Historical snapshots disagree on the exact spelling, hence the breadth.
func mapPayoutState(raw string) (gateway.PayoutState, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "NEW", "PENDING", "QUEUED", "PREVIEW", "PREVIEW AND APPROVE":
		return gateway.PayoutQueued, nil
	case "PROCESSING", "SENDING", "SENDING PAYMENT":
		return gateway.PayoutProcessing, nil
	case "COMPLETE", "COMPLETED", "SUCCESS", "SUCCESSFUL", "PAID":
		return gateway.PayoutCompleted, nil
	case "FAILED", "FAILURE", "CANCELLED", "CANCELED", "REJECTED", "DECLINED":
		return gateway.PayoutRejected, nil
	}
	return "", fmt.Errorf("%w: unknown payout status %q", apperrors.ErrGatewayMalformedResponse, raw)
}

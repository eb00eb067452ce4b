package paymentControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Pixel0001/Nutopia-sub001/apperr"
	"github.com/Pixel0001/Nutopia-sub001/config"
	"github.com/shopspring/decimal"
)

// IntentMetadata is attached to the gateway order at intent-creation time and
// read back at capture time. It is the sole source of truth for reconciling a
// capture: amounts arriving from the client or echoed by the gateway response
// are never re-trusted for order totals. Values are origin-currency MDL.
type IntentMetadata struct {
	UserID       string          `json:"user_id"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	TotalMDL     decimal.Decimal `json:"total_mdl"`
}

type CaptureResult struct {
	IntentID string
	Status   string
	Meta     IntentMetadata
}

// Client speaks the gateway's checkout-orders REST API: create an order for
// the converted amount, then capture it by id after buyer approval. Capture
// is idempotent on the gateway side, keyed by the order id.
type Client struct {
	cfg    config.PaymentConfig
	client *http.Client
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 20 * time.Second},
	}
}

func (cl *Client) Config() config.PaymentConfig { return cl.cfg }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type gatewayOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
	PurchaseUnits []struct {
		CustomID string `json:"custom_id"`
	} `json:"purchase_units"`
}

func (cl *Client) accessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cl.cfg.APIBase+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(cl.cfg.ClientID, cl.cfg.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := cl.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway auth error (%d): %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
		return "", fmt.Errorf("failed to parse gateway token response")
	}
	return tok.AccessToken, nil
}

func (cl *Client) call(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	token, err := cl.accessToken(ctx)
	if err != nil {
		return 0, nil, err
	}

	var buf io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		buf = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, cl.cfg.APIBase+path, buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := cl.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body, nil
}

// CreateIntent opens a gateway order for the converted amount, carrying the
// trusted MDL metadata in the order's custom field.
func (cl *Client) CreateIntent(ctx context.Context, amount decimal.Decimal, meta IntentMetadata) (intentID, approveURL string, err error) {
	if !cl.cfg.Configured() {
		return "", "", apperr.ErrPaymentConfig
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", "", err
	}

	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"amount": map[string]string{
				"currency_code": cl.cfg.Currency,
				"value":         amount.StringFixed(2),
			},
			"custom_id": string(metaJSON),
		}},
		"application_context": map[string]string{
			"return_url": cl.cfg.ReturnURL,
			"cancel_url": cl.cfg.CancelURL,
		},
	}

	status, body, err := cl.call(ctx, http.MethodPost, "/v2/checkout/orders", payload)
	if err != nil {
		return "", "", err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return "", "", fmt.Errorf("gateway create error (%d): %s", status, string(body))
	}

	var order gatewayOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return "", "", fmt.Errorf("failed to parse gateway response: %w", err)
	}
	if order.ID == "" {
		return "", "", fmt.Errorf("gateway returned empty order id")
	}

	for _, link := range order.Links {
		if link.Rel == "approve" {
			approveURL = link.Href
		}
	}

	return order.ID, approveURL, nil
}

// Capture finalizes the payment. A gateway failure surfaces as
// apperr.ErrCaptureFailed with no local state touched; retrying with the same
// intent id is safe. A replay against an already-captured intent is treated
// as success so the caller's order-creation idempotency can take over.
func (cl *Client) Capture(ctx context.Context, intentID string) (*CaptureResult, error) {
	if !cl.cfg.Configured() {
		return nil, apperr.ErrPaymentConfig
	}

	status, body, err := cl.call(ctx, http.MethodPost, "/v2/checkout/orders/"+intentID+"/capture", map[string]any{})
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusCreated || status == http.StatusOK:
		var order gatewayOrder
		if err := json.Unmarshal(body, &order); err != nil {
			return nil, fmt.Errorf("failed to parse gateway response: %w", err)
		}
		if order.Status != "COMPLETED" {
			return nil, fmt.Errorf("gateway reported status %s: %w", order.Status, apperr.ErrCaptureFailed)
		}
	case status == http.StatusUnprocessableEntity && bytes.Contains(body, []byte("ORDER_ALREADY_CAPTURED")):
		// Replayed capture; fall through and reconcile from the stored order.
	default:
		return nil, fmt.Errorf("gateway capture error (%d): %s: %w", status, string(body), apperr.ErrCaptureFailed)
	}

	return cl.getOrder(ctx, intentID)
}

// getOrder fetches the gateway order to read back the stored metadata.
func (cl *Client) getOrder(ctx context.Context, intentID string) (*CaptureResult, error) {
	status, body, err := cl.call(ctx, http.MethodGet, "/v2/checkout/orders/"+intentID, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("gateway order lookup error (%d): %s", status, string(body))
	}

	var order gatewayOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}
	if len(order.PurchaseUnits) == 0 || order.PurchaseUnits[0].CustomID == "" {
		return nil, fmt.Errorf("gateway order %s carries no metadata", intentID)
	}

	var meta IntentMetadata
	if err := json.Unmarshal([]byte(order.PurchaseUnits[0].CustomID), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse intent metadata: %w", err)
	}
	if meta.UserID == "" {
		return nil, fmt.Errorf("intent metadata for %s has no user", intentID)
	}

	return &CaptureResult{IntentID: order.ID, Status: order.Status, Meta: meta}, nil
}

// settlementAmount converts an MDL total to the gateway settlement currency
// at the fixed configured rate, then raises it to the gateway minimum
// chargeable amount when the conversion lands below it. Convert first, then
// floor; the MDL metadata is untouched by this rounding.
func settlementAmount(cfg config.PaymentConfig, totalMDL decimal.Decimal) decimal.Decimal {
	amount := totalMDL.Div(cfg.MDLPerUnit).Round(2)
	if amount.LessThan(cfg.MinCharge) {
		amount = cfg.MinCharge
	}
	return amount
}

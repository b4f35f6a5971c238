package qiwi

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/olegsm/billgate/internal/entity"
	"github.com/olegsm/billgate/pkg/config"
	"github.com/olegsm/billgate/pkg/transport"
)

// Client talks to the QIWI p2p billing API:
// https://developer.qiwi.com/en/p2p-payments
//
// The API is keyed by a caller-supplied bill id: PUT creates the bill if
// absent and fetches it otherwise, GET reads its status, GET /reject asks
// for cancellation. The configured secret key is the bearer token for all
// three and the HMAC key for webhook verification.
type Client struct {
	cfg    config.Qiwi
	create *http.Client
	poll   *http.Client
	now    func() time.Time
}

func NewClient(cfg config.Qiwi) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg: cfg,
		create: &http.Client{
			Timeout:   cfg.CreateTimeout,
			Transport: transport.NewLoggingRoundTripper(http.DefaultTransport),
		},
		poll: &http.Client{
			Timeout:   cfg.PollTimeout,
			Transport: transport.NewLoggingRoundTripper(http.DefaultTransport),
		},
		now: time.Now,
	}
}

type createBillRequest struct {
	Amount             amountBody     `json:"amount"`
	ExpirationDateTime string         `json:"expirationDateTime"`
	Comment            string         `json:"comment,omitempty"`
	Customer           *customerBody  `json:"customer,omitempty"`
	CustomFields       map[string]any `json:"customFields,omitempty"`
}

type amountBody struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type customerBody struct {
	Email string `json:"email,omitempty"`
}

type billResponse struct {
	BillID string     `json:"billId"`
	SiteID string     `json:"siteId"`
	Amount amountBody `json:"amount"`
	Status struct {
		Value           string `json:"value"`
		ChangedDateTime string `json:"changedDateTime"`
	} `json:"status"`
	PayURL string `json:"payUrl"`
}

// IssueInvoice creates the bill (or fetches it, if a bill with this id
// already exists) and returns the payment URL together with the expiration
// timestamp sent to the provider.
func (c *Client) IssueInvoice(ctx context.Context, inv entity.InvoiceRequest) (string, time.Time, error) {
	minutes := inv.ValidityMinutes
	if minutes <= 0 {
		minutes = entity.DefaultValidityMinutes
	}

	expiresAt := c.now().UTC().Add(time.Duration(minutes) * time.Minute).Truncate(time.Second)

	reqData := createBillRequest{
		Amount: amountBody{
			Currency: c.cfg.Currency,
			Value:    inv.Amount.StringFixed(2),
		},
		ExpirationDateTime: expiresAt.Format("2006-01-02T15:04:05-07:00"),
		Comment:            inv.Comment,
	}

	if inv.CustomerEmail != "" {
		reqData.Customer = &customerBody{Email: inv.CustomerEmail}
	}

	b, err := json.Marshal(reqData)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("marshal request: %w", err)
	}

	reqURL := c.cfg.BaseURL + "/" + inv.BillID.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(b))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req)

	respData, err := c.do(ctx, c.create, req, "create bill")
	if err != nil {
		return "", time.Time{}, err
	}

	return respData.PayURL, expiresAt, nil
}

// BillStatus reads the current provider-side status of the bill.
func (c *Client) BillStatus(ctx context.Context, billID uuid.UUID) (entity.BillStatus, error) {
	reqURL := c.cfg.BaseURL + "/" + billID.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	c.setAuthHeaders(req)

	respData, err := c.do(ctx, c.poll, req, "bill status")
	if err != nil {
		return "", err
	}

	status, err := entity.ParseBillStatus(respData.Status.Value)
	if err != nil {
		return "", fmt.Errorf("bill %s status %q: %w", billID, respData.Status.Value, err)
	}

	return status, nil
}

// Reject asks the provider to cancel the bill. A successful cancellation
// comes back as REJECTED.
func (c *Client) Reject(ctx context.Context, billID uuid.UUID) (entity.BillStatus, error) {
	reqURL := c.cfg.BaseURL + "/" + billID.String() + "/reject"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	c.setAuthHeaders(req)

	respData, err := c.do(ctx, c.poll, req, "reject bill")
	if err != nil {
		return "", err
	}

	status, err := entity.ParseBillStatus(respData.Status.Value)
	if err != nil {
		return "", fmt.Errorf("bill %s status %q: %w", billID, respData.Status.Value, err)
	}

	return status, nil
}

// VerifySignature recomputes the webhook HMAC-SHA256 over the canonical
// five-field string and compares it with the X-Api-Signature-SHA256 value.
// An unset secret key is a configuration error, not a mismatch.
func (c *Client) VerifySignature(signature string, cb entity.Callback) (bool, error) {
	if c.cfg.SecretKey == "" {
		return false, entity.ErrNoSecretKey
	}

	mac := hmac.New(sha256.New, []byte(c.cfg.SecretKey))
	mac.Write([]byte(cb.SignatureBase()))

	digest := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(digest), []byte(strings.ToLower(signature))), nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
}

// do performs the request and absorbs every transport or provider failure
// into a typed error, logging enough context to diagnose it. Callers never
// see raw transport errors.
func (c *Client) do(ctx context.Context, hc *http.Client, req *http.Request, op string) (billResponse, error) {
	resp, err := hc.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "qiwi protocol error", "op", op, "error", err)
		return billResponse{}, fmt.Errorf("%s: %w: %w", op, entity.ErrProviderUnavailable, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.ErrorContext(ctx, "qiwi read response", "op", op, "error", err)
		return billResponse{}, fmt.Errorf("%s: %w: read response: %w", op, entity.ErrProviderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "qiwi server error", "op", op, "status", resp.StatusCode, "response", string(body))
		return billResponse{}, fmt.Errorf("%s: %w: status %d", op, entity.ErrProviderRejected, resp.StatusCode)
	}

	var respData billResponse

	err = json.Unmarshal(body, &respData)
	if err != nil {
		slog.ErrorContext(ctx, "qiwi unmarshal response", "op", op, "error", err, "response", string(body))
		return billResponse{}, fmt.Errorf("%s: %w: unmarshal response: %w", op, entity.ErrProviderUnavailable, err)
	}

	return respData, nil
}

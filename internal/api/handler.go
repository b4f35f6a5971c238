package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/olegsm/billgate/internal/entity"
	"github.com/olegsm/billgate/internal/watcher"
)

// @title Billgate API
// @version 1.0
// @description Invoice issuing and payment notification bridge for the QIWI P2P billing API
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-Api-Key

type Service interface {
	IssueInvoice(ctx context.Context, amount decimal.Decimal, comment, email string, validityMinutes int) (entity.Bill, error)
	Status(ctx context.Context, billID uuid.UUID) (entity.BillStatus, error)
	RefreshStatus(ctx context.Context, billID uuid.UUID) (entity.BillStatus, error)
	Cancel(ctx context.Context, billID uuid.UUID) (entity.BillStatus, error)
	HandleCallback(ctx context.Context, signature string, cb entity.Callback) error
	Watch(ctx context.Context, billID uuid.UUID) <-chan watcher.Event
}

type Handler struct {
	s Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s: s}
}

type CreateBillRequest struct {
	Amount  *decimal.Decimal `json:"amount"`
	Comment string           `json:"comment"`
	Email   string           `json:"email"`
	Minutes *int             `json:"minutes"`
}

type CreateBillResponse struct {
	BillID    uuid.UUID `json:"billId"`
	PayURL    string    `json:"payUrl"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateBill issues a new bill with the provider
// @Summary Create bill
// @Description Issues an invoice for the specified amount and returns the payment form URL
// @Tags bills
// @Accept json
// @Produce json
// @Param CreateBillRequest body CreateBillRequest true "Bill creation request"
// @Success 201 {object} CreateBillResponse
// @Failure 400 {object} ErrorResponse "Invalid JSON"
// @Failure 422 {object} ErrorResponse "Invalid amount, validity or comment"
// @Failure 502 {object} ErrorResponse "Billing provider failure"
// @Router /bills [post]
// @Security ApiKeyAuth
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateBillRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "invalid JSON")
		return
	}

	if req.Amount == nil {
		SendJSONErr(ctx, w, http.StatusUnprocessableEntity, nil, "amount is required")
		return
	}

	minutes := entity.DefaultValidityMinutes
	if req.Minutes != nil {
		minutes = *req.Minutes
	}

	bill, err := h.s.IssueInvoice(ctx, *req.Amount, req.Comment, req.Email, minutes)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidArgument):
			SendJSONErr(ctx, w, http.StatusUnprocessableEntity, err, "invalid bill parameters")
		case errors.Is(err, entity.ErrProviderRejected), errors.Is(err, entity.ErrProviderUnavailable):
			SendJSONErr(ctx, w, http.StatusBadGateway, err, "failed to create bill")
		default:
			SendJSONErr(ctx, w, http.StatusInternalServerError, err, "failed to create bill")
		}

		return
	}

	SendJSON(ctx, w, http.StatusCreated, CreateBillResponse{
		BillID:    bill.ID,
		PayURL:    bill.PayURL,
		Status:    entity.BillStatusWaiting.String(),
		ExpiresAt: bill.ExpiresAt,
	})
}

type BillStatusResponse struct {
	BillID uuid.UUID `json:"billId"`
	Status string    `json:"status"`
}

// BillStatus returns the recorded status of a bill
// @Summary Get bill status
// @Description Returns the bill status as last recorded; a bill with no recorded outcome is WAITING
// @Tags bills
// @Produce json
// @Param bill_id path string true "Bill ID (UUID)"
// @Success 200 {object} BillStatusResponse
// @Failure 400 {object} ErrorResponse "'bill_id' must be a UUID"
// @Router /bills/{bill_id} [get]
// @Security ApiKeyAuth
func (h *Handler) BillStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	billID, err := uuid.FromString(chi.URLParam(r, "bill_id"))
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "'bill_id' must be a UUID")
		return
	}

	status, err := h.s.Status(ctx, billID)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "failed to get bill status")
		return
	}

	SendJSON(ctx, w, http.StatusOK, BillStatusResponse{BillID: billID, Status: status.String()})
}

// RefreshBill polls the provider for the current bill status
// @Summary Refresh bill status
// @Description Polls the billing provider and records a terminal outcome if the bill has one
// @Tags bills
// @Produce json
// @Param bill_id path string true "Bill ID (UUID)"
// @Success 202 {object} BillStatusResponse
// @Failure 400 {object} ErrorResponse "'bill_id' must be a UUID"
// @Failure 502 {object} ErrorResponse "Billing provider failure"
// @Router /bills/{bill_id}/refresh [post]
// @Security ApiKeyAuth
func (h *Handler) RefreshBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	billID, err := uuid.FromString(chi.URLParam(r, "bill_id"))
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "'bill_id' must be a UUID")
		return
	}

	status, err := h.s.RefreshStatus(ctx, billID)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrProviderRejected), errors.Is(err, entity.ErrProviderUnavailable):
			SendJSONErr(ctx, w, http.StatusBadGateway, err, "failed to refresh bill")
		default:
			SendJSONErr(ctx, w, http.StatusInternalServerError, err, "failed to refresh bill")
		}

		return
	}

	SendJSON(ctx, w, http.StatusAccepted, BillStatusResponse{BillID: billID, Status: status.String()})
}

// CancelBill rejects an unpaid bill
// @Summary Cancel bill
// @Description Asks the provider to reject the bill; cancelling an already paid bill keeps it paid
// @Tags bills
// @Produce json
// @Param bill_id path string true "Bill ID (UUID)"
// @Success 200 {object} BillStatusResponse
// @Failure 400 {object} ErrorResponse "'bill_id' must be a UUID"
// @Failure 502 {object} ErrorResponse "Billing provider failure"
// @Router /bills/{bill_id}/cancel [post]
// @Security ApiKeyAuth
func (h *Handler) CancelBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	billID, err := uuid.FromString(chi.URLParam(r, "bill_id"))
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "'bill_id' must be a UUID")
		return
	}

	status, err := h.s.Cancel(ctx, billID)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrProviderRejected), errors.Is(err, entity.ErrProviderUnavailable):
			SendJSONErr(ctx, w, http.StatusBadGateway, err, "failed to cancel bill")
		default:
			SendJSONErr(ctx, w, http.StatusInternalServerError, err, "failed to cancel bill")
		}

		return
	}

	SendJSON(ctx, w, http.StatusOK, BillStatusResponse{BillID: billID, Status: status.String()})
}

// BillEvents streams the bill resolution as server-sent events
// @Summary Watch bill
// @Description Streams waiting events until the bill resolves or the watch window runs out
// @Tags bills
// @Produce text/event-stream
// @Param bill_id path string true "Bill ID (UUID)"
// @Success 200 {string} string "SSE stream"
// @Failure 400 {object} ErrorResponse "'bill_id' must be a UUID"
// @Router /bills/{bill_id}/events [get]
func (h *Handler) BillEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	billID, err := uuid.FromString(chi.URLParam(r, "bill_id"))
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "'bill_id' must be a UUID")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		SendJSONErr(ctx, w, http.StatusInternalServerError, nil, "streaming is not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for e := range h.s.Watch(ctx, billID) {
		_, err = fmt.Fprintf(w, "data: %s\n\n", e.Message)
		if err != nil {
			return
		}

		flusher.Flush()
	}
}

type QiwiCallbackRequest struct {
	Bill struct {
		SiteID string `json:"siteId"`
		BillID string `json:"billId"`
		Amount struct {
			Value    string `json:"value"`
			Currency string `json:"currency"`
		} `json:"amount"`
		Status struct {
			Value           string `json:"value"`
			ChangedDateTime string `json:"changedDateTime"`
		} `json:"status"`
		Comment        string `json:"comment"`
		CreationDT     string `json:"creationDateTime"`
		ExpirationDT   string `json:"expirationDateTime"`
		CustomerFields any    `json:"customFields"`
	} `json:"bill"`
	Version string `json:"version"`
}

type QiwiCallbackResponse struct {
	Error string `json:"error"`
}

// QiwiCallback handles the provider payment notification
// @Summary Handle QIWI callback
// @Description Verifies the HMAC signature of the notification and records the reported bill status
// @Tags callbacks
// @Accept json
// @Produce json
// @Param X-Api-Signature-SHA256 header string true "HMAC-SHA256 signature of the notification"
// @Param QiwiCallbackRequest body QiwiCallbackRequest true "Payment notification"
// @Success 200 {object} QiwiCallbackResponse
// @Failure 400 {object} ErrorResponse "Malformed body or signature mismatch"
// @Failure 500 {object} ErrorResponse "Secret key is not configured"
// @Router /callbacks/qiwi [post]
func (h *Handler) QiwiCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req QiwiCallbackRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "invalid JSON")
		return
	}

	cb := entity.Callback{
		Version: req.Version,
		Bill: entity.CallbackBill{
			SiteID:  req.Bill.SiteID,
			BillID:  req.Bill.BillID,
			Comment: req.Bill.Comment,
			Amount: entity.CallbackAmount{
				Value:    req.Bill.Amount.Value,
				Currency: req.Bill.Amount.Currency,
			},
			Status: entity.CallbackStatus{
				Value:           req.Bill.Status.Value,
				ChangedDateTime: req.Bill.Status.ChangedDateTime,
			},
			Creation: req.Bill.CreationDT,
			Expiry:   req.Bill.ExpirationDT,
		},
	}

	err = h.s.HandleCallback(ctx, r.Header.Get("X-Api-Signature-SHA256"), cb)

	switch {
	case err == nil:
		SendJSON(ctx, w, http.StatusOK, QiwiCallbackResponse{Error: "0"})
	case errors.Is(err, entity.ErrNoSecretKey):
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "secret key is not configured")
	case errors.Is(err, entity.ErrSignatureMismatch):
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "signature mismatch")
	case errors.Is(err, entity.ErrInvalidArgument), errors.Is(err, entity.ErrUnknownStatus):
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "invalid notification")
	default:
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "failed to process notification")
	}
}

// HealthHandler - returns service health status.
// @Summary Health check
// @Description Health check
// @Tags health
// @Accept text/plain
// @Produce text/plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := w.Write([]byte("OK\n"))
	if err != nil {
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "health check failed")
		return
	}
}

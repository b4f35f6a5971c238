package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/olegsm/billgate/internal/entity"
	"github.com/olegsm/billgate/internal/ledger"
	"github.com/olegsm/billgate/internal/watcher"
	"github.com/olegsm/billgate/pkg/logger"
)

// Gateway is the provider side of the bridge: invoice issuing, status
// polling, cancellation and webhook signature verification.
type Gateway interface {
	IssueInvoice(ctx context.Context, inv entity.InvoiceRequest) (payURL string, expiresAt time.Time, err error)
	BillStatus(ctx context.Context, billID uuid.UUID) (entity.BillStatus, error)
	Reject(ctx context.Context, billID uuid.UUID) (entity.BillStatus, error)
	VerifySignature(signature string, cb entity.Callback) (bool, error)
}

type Producer interface {
	BillResolved(ctx context.Context, billID uuid.UUID, status, amount string)
}

type Watcher interface {
	Watch(ctx context.Context, billID uuid.UUID) <-chan watcher.Event
}

type pendingBill struct {
	amount    decimal.Decimal
	expiresAt time.Time
}

// Service ties the gateway, the ledger and the watcher together. It is the
// only writer of ledger entries; everything it learns from the provider
// (polls, cancellations, webhooks) funnels through resolve.
type Service struct {
	ledger   ledger.Ledger
	gateway  Gateway
	producer Producer
	watcher  Watcher

	mu      sync.Mutex
	pending map[uuid.UUID]pendingBill
}

func New(l ledger.Ledger, gw Gateway, producer Producer, w Watcher) *Service {
	return &Service{
		ledger:   l,
		gateway:  gw,
		producer: producer,
		watcher:  w,
		pending:  make(map[uuid.UUID]pendingBill),
	}
}

// IssueInvoice validates the request, creates the provider-side bill keyed
// by a fresh UUID and starts tracking it for the sweeper.
func (s *Service) IssueInvoice(
	ctx context.Context,
	amount decimal.Decimal,
	comment, email string,
	validityMinutes int,
) (entity.Bill, error) {
	if amount.IsNegative() {
		return entity.Bill{}, fmt.Errorf("%w: negative amount %s", entity.ErrInvalidArgument, amount)
	}

	if validityMinutes < 0 {
		return entity.Bill{}, fmt.Errorf("%w: negative validity %d", entity.ErrInvalidArgument, validityMinutes)
	}

	if len(comment) > entity.MaxCommentLength {
		return entity.Bill{}, fmt.Errorf("%w: comment longer than %d characters",
			entity.ErrInvalidArgument, entity.MaxCommentLength)
	}

	billID := uuid.Must(uuid.NewV4())
	ctx = logger.WithBillID(ctx, billID)

	payURL, expiresAt, err := s.gateway.IssueInvoice(ctx, entity.InvoiceRequest{
		BillID:          billID,
		Amount:          amount,
		Comment:         comment,
		CustomerEmail:   email,
		ValidityMinutes: validityMinutes,
	})
	if err != nil {
		return entity.Bill{}, fmt.Errorf("issue invoice: %w", err)
	}

	bill := entity.Bill{
		ID:            billID,
		Amount:        amount,
		Comment:       comment,
		CustomerEmail: email,
		ExpiresAt:     expiresAt,
		PayURL:        payURL,
		CreatedAt:     time.Now(),
	}

	s.mu.Lock()
	s.pending[billID] = pendingBill{amount: amount, expiresAt: expiresAt}
	s.mu.Unlock()

	slog.InfoContext(ctx, "invoice issued", "amount", amount.StringFixed(2), "pay_url", payURL)

	return bill, nil
}

// Status returns the ledger's view of the bill. A bill the ledger has never
// heard of is WAITING.
func (s *Service) Status(ctx context.Context, billID uuid.UUID) (entity.BillStatus, error) {
	return s.ledger.Get(ctx, billID)
}

// RefreshStatus polls the provider and records a terminal outcome in the
// ledger. The returned status is the ledger's view after the refresh, so a
// stale provider answer can never shadow an already confirmed outcome.
func (s *Service) RefreshStatus(ctx context.Context, billID uuid.UUID) (entity.BillStatus, error) {
	ctx = logger.WithBillID(ctx, billID)

	status, err := s.gateway.BillStatus(ctx, billID)
	if err != nil {
		return "", fmt.Errorf("poll bill status: %w", err)
	}

	if status.IsTerminal() {
		s.resolve(ctx, billID, status, "")
	}

	return s.ledger.Get(ctx, billID)
}

// Cancel asks the provider to reject the bill and records the rejection.
// REJECTED is terminal like the rest: cancelling an already paid bill is a
// no-op on the ledger.
func (s *Service) Cancel(ctx context.Context, billID uuid.UUID) (entity.BillStatus, error) {
	ctx = logger.WithBillID(ctx, billID)

	status, err := s.gateway.Reject(ctx, billID)
	if err != nil {
		return "", fmt.Errorf("reject bill: %w", err)
	}

	if status.IsTerminal() {
		s.resolve(ctx, billID, status, "")
	}

	return s.ledger.Get(ctx, billID)
}

// HandleCallback verifies the webhook signature and records the reported
// status. Duplicate deliveries succeed without touching the ledger again;
// the provider keeps retrying until it sees a success response.
func (s *Service) HandleCallback(ctx context.Context, signature string, cb entity.Callback) error {
	err := cb.Validate()
	if err != nil {
		return err
	}

	ok, err := s.gateway.VerifySignature(signature, cb)
	if err != nil {
		return fmt.Errorf("verify callback: %w", err)
	}

	if !ok {
		// No hint about whether the bill id is known.
		return entity.ErrSignatureMismatch
	}

	billID, err := uuid.FromString(cb.Bill.BillID)
	if err != nil {
		return fmt.Errorf("%w: callback bill id %q", entity.ErrInvalidArgument, cb.Bill.BillID)
	}

	status, err := entity.ParseBillStatus(cb.Bill.Status.Value)
	if err != nil {
		return fmt.Errorf("callback status %q: %w", cb.Bill.Status.Value, err)
	}

	ctx = logger.WithBillID(ctx, billID)

	if status.IsTerminal() {
		s.resolve(ctx, billID, status, cb.Bill.Amount.Value)
	}

	return nil
}

// Watch streams the bill's resolution: one waiting event, then exactly one
// terminal or timeout event.
func (s *Service) Watch(ctx context.Context, billID uuid.UUID) <-chan watcher.Event {
	return s.watcher.Watch(ctx, billID)
}

// SweepPending polls the provider for every tracked unresolved bill. The
// provider only calls back on payment, so expirations and out-of-band
// rejections are discovered here.
func (s *Service) SweepPending(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]uuid.UUID, 0, len(s.pending))

	for id := range s.pending {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, billID := range ids {
		billCtx := logger.WithBillID(ctx, billID)

		current, err := s.ledger.Get(billCtx, billID)
		if err != nil {
			slog.ErrorContext(billCtx, "sweep ledger read", "error", err)
			continue
		}

		if current.IsTerminal() {
			s.untrack(billID)
			continue
		}

		status, err := s.gateway.BillStatus(billCtx, billID)
		if err != nil {
			slog.WarnContext(billCtx, "sweep status poll", "error", err)
			continue
		}

		if status.IsTerminal() {
			s.resolve(billCtx, billID, status, "")
		}
	}

	return nil
}

// resolve records a terminal status exactly once and emits the resolved
// event. The ledger enforces write-once; resolve may be called from the
// webhook handler, a poll and the sweeper concurrently.
func (s *Service) resolve(ctx context.Context, billID uuid.UUID, status entity.BillStatus, amount string) {
	set, err := s.ledger.SetIfUnset(ctx, billID, status)
	if err != nil {
		slog.ErrorContext(ctx, "ledger write", "error", err)
		return
	}

	if !set {
		// Duplicate webhook or stale poll; nothing changed.
		return
	}

	if tracked, ok := s.untrack(billID); ok {
		amount = tracked.amount.StringFixed(2)
	}

	slog.InfoContext(ctx, "bill resolved", "status", status)
	s.producer.BillResolved(ctx, billID, status.String(), amount)
}

func (s *Service) untrack(billID uuid.UUID) (pendingBill, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.pending[billID]
	if ok {
		delete(s.pending, billID)
	}

	return b, ok
}

package ledger

import (
	"context"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/olegsm/billgate/internal/entity"
)

// Ledger is the authoritative record of terminal bill statuses. A missing
// entry means the bill is still WAITING. Terminal entries are write-once:
// the provider retries webhooks, and a stale poll must never overwrite a
// confirmed outcome.
// SetIfUnset reports whether this call recorded the status, so that the
// caller can act on a transition exactly once even under concurrent
// deliveries.
type Ledger interface {
	Get(ctx context.Context, billID uuid.UUID) (entity.BillStatus, error)
	SetIfUnset(ctx context.Context, billID uuid.UUID, status entity.BillStatus) (bool, error)
}

// Memory is the single-process Ledger implementation.
type Memory struct {
	mu    sync.Mutex
	bills map[uuid.UUID]entity.BillStatus
}

func NewMemory() *Memory {
	return &Memory{
		bills: make(map[uuid.UUID]entity.BillStatus),
	}
}

func (m *Memory) Get(_ context.Context, billID uuid.UUID) (entity.BillStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, ok := m.bills[billID]
	if !ok {
		return entity.BillStatusWaiting, nil
	}

	return status, nil
}

// SetIfUnset records a terminal status unless one is already present.
// Non-terminal statuses are never stored: absence already means WAITING,
// and storing it would block the real outcome later.
func (m *Memory) SetIfUnset(_ context.Context, billID uuid.UUID, status entity.BillStatus) (bool, error) {
	if !status.IsTerminal() {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bills[billID]; ok {
		return false, nil
	}

	m.bills[billID] = status

	return true, nil
}

package entity

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// BillStatus is the provider's invoice status vocabulary. WAITING is the
// implicit initial state; the other three are terminal and write-once.
type BillStatus string

const (
	BillStatusWaiting  BillStatus = "WAITING"
	BillStatusPaid     BillStatus = "PAID"
	BillStatusRejected BillStatus = "REJECTED"
	BillStatusExpired  BillStatus = "EXPIRED"
)

func (s BillStatus) String() string {
	return string(s)
}

func (s BillStatus) IsTerminal() bool {
	switch s {
	case BillStatusPaid, BillStatusRejected, BillStatusExpired:
		return true
	}

	return false
}

// ParseBillStatus maps a provider status value onto the known vocabulary.
func ParseBillStatus(v string) (BillStatus, error) {
	switch BillStatus(v) {
	case BillStatusWaiting, BillStatusPaid, BillStatusRejected, BillStatusExpired:
		return BillStatus(v), nil
	}

	return "", ErrUnknownStatus
}

const (
	DefaultValidityMinutes = 5
	MaxCommentLength       = 255
)

// InvoiceRequest is what the gateway needs to create a provider-side bill.
// ValidityMinutes of zero means the default validity window.
type InvoiceRequest struct {
	BillID          uuid.UUID
	Amount          decimal.Decimal
	Comment         string
	CustomerEmail   string
	ValidityMinutes int
}

// Bill is one payment request tracked by id through its lifecycle.
// The id is generated on our side and doubles as the provider-side bill id.
type Bill struct {
	ID            uuid.UUID
	Amount        decimal.Decimal
	Comment       string
	CustomerEmail string
	ExpiresAt     time.Time
	PayURL        string
	CreatedAt     time.Time
}

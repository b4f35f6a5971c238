package entity

import (
	"fmt"
	"strings"
)

// Callback is the webhook body the provider POSTs on invoice status changes.
// Field layout follows the provider contract:
//
//	{"bill": {"billId": ..., "siteId": ..., "amount": {"value", "currency"},
//	          "status": {"value", "changedDateTime"}}, "version": "1"}
type Callback struct {
	Bill    CallbackBill `json:"bill"`
	Version string       `json:"version"`
}

type CallbackBill struct {
	SiteID   string         `json:"siteId"`
	BillID   string         `json:"billId"`
	Amount   CallbackAmount `json:"amount"`
	Status   CallbackStatus `json:"status"`
	Comment  string         `json:"comment"`
	Creation string         `json:"creationDateTime"`
	Expiry   string         `json:"expirationDateTime"`
}

type CallbackAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type CallbackStatus struct {
	Value           string `json:"value"`
	ChangedDateTime string `json:"changedDateTime"`
}

// Validate fails fast when any field required for signature verification
// is absent, instead of silently hashing empty strings.
func (c Callback) Validate() error {
	missing := make([]string, 0, 5)

	if c.Bill.BillID == "" {
		missing = append(missing, "bill.billId")
	}

	if c.Bill.SiteID == "" {
		missing = append(missing, "bill.siteId")
	}

	if c.Bill.Amount.Currency == "" {
		missing = append(missing, "bill.amount.currency")
	}

	if c.Bill.Amount.Value == "" {
		missing = append(missing, "bill.amount.value")
	}

	if c.Bill.Status.Value == "" {
		missing = append(missing, "bill.status.value")
	}

	if len(missing) != 0 {
		return fmt.Errorf("%w: missing callback fields: %s", ErrInvalidArgument, strings.Join(missing, ", "))
	}

	return nil
}

// SignatureBase is the canonical pipe-delimited string the provider signs:
// currency|value|billId|siteId|status, in exactly this order.
func (c Callback) SignatureBase() string {
	return strings.Join([]string{
		c.Bill.Amount.Currency,
		c.Bill.Amount.Value,
		c.Bill.BillID,
		c.Bill.SiteID,
		c.Bill.Status.Value,
	}, "|")
}

package types

import "time"

// PurchaseType identifies what a checkout session is buying.
type PurchaseType string

// Purchase types accepted by the checkout endpoint.
const (
	PurchaseCredits      PurchaseType = "credits"
	PurchaseSubscription PurchaseType = "subscription"
)

// PendingCheckout is the single-slot record of an in-flight hosted-checkout
// session. It is the only state that must survive the process navigating
// away to the payment provider and back; at most one exists at a time
// (last write wins).
type PendingCheckout struct {
	// SessionID is the provider session identifier. May be null when the
	// checkout endpoint did not return one; such a slot cannot be
	// reconciled and can only be discarded explicitly.
	SessionID *string      `json:"session_id"`
	Type      PurchaseType `json:"type"`
	AmountUSD float64      `json:"amount_usd"`
	CreatedAt time.Time    `json:"created_at"`
}

// TransactionStatus is the reconciled outcome of a checkout session.
type TransactionStatus string

// Transaction statuses. Unknown is treated like pending for retry purposes
// but surfaced as its own value to the caller.
const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
	TxUnknown   TransactionStatus = "unknown"
)

// IsTerminal returns true if the status ends the pending checkout's
// lifecycle (the persisted slot is cleared once observed).
func (s TransactionStatus) IsTerminal() bool {
	return s == TxCompleted || s == TxFailed
}

// ParseTransactionStatus maps a status-endpoint value onto a
// TransactionStatus. Failure-indicating values collapse to TxFailed;
// anything unrecognized maps to TxUnknown.
func ParseTransactionStatus(s string) TransactionStatus {
	switch s {
	case "pending":
		return TxPending
	case "completed":
		return TxCompleted
	case "failed", "canceled", "cancelled", "declined", "expired":
		return TxFailed
	default:
		return TxUnknown
	}
}

// Transaction is the status-endpoint's view of a checkout session.
type Transaction struct {
	SessionID      string  `json:"session_id"`
	EventType      string  `json:"event_type"`
	Status         string  `json:"status"`
	AmountUSD      float64 `json:"amount_usd"`
	FailureCode    *string `json:"failure_code,omitempty"`
	FailureMessage *string `json:"failure_message,omitempty"`
}

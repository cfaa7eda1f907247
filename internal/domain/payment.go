package domain

import "time"

type PaymentType string

const (
	PaymentTypeDeposit PaymentType = "DEPOSIT"
	PaymentTypeFinal   PaymentType = "FINAL"
	PaymentTypeExtra   PaymentType = "EXTRA"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// Payment records a captured payment event. The core reacts to captures;
// it does not process payments or own the ledger.
type Payment struct {
	ID            int32         `json:"id"`
	ReservationID int32         `json:"reservation_id"`
	AmountCents   int64         `json:"amount_cents"`
	Type          PaymentType   `json:"type"`
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	CreatedOn     string        `json:"created_on"`
}

// PaymentTotals aggregates a payment listing for history views.
type PaymentTotals struct {
	TotalPaidCents    int64 `json:"total_paid_cents"`
	PendingCents      int64 `json:"pending_cents"`
	CompletedCount    int32 `json:"completed_count"`
	PendingCount      int32 `json:"pending_count"`
	DepositTotalCents int64 `json:"deposit_total_cents"`
	FinalTotalCents   int64 `json:"final_total_cents"`
	ExtraTotalCents   int64 `json:"extra_total_cents"`
}

// Package gateway defines the outbound port to the external payment provider.
// All wire-format knowledge lives behind this interface; the rest of the
// system only ever sees the four-state PayoutState and the gateway error
// sentinels from apperrors.
package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// PayoutState is the normalized remote state of a payout workflow. The live
// provider's status vocabulary drifts across API versions; adapters map
// whatever the wire says onto these four values.
type PayoutState string

const (
	PayoutQueued     PayoutState = "QUEUED"
	PayoutProcessing PayoutState = "PROCESSING"
	PayoutCompleted  PayoutState = "COMPLETED"
	PayoutRejected   PayoutState = "REJECTED"
)

// IsTerminal reports whether the remote workflow has finished.
func (s PayoutState) IsTerminal() bool {
	return s == PayoutCompleted || s == PayoutRejected
}

// CollectionRequest registers an inbound (deposit) payment. The funds-in leg
// is driven by the provider's client-side checkout, so this call is
// bookkeeping: it yields the reference later echoed by the completion
// notification.
type CollectionRequest struct {
	Amount    decimal.Decimal
	APIRef    string // our transaction id, passed through as provider metadata
	PayerName string
	Phone     string // optional, normalized MSISDN
}

// PayoutRequest initiates an outbound (withdrawal) transfer.
type PayoutRequest struct {
	Amount        decimal.Decimal
	Destination   string // normalized MSISDN
	RecipientName string
	Narrative     string
}

// DispatchResult is the synchronous acknowledgement of a collection or payout
// request.
type DispatchResult struct {
	Reference string // opaque provider correlation id
}

// PaymentGateway wraps the provider's collection and payout APIs.
//
// Errors are classified with the apperrors sentinels: ErrGatewayUnreachable
// (retryable), ErrGatewayRejected (permanent) and ErrGatewayMalformedResponse
// (transient integration fault).
type PaymentGateway interface {
	InitiateCollection(ctx context.Context, req CollectionRequest) (*DispatchResult, error)
	InitiatePayout(ctx context.Context, req PayoutRequest) (*DispatchResult, error)
	QueryPayoutStatus(ctx context.Context, reference string) (PayoutState, error)
}

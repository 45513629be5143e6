package dto

import "github.com/shopspring/decimal"

// CollectionWebhook is the inbound notification pushed by the payment
// provider when a checkout resolves. The provider guarantees very little
// about this shape across API versions, so every field is optional and the
// handler picks the first usable value.
type CollectionWebhook struct {
	Event      string          `json:"event"`
	State      string          `json:"state"`
	InvoiceID  string          `json:"invoice_id"`
	TrackingID string          `json:"tracking_id"`
	CheckoutID string          `json:"checkout_id"`
	APIRef     string          `json:"api_ref"`
	Value      decimal.Decimal `json:"value"`
	Amount     decimal.Decimal `json:"amount"`
	Challenge  string          `json:"challenge"`
}

// Correlation returns the best available provider reference for matching the
// notification to a ledger row.
func (w *CollectionWebhook) Correlation() string {
	for _, ref := range []string{w.TrackingID, w.InvoiceID, w.CheckoutID, w.APIRef} {
		if ref != "" {
			return ref
		}
	}
	return ""
}

// EffectiveAmount returns the notified amount, preferring `value` which is
// what the live provider sends.
func (w *CollectionWebhook) EffectiveAmount() decimal.Decimal {
	if !w.Value.IsZero() {
		return w.Value
	}
	return w.Amount
}

// EffectiveState returns the outcome field, falling back to the event name.
func (w *CollectionWebhook) EffectiveState() string {
	if w.State != "" {
		return w.State
	}
	return w.Event
}

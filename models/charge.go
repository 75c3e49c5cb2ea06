package models

import (
	"github.com/shopspring/decimal"

	"github.com/a2n2k3p4/omise-payments/payment"
)

// PaymentRequest is the payload to initiate a payment. The method comes from
// the route. Amount is in display units (150.00 THB). Token is preferred for
// card charges; Card carries raw card data that is tokenized server-side.
// Details holds method-specific keys not covered by the named fields.
type PaymentRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency" validate:"omitempty,len=3,alpha"`
	Token            string          `json:"token,omitempty"`
	Card             map[string]any  `json:"card,omitempty"`
	Bank             string          `json:"bank,omitempty" validate:"omitempty,alpha,max=10"`
	ReturnURI        string          `json:"return_uri,omitempty" validate:"omitempty,url"`
	Description      string          `json:"description,omitempty" validate:"max=255"`
	InstallmentTerms int             `json:"installment_terms,omitempty" validate:"omitempty,min=1,max=60"`
	ZeroInterest     *bool           `json:"zero_interest,omitempty"`
	Capture          *bool           `json:"capture,omitempty"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	Details          payment.Details `json:"details,omitempty"`
}

// PaymentData converts the request into the bag Manager.ProcessPayment reads.
// Named fields win over keys of the same meaning in Details.
func (r *PaymentRequest) PaymentData() payment.Details {
	details := payment.Details{}
	for k, v := range r.Details {
		details[k] = v
	}

	switch {
	case r.Token != "":
		details["card"] = r.Token
	case r.Card != nil:
		details["card"] = r.Card
	}
	if r.Bank != "" {
		details["bank_code"] = r.Bank
	}
	if r.ReturnURI != "" {
		details["return_uri"] = r.ReturnURI
	}
	if r.Description != "" {
		details["description"] = r.Description
	}
	if r.InstallmentTerms != 0 {
		details["installment_terms"] = r.InstallmentTerms
	}
	if r.ZeroInterest != nil {
		details["zero_interest"] = *r.ZeroInterest
	}
	if r.Capture != nil {
		details["capture"] = *r.Capture
	}
	if r.Metadata != nil {
		details["metadata"] = r.Metadata
	}

	return payment.Details{
		"amount":   r.Amount,
		"currency": r.Currency,
		"details":  details,
	}
}

// RefundRequest refunds part or all of a charge. Amount is in display units.
type RefundRequest struct {
	ChargeID string          `json:"charge_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// CaptureRequest optionally carries a partial capture amount in display units.
type CaptureRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// WebhookEnvelope is the part of an incoming webhook needed to verify it.
// Object is "event" for gateway events and "charge" for raw charge payloads.
type WebhookEnvelope struct {
	Object string `json:"object"`
	ID     string `json:"id" validate:"required"`
}

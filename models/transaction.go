package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/a2n2k3p4/omise-payments/gateway"
)

// Transaction is the verified state of a charge reported back to webhook senders.
type Transaction struct {
	ChargeID       string          `json:"charge_id"`
	EventID        string          `json:"event_id,omitempty"`
	EventKey       string          `json:"event_key,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	AmountSubunit  int64           `json:"amount_subunit"`
	Currency       string          `json:"currency"`
	Channel        string          `json:"channel"`
	Status         string          `json:"status"`
	Paid           bool            `json:"paid"`
	FailureCode    string          `json:"failure_code,omitempty"`
	FailureMessage string          `json:"failure_message,omitempty"`
	Meta           map[string]any  `json:"meta,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TransactionFromCharge maps a charge. ev may be nil when the charge arrived directly.
func TransactionFromCharge(ch *gateway.Charge, ev *gateway.Event) Transaction {
	tx := Transaction{
		ChargeID:       ch.ID,
		Amount:         ch.DisplayAmount(),
		AmountSubunit:  ch.Amount,
		Currency:       ch.Currency,
		Channel:        Channel(ch),
		Status:         ch.Status,
		Paid:           ch.IsPaid(),
		FailureCode:    ch.FailureCode,
		FailureMessage: ch.FailureMessage,
		Meta:           ch.Metadata,
		CreatedAt:      ch.Created,
	}
	if ev != nil {
		tx.EventID = ev.ID
		tx.EventKey = ev.Key
	}
	return tx
}

// Channel is the source type of a charge, or "card" for card charges.
func Channel(ch *gateway.Charge) string {
	if ch != nil && ch.Source != nil && ch.Source.Type != "" {
		return ch.Source.Type
	}
	return "card"
}

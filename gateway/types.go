package gateway

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/a2n2k3p4/omise-payments/money"
)

// Charge statuses.
const (
	StatusPending    = "pending"
	StatusSuccessful = "successful"
	StatusFailed     = "failed"
	StatusExpired    = "expired"
	StatusReversed   = "reversed"
)

// Charge is a gateway charge.
type Charge struct {
	ID             string         `json:"id"`
	Livemode       bool           `json:"livemode"`
	Status         string         `json:"status"`
	Amount         int64          `json:"amount"`
	Currency       string         `json:"currency"`
	Description    string         `json:"description,omitempty"`
	Capture        bool           `json:"capture"`
	Authorized     bool           `json:"authorized"`
	Reversed       bool           `json:"reversed"`
	Captured       bool           `json:"captured"`
	Paid           bool           `json:"paid"`
	Expired        bool           `json:"expired"`
	Transaction    string         `json:"transaction,omitempty"`
	Refunded       int64          `json:"refunded_amount,omitempty"`
	FailureCode    string         `json:"failure_code,omitempty"`
	FailureMessage string         `json:"failure_message,omitempty"`
	AuthorizeURI   string         `json:"authorize_uri,omitempty"`
	ReturnURI      string         `json:"return_uri,omitempty"`
	Card           *Card          `json:"card,omitempty"`
	Source         *Source        `json:"source,omitempty"`
	Customer       string         `json:"customer,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Created        time.Time      `json:"created_at"`
}

// Card is the card attached to a charge or token.
type Card struct {
	ID              string     `json:"id"`
	Brand           string     `json:"brand"`
	LastDigits      string     `json:"last_digits"`
	ExpirationMonth time.Month `json:"expiration_month"`
	ExpirationYear  int        `json:"expiration_year"`
	Financing       string     `json:"financing"`
	Name            string     `json:"name"`
}

// Source is a non-card payment flow consumed by a charge.
type Source struct {
	ID                       string `json:"id"`
	Type                     string `json:"type"`
	Flow                     string `json:"flow"`
	Amount                   int64  `json:"amount"`
	Currency                 string `json:"currency"`
	InstallmentTerm          int64  `json:"installment_term,omitempty"`
	ZeroInterestInstallments bool   `json:"zero_interest_installments,omitempty"`
}

// Token is a tokenized card.
type Token struct {
	ID   string `json:"id"`
	Used bool   `json:"used"`
	Card *Card  `json:"card"`
}

// Refund is a refund issued against a charge.
type Refund struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Charge      string    `json:"charge"`
	Transaction string    `json:"transaction"`
	Voided      bool      `json:"voided"`
	Created     time.Time `json:"created_at"`
}

// Account is the merchant account.
type Account struct {
	ID                       string   `json:"id"`
	Email                    string   `json:"email"`
	Currency                 string   `json:"currency"`
	SupportedCurrencies      []string `json:"supported_currencies"`
	WebhookURI               string   `json:"webhook_uri"`
	Country                  string   `json:"country"`
	APIVersion               string   `json:"api_version"`
	ZeroInterestInstallments bool     `json:"zero_interest_installments"`
	Team                     string   `json:"team"`
}

// Balance is the merchant balance in subunits.
type Balance struct {
	Total        int64     `json:"total"`
	Transferable int64     `json:"transferable"`
	Reserve      int64     `json:"reserve"`
	OnHold       int64     `json:"on_hold"`
	Currency     string    `json:"currency"`
	Created      time.Time `json:"created_at"`
}

// Capabilities lists the payment methods enabled on the account.
type Capabilities struct {
	Banks                    []string            `json:"banks"`
	Country                  string              `json:"country"`
	ZeroInterestInstallments bool                `json:"zero_interest_installments"`
	PaymentMethods           []PaymentCapability `json:"payment_methods"`
}

// PaymentCapability is a single entry of Capabilities.PaymentMethods.
type PaymentCapability struct {
	Name             string   `json:"name"`
	Currencies       []string `json:"currencies"`
	CardBrands       []string `json:"card_brands"`
	InstallmentTerms []int    `json:"installment_terms"`
	Banks            []string `json:"banks"`
}

// Event is a verified gateway event. DataObject and DataID identify the
// resource the event is about.
type Event struct {
	ID         string    `json:"id"`
	Key        string    `json:"key"`
	DataObject string    `json:"data_object"`
	DataID     string    `json:"data_id"`
	Created    time.Time `json:"created_at"`
}

// IsCharge reports whether the event concerns a charge.
func (e *Event) IsCharge() bool {
	return e.DataObject == "charge" && e.DataID != ""
}

// Method returns the capability with the given name.
func (c *Capabilities) Method(name string) (PaymentCapability, bool) {
	for _, m := range c.PaymentMethods {
		if m.Name == name {
			return m, true
		}
	}
	return PaymentCapability{}, false
}

// IsAuthorized reports whether the charge was authorized.
func (c *Charge) IsAuthorized() bool { return c.Authorized }

// IsPaid reports whether the charge was paid. Captured counts as paid.
func (c *Charge) IsPaid() bool { return c.Paid || c.Captured }

// IsSuccessful reports whether the charge settled.
func (c *Charge) IsSuccessful() bool { return c.Status == StatusSuccessful && c.IsPaid() }

// IsFailed reports whether the charge failed.
func (c *Charge) IsFailed() bool { return c.Status == StatusFailed }

// IsAwaitCapture reports whether the charge is authorized and waiting for capture.
func (c *Charge) IsAwaitCapture() bool {
	return c.Status == StatusPending && c.IsAuthorized() && !c.IsPaid()
}

// IsAwaitPayment reports whether the charge is waiting on the payer.
func (c *Charge) IsAwaitPayment() bool {
	return c.Status == StatusPending && !c.IsAuthorized() && !c.IsPaid()
}

// DisplayAmount returns the charge amount in currency units.
func (c *Charge) DisplayAmount() decimal.Decimal {
	return money.ToCurrencyUnit(c.Amount, c.Currency)
}

// DisplayAmount returns the refund amount in currency units.
func (r *Refund) DisplayAmount() decimal.Decimal {
	return money.ToCurrencyUnit(r.Amount, r.Currency)
}

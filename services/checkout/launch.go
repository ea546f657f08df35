package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/canpayshop/services/cart"
)

// Intent is issued per attempt and never reused.
type Intent struct {
	IntentID  string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

type PaymentStatus string

const (
	PaymentProcessed PaymentStatus = "processed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentPending   PaymentStatus = "pending"
)

// PaymentResult is what the widget reports. None of it is trusted before the signature is verified.
type PaymentResult struct {
	Status        PaymentStatus
	TransactionID string
	Amount        *decimal.Decimal
	RawPayload    string
	Signature     string
}

type ValidationFailure struct {
	Message string
}

type SideChannelKind string

const (
	SideChannelLogin SideChannelKind = "login"
	SideChannelLink  SideChannelKind = "link"
)

// SideChannelEvent is informational and never changes cart or checkout state.
type SideChannelEvent struct {
	Kind       SideChannelKind
	Payload    string
	ReceivedAt time.Time
}

type Passthrough struct {
	CartItems []cart.LineItem `json:"cart_items"`
}

// LaunchConfig is handed to the widget. Exactly one of ProcessedCallback and IntentIDValidationCallback is
// honoured per attempt.
type LaunchConfig struct {
	IntentID        string      `json:"intent_id"`
	Amount          string      `json:"amount"`
	TipAmount       string      `json:"tip_amount"`
	DeliveryFee     string      `json:"delivery_fee"`
	IsGuest         bool        `json:"is_guest"`
	MerchantOrderID string      `json:"merchant_order_id"`
	Passthrough     Passthrough `json:"passthrough"`

	ProcessedCallback          func(PaymentResult)     `json:"-"`
	IntentIDValidationCallback func(ValidationFailure) `json:"-"`
	LoginCallback              func(payload string)    `json:"-"`
	LinkCallback               func(payload string)    `json:"-"`
}

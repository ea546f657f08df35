package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/canpayshop/services/canpay/canpayapi"
)

//go:generate mockgen -source=api.go -package checkout -destination checkout_mock.go IntentCreator PaymentVerifier Widget
type IntentCreator interface {
	CreateIntent(c context.Context, amount decimal.Decimal, deliveryFee decimal.Decimal, splitFundingMerchantID string) (string, error)
}

type PaymentVerifier interface {
	VerifyPayment(c context.Context, rawPayload string, signature string) (canpayapi.Transaction, error)
}

// Widget is the opaque payment component. Launch returns once the widget is shown, results arrive through
// the callbacks of the LaunchConfig.
type Widget interface {
	Launch(c context.Context, cfg LaunchConfig) error
}

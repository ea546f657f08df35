package canpay

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/canpayshop/services/canpay/canpayapi"
)

// IntentRecord is kept for reconciliation. Nothing reads it back during checkout.
type IntentRecord struct {
	IntentID               string
	Amount                 string
	DeliveryFee            string
	SplitFundingMerchantID string
	CreatedAt              time.Time
}

type PaymentRecord struct {
	TransactionID string
	Status        string
	Amount        string
	Signature     string
	RawPayload    string `datastore:",noindex"`
	VerifiedAt    time.Time
}

func newPaymentRecord(tx canpayapi.Transaction, rawPayload string, signature string, verifiedAt time.Time) PaymentRecord {
	amount := ""
	if tx.Amount != nil {
		amount = tx.Amount.String()
	}
	return PaymentRecord{
		TransactionID: string(tx.TransactionID),
		Status:        tx.Status,
		Amount:        amount,
		Signature:     signature,
		RawPayload:    rawPayload,
		VerifiedAt:    verifiedAt,
	}
}

// uid is the transaction id, or the signature for payloads without one so that replays land on the same record.
func (r PaymentRecord) uid() string {
	if r.TransactionID != "" {
		return r.TransactionID
	}
	return r.Signature
}

type authorizeRequest struct {
	AppKey                 string          `form:"app_key"`
	APISecret              string          `form:"api_secret"`
	IntegratorID           string          `form:"integrator_id"`
	InternalVersion        string          `form:"canpay_internal_version"`
	AuthOnly               string          `form:"auth_only"`
	Amount                 decimal.Decimal `form:"amount"`
	DeliveryFee            decimal.Decimal `form:"delivery_fee,omitempty"`
	SplitFundingMerchantID string          `form:"split_funding_merchant_id,omitempty"`
}

type authorizeResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		IntentID canpayapi.FlexString `json:"intent_id"`
	} `json:"data"`
}

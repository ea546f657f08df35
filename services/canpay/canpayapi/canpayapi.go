package canpayapi

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	formcodec "github.com/go-playground/form/v4"
	"github.com/shopspring/decimal"
)

const (
	Path       = "/api/canpay"
	WidgetPath = Path + "/widget"

	ActionCreateIntent  = "create_intent"
	ActionVerifyPayment = "verify_payment"

	VerifiedMessage = "Payment verified successfully"
)

type CreateIntentRequest struct {
	Action                 string          `form:"action"`
	Amount                 decimal.Decimal `form:"amount"`
	DeliveryFee            decimal.Decimal `form:"delivery_fee,omitempty"`
	SplitFundingMerchantID string          `form:"split_funding_merchant_id,omitempty"`
}

type CreateIntentResponse struct {
	Success  bool   `json:"success"`
	IntentID string `json:"intent_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

type VerifyPaymentRequest struct {
	Action    string `form:"action"`
	Response  string `form:"response" validate:"required"`
	Signature string `form:"signature" validate:"required"`
}

type VerifyPaymentResponse struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message,omitempty"`
	Transaction json.RawMessage `json:"transaction,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// WidgetConfigResponse tells the storefront which widget script to load. It never carries credentials.
type WidgetConfigResponse struct {
	Success     bool   `json:"success"`
	Environment string `json:"environment"`
	WidgetURL   string `json:"widget_url"`
}

// Transaction holds the fields of a widget payload that drive state changes. The payload itself may carry
// many more.
type Transaction struct {
	Status        string           `json:"status"`
	TransactionID FlexString       `json:"transaction_id"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
}

const StatusProcessed = "processed"

func (t Transaction) Processed() bool {
	return strings.EqualFold(t.Status, StatusProcessed)
}

func ParseTransaction(rawPayload string) (Transaction, error) {
	if !strings.HasPrefix(strings.TrimSpace(rawPayload), "{") {
		return Transaction{}, fmt.Errorf("payment payload is not a json object")
	}
	tx := Transaction{}
	err := json.Unmarshal([]byte(rawPayload), &tx)
	if err != nil {
		return tx, fmt.Errorf("error parsing payment payload: %w", err)
	}
	return tx, nil
}

// FlexString accepts both json strings and numbers.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var n json.Number
	err := json.Unmarshal(data, &n)
	if err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

var (
	encoder = newEncoder()
	decoder = newDecoder()
)

func newEncoder() *formcodec.Encoder {
	e := formcodec.NewEncoder()
	e.RegisterCustomTypeFunc(func(x any) ([]string, error) {
		d := x.(decimal.Decimal)
		if d.IsZero() {
			return nil, nil
		}
		return []string{d.String()}, nil
	}, decimal.Decimal{})
	return e
}

func newDecoder() *formcodec.Decoder {
	d := formcodec.NewDecoder()
	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		if len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(strings.TrimSpace(vals[0]))
	}, decimal.Decimal{})
	return d
}

// EncodeForm encodes a struct with form tags, zero decimals are left out.
func EncodeForm(v any) (url.Values, error) {
	values, err := encoder.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding form: %s", err)
	}
	return values, nil
}

func (r CreateIntentRequest) ToForm() (url.Values, error) {
	r.Action = ActionCreateIntent
	return EncodeForm(r)
}

func CreateIntentRequestFromValues(values url.Values) (CreateIntentRequest, error) {
	req := CreateIntentRequest{}
	err := decoder.Decode(&req, values)
	if err != nil {
		return req, fmt.Errorf("error decoding form: %s", err)
	}
	return req, nil
}

func (r VerifyPaymentRequest) ToForm() (url.Values, error) {
	r.Action = ActionVerifyPayment
	return EncodeForm(r)
}

func VerifyPaymentRequestFromValues(values url.Values) (VerifyPaymentRequest, error) {
	req := VerifyPaymentRequest{}
	err := decoder.Decode(&req, values)
	if err != nil {
		return req, fmt.Errorf("error decoding form: %s", err)
	}
	return req, nil
}

package contracttests

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/canpayshop/lib/mystore"
	"github.com/MarcGrol/canpayshop/lib/myuuid"
	"github.com/MarcGrol/canpayshop/services/canpay"
)

// amountLimit mimics the per-transaction limit of the sandbox.
var amountLimit = decimal.NewFromInt(10000)

type FakeIntent struct {
	IntentID               string
	Amount                 string
	DeliveryFeeSent        bool
	SplitFundingMerchantID string
}

// FakeCanPay plays the CanPay authorize endpoint and signs payment results like the widget backend does.
type FakeCanPay struct {
	appKey    string
	apiSecret string
	uuider    myuuid.UUIDer
	Intents   *mystore.InMemoryStore[FakeIntent]
}

func NewFakeCanPay(appKey string, apiSecret string) *FakeCanPay {
	store, _, _ := mystore.NewInMemoryStore[FakeIntent](context.Background())
	return &FakeCanPay{
		appKey:    appKey,
		apiSecret: apiSecret,
		uuider:    myuuid.RealUUIDer{},
		Intents:   store,
	}
}

func (f *FakeCanPay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if r.PostForm.Get("app_key") != f.appKey || r.PostForm.Get("api_secret") != f.apiSecret {
		f.reply(w, map[string]any{"code": 401, "message": "Invalid credentials"})
		return
	}

	amount, err := decimal.NewFromString(r.PostForm.Get("amount"))
	if err != nil || !amount.IsPositive() {
		f.reply(w, map[string]any{"code": 422, "message": "Invalid amount"})
		return
	}
	// Dirty exception coded into fake
	if amount.GreaterThan(amountLimit) {
		f.reply(w, map[string]any{"code": 422, "message": "Amount exceeds limit"})
		return
	}

	intent := FakeIntent{
		IntentID:               f.uuider.Create(),
		Amount:                 amount.String(),
		DeliveryFeeSent:        r.PostForm.Has("delivery_fee"),
		SplitFundingMerchantID: r.PostForm.Get("split_funding_merchant_id"),
	}
	err = f.Intents.Put(r.Context(), intent.IntentID, intent)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	f.reply(w, map[string]any{"code": 200, "message": "success", "data": map[string]any{"intent_id": intent.IntentID}})
}

// SignedResult returns a payment payload for the intent plus its signature.
func (f *FakeCanPay) SignedResult(intentID string, status string) (string, string) {
	payload, _ := json.Marshal(map[string]any{
		"intent_id":      intentID,
		"transaction_id": "tx_" + intentID,
		"status":         status,
	})
	return string(payload), canpay.Sign(string(payload), f.apiSecret)
}

func (f *FakeCanPay) reply(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

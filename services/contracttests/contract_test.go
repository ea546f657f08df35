package contracttests

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/canpayshop/lib/myerrors"
	"github.com/MarcGrol/canpayshop/lib/myhttpclient"
	"github.com/MarcGrol/canpayshop/lib/mymetrics"
	"github.com/MarcGrol/canpayshop/lib/mypublisher"
	"github.com/MarcGrol/canpayshop/lib/mypubsub"
	"github.com/MarcGrol/canpayshop/lib/mystore"
	"github.com/MarcGrol/canpayshop/lib/mytime"
	"github.com/MarcGrol/canpayshop/services/canpay"
	"github.com/MarcGrol/canpayshop/services/checkout"
)

const (
	appKey    = "app_1"
	apiSecret = "secret_1"
)

type PaymentBackend interface {
	checkout.IntentCreator
	checkout.PaymentVerifier
}

func TestInProcessService(t *testing.T) {
	PaymentBackendContract{
		backend: func(t *testing.T, upstreamURL string) PaymentBackend {
			return newService(t, upstreamURL)
		},
	}.Test(t)
}

func TestHTTPClient(t *testing.T) {
	PaymentBackendContract{
		backend: func(t *testing.T, upstreamURL string) PaymentBackend {
			router := mux.NewRouter()
			require.NoError(t, canpay.NewWebService(newService(t, upstreamURL)).RegisterEndpoints(context.Background(), router))
			server := httptest.NewServer(router)
			t.Cleanup(server.Close)

			return checkout.NewClient(server.URL, myhttpclient.New("shop", time.Second))
		},
	}.Test(t)
}

type PaymentBackendContract struct {
	backend func(t *testing.T, upstreamURL string) PaymentBackend
}

func (c PaymentBackendContract) Test(t *testing.T) {
	setup := func(t *testing.T) (PaymentBackend, *FakeCanPay) {
		fake := NewFakeCanPay(appKey, apiSecret)
		upstream := httptest.NewServer(fake)
		t.Cleanup(upstream.Close)
		return c.backend(t, upstream.URL), fake
	}

	t.Run("creates an intent that is known upstream", func(t *testing.T) {
		var (
			sut, fake = setup(t)
			ctx       = context.Background()
		)

		intentID, err := sut.CreateIntent(ctx, decimal.RequireFromString("25.00"), decimal.Zero, "")
		require.NoError(t, err)

		intent, found, err := fake.Intents.Get(ctx, intentID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "25", intent.Amount)
		assert.False(t, intent.DeliveryFeeSent)
		assert.Empty(t, intent.SplitFundingMerchantID)
	})

	t.Run("passes optional fields when present", func(t *testing.T) {
		var (
			sut, fake = setup(t)
			ctx       = context.Background()
		)

		intentID, err := sut.CreateIntent(ctx, decimal.RequireFromString("25.00"), decimal.RequireFromString("3.95"), "merchant_9")
		require.NoError(t, err)

		intent, _, err := fake.Intents.Get(ctx, intentID)
		require.NoError(t, err)
		assert.True(t, intent.DeliveryFeeSent)
		assert.Equal(t, "merchant_9", intent.SplitFundingMerchantID)
	})

	// example of upstream behaviour we did not design for
	t.Run("the upstream refuses amounts above its limit", func(t *testing.T) {
		var (
			sut, _ = setup(t)
			ctx    = context.Background()
		)

		_, err := sut.CreateIntent(ctx, decimal.RequireFromString("10000.01"), decimal.Zero, "")
		assert.Error(t, err)
		assert.Equal(t, 503, myerrors.GetHTTPStatus(err))
		assert.Contains(t, err.Error(), "Amount exceeds limit")
	})

	t.Run("accepts a signed result", func(t *testing.T) {
		var (
			sut, fake = setup(t)
			ctx       = context.Background()
		)

		payload, signature := fake.SignedResult("int_1", "processed")
		tx, err := sut.VerifyPayment(ctx, payload, signature)
		require.NoError(t, err)
		assert.True(t, tx.Processed())
		assert.Equal(t, "tx_int_1", string(tx.TransactionID))
	})

	t.Run("rejects a tampered result", func(t *testing.T) {
		var (
			sut, fake = setup(t)
			ctx       = context.Background()
		)

		_, signature := fake.SignedResult("int_1", "failed")
		payload, _ := fake.SignedResult("int_1", "processed")
		_, err := sut.VerifyPayment(ctx, payload, signature)
		assert.Equal(t, 403, myerrors.GetHTTPStatus(err))
	})
}

func newService(t *testing.T, upstreamURL string) *canpay.Service {
	c := context.Background()

	intentStore, _, err := mystore.NewInMemoryStore[canpay.IntentRecord](c)
	require.NoError(t, err)
	paymentStore, _, err := mystore.NewInMemoryStore[canpay.PaymentRecord](c)
	require.NoError(t, err)

	return canpay.NewService(canpay.Config{
		Environment:     canpay.EnvironmentSandbox,
		AppKey:          appKey,
		APISecret:       apiSecret,
		IntegratorID:    "integrator_1",
		InternalVersion: "3.0",
		APIURL:          upstreamURL,
	}, myhttpclient.New("canpay", time.Second), intentStore, paymentStore, mypublisher.New(mypubsub.NewFake(), mytime.RealNower{}), mymetrics.New("canpay"), mytime.RealNower{})
}

package checkout

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/canpayshop/lib/myerrors"
	"github.com/MarcGrol/canpayshop/lib/myhttpclient"
	"github.com/MarcGrol/canpayshop/lib/mylocalstorage"
	"github.com/MarcGrol/canpayshop/lib/mymetrics"
	"github.com/MarcGrol/canpayshop/lib/mypublisher"
	"github.com/MarcGrol/canpayshop/lib/mypubsub"
	"github.com/MarcGrol/canpayshop/lib/mystore"
	"github.com/MarcGrol/canpayshop/lib/mytime"
	"github.com/MarcGrol/canpayshop/lib/myuuid"
	"github.com/MarcGrol/canpayshop/services/canpay"
	"github.com/MarcGrol/canpayshop/services/canpay/canpayevents"
	"github.com/MarcGrol/canpayshop/services/cart"
)

func TestClient(t *testing.T) {
	c := context.TODO()

	t.Run("Create intent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := myhttpclient.NewMockHTTPSender(ctrl)

		// given
		sender.EXPECT().PostForm(gomock.Any(), "http://shop.test/api/canpay", gomock.Any()).DoAndReturn(func(c context.Context, endpoint string, form url.Values) (int, []byte, error) {
			assert.Equal(t, "create_intent", form.Get("action"))
			assert.Equal(t, "39.98", form.Get("amount"))
			assert.NotContains(t, form, "delivery_fee")
			return 200, []byte(`{"success":true,"intent_id":"int_1"}`), nil
		})

		// when
		intentID, err := NewClient("http://shop.test/", sender).CreateIntent(c, decimal.RequireFromString("39.98"), decimal.Zero, "")

		// then
		require.NoError(t, err)
		assert.Equal(t, "int_1", intentID)
	})

	t.Run("Server errors keep their classification", func(t *testing.T) {
		testCases := []struct {
			name       string
			status     int
			body       string
			err        error
			httpStatus int
		}{
			{name: "rejected signature", status: 403, body: `{"success":false,"errorCode":6,"error":"Invalid signature"}`, httpStatus: 403},
			{name: "bad input", status: 400, body: `{"success":false,"errorCode":5,"error":"Missing response data or signature"}`, httpStatus: 400},
			{name: "upstream down", status: 503, body: `{"success":false,"errorCode":4,"error":"HTTP Error: 502"}`, httpStatus: 503},
			{name: "garbage", status: 502, body: `<html>`, httpStatus: 503},
			{name: "transport", err: errors.New("connection refused"), httpStatus: 503},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				sender := myhttpclient.NewMockHTTPSender(ctrl)

				// given
				sender.EXPECT().PostForm(gomock.Any(), gomock.Any(), gomock.Any()).Return(tc.status, []byte(tc.body), tc.err)

				// when
				_, err := NewClient("http://shop.test", sender).VerifyPayment(c, processedPayload, "sig")

				// then
				assert.Error(t, err)
				assert.Equal(t, tc.httpStatus, myerrors.GetHTTPStatus(err))
			})
		}
	})
}

// TestCheckoutEndToEnd runs the orchestrator against the real server endpoint and a fake CanPay upstream.
func TestCheckoutEndToEnd(t *testing.T) {
	const secret = "secret_1"

	t.Run("Signed processed payment succeeds", func(t *testing.T) {
		// setup
		ctx, sut, cartStore, widget, pubsub := setupEndToEnd(t, secret)
		require.NoError(t, cartStore.AddOrReplaceSingleItem(ctx, redShirt))
		widget.respond = func(cfg LaunchConfig) {
			cfg.ProcessedCallback(PaymentResult{
				Status:     PaymentProcessed,
				RawPayload: processedPayload,
				Signature:  canpay.Sign(processedPayload, secret),
			})
		}

		// when
		outcome, err := sut.Checkout(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, OutcomeSucceeded, outcome)
		assert.Equal(t, StateSucceeded, sut.State())
		assert.Equal(t, 0, cartStore.ItemCount())
		assert.Len(t, pubsub.Published(canpayevents.TopicName), 2)
	})

	t.Run("Forged signature fails and keeps the cart", func(t *testing.T) {
		// setup
		ctx, sut, cartStore, widget, _ := setupEndToEnd(t, secret)
		require.NoError(t, cartStore.AddOrReplaceSingleItem(ctx, redShirt))
		widget.respond = func(cfg LaunchConfig) {
			cfg.ProcessedCallback(PaymentResult{
				Status:     PaymentProcessed,
				RawPayload: processedPayload,
				Signature:  canpay.Sign(processedPayload, "guessed"),
			})
		}

		// when
		outcome, err := sut.Checkout(ctx)

		// then
		assert.Error(t, err)
		assert.Equal(t, OutcomeVerificationFailed, outcome)
		assert.Equal(t, StateFailed, sut.State())
		assert.Equal(t, 2, cartStore.ItemCount())
	})

	t.Run("Misconfigured server is a service failure", func(t *testing.T) {
		// setup
		ctx, sut, cartStore, _, _ := setupEndToEnd(t, "")
		require.NoError(t, cartStore.AddOrReplaceSingleItem(ctx, redShirt))

		// when
		outcome, err := sut.Checkout(ctx)

		// then
		assert.Error(t, err)
		assert.Equal(t, OutcomeServiceFailure, outcome)
		assert.Equal(t, StateFailed, sut.State())
	})
}

type fakeWidget struct {
	respond func(cfg LaunchConfig)
}

func (w *fakeWidget) Launch(c context.Context, cfg LaunchConfig) error {
	if w.respond == nil {
		return errors.New("widget not loaded")
	}
	go w.respond(cfg)
	return nil
}

func setupEndToEnd(t *testing.T, secret string) (context.Context, *Orchestrator, *cart.Store, *fakeWidget, *mypubsub.FakePubSub) {
	c := context.TODO()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, secret, r.PostForm.Get("api_secret"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"message":"success","data":{"intent_id":"int_e2e"}}`))
	}))
	t.Cleanup(upstream.Close)

	intentStore, _, err := mystore.NewInMemoryStore[canpay.IntentRecord](c)
	require.NoError(t, err)
	paymentStore, _, err := mystore.NewInMemoryStore[canpay.PaymentRecord](c)
	require.NoError(t, err)
	pubsub := mypubsub.NewFake()

	service := canpay.NewService(canpay.Config{
		Environment:     canpay.EnvironmentSandbox,
		AppKey:          "app_1",
		APISecret:       secret,
		IntegratorID:    "integrator_1",
		InternalVersion: "3.0",
		APIURL:          upstream.URL,
	}, myhttpclient.New("canpay", time.Second), intentStore, paymentStore, mypublisher.New(pubsub, mytime.RealNower{}), mymetrics.New("canpay"), mytime.RealNower{})

	router := mux.NewRouter()
	require.NoError(t, canpay.NewWebService(service).RegisterEndpoints(c, router))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	cartStore := cart.New(c, mylocalstorage.NewMemoryStorage())
	client := NewClient(server.URL, myhttpclient.New("shop", time.Second))
	widget := &fakeWidget{}

	sut := NewOrchestrator(Config{ResultTimeout: 5 * time.Second}, cartStore, client, widget, client, myuuid.RealUUIDer{}, mytime.RealNower{})

	return c, sut, cartStore, widget, pubsub
}

package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/canpayshop/services/checkout"
)

func TestTerminalWidget(t *testing.T) {
	t.Run("Pasted response is reported as processed", func(t *testing.T) {
		// setup
		in, out := script(processedPayload, "sig_1")
		results := make(chan checkout.PaymentResult, 1)

		// when
		err := (&terminalWidget{in: in, out: out}).Launch(context.TODO(), checkout.LaunchConfig{
			IntentID:          "int_1",
			ProcessedCallback: func(r checkout.PaymentResult) { results <- r },
		})

		// then
		require.NoError(t, err)
		assert.Contains(t, out.String(), `"intent_id": "int_1"`)
		select {
		case r := <-results:
			assert.Equal(t, checkout.PaymentProcessed, r.Status)
			assert.Equal(t, "tx_1", r.TransactionID)
			assert.Equal(t, processedPayload, r.RawPayload)
			assert.Equal(t, "sig_1", r.Signature)
			require.NotNil(t, r.Amount)
			assert.Equal(t, "39.98", r.Amount.StringFixed(2))
		case <-time.After(time.Second):
			t.Fatal("no processed callback")
		}
	})

	t.Run("Empty response rejects the intent", func(t *testing.T) {
		// setup
		in, out := script("")
		failures := make(chan checkout.ValidationFailure, 1)

		// when
		err := (&terminalWidget{in: in, out: out}).Launch(context.TODO(), checkout.LaunchConfig{
			IntentIDValidationCallback: func(f checkout.ValidationFailure) { failures <- f },
		})

		// then
		require.NoError(t, err)
		select {
		case f := <-failures:
			assert.Equal(t, "intent rejected in terminal", f.Message)
		case <-time.After(time.Second):
			t.Fatal("no validation callback")
		}
	})

	t.Run("Closed input fails the launch", func(t *testing.T) {
		// setup
		in, out := script()

		// when
		err := (&terminalWidget{in: in, out: out}).Launch(context.TODO(), checkout.LaunchConfig{})

		// then
		assert.Error(t, err)
	})
}

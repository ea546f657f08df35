package mymetrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New("canpay")

	m.Observe("create_intent", "success", time.Now())
	m.Observe("create_intent", "success", time.Now())
	m.Observe("verify_payment", "invalid_signature", time.Now())

	assert.Equal(t, float64(2), m.Count("create_intent", "success"))
	assert.Equal(t, float64(1), m.Count("verify_payment", "invalid_signature"))
	assert.Equal(t, float64(0), m.Count("verify_payment", "success"))

	response := httptest.NewRecorder()
	m.Handler().ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, 200, response.Code)
	assert.Contains(t, response.Body.String(), `canpayshop_canpay_operations_total{operation="create_intent",outcome="success"} 2`)
}

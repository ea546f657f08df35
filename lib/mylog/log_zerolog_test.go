package mylog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/canpayshop/lib/mycontext"
)

func TestLogger(t *testing.T) {
	t.Run("Structured entry", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewWithWriter("canpay", buf, true)

		req := httptest.NewRequest("POST", "/api/canpay", nil)
		req.Header.Set("X-Cloud-Trace-Context", "abc/123;o=1")
		logger.Log(mycontext.ContextFromHTTPRequest(req), "intent_1", SeverityWarn, "amount %s rejected", "0.00")

		entry := map[string]any{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "canpay", entry["component"])
		assert.Equal(t, "intent_1", entry["aggregate"])
		assert.Equal(t, "WARN", entry["severity"])
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "amount 0.00 rejected", entry["message"])
		assert.Contains(t, entry["logging.googleapis.com/trace"], "/traces/abc")
	})

	t.Run("Plain entry has no gcloud fields", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewWithWriter("cart", buf, false)

		logger.Log(context.TODO(), "", SeverityDebug, "restored %d items", 2)

		entry := map[string]any{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "debug", entry["level"])
		assert.Equal(t, "restored 2 items", entry["message"])
		assert.NotContains(t, entry, "severity")
		assert.NotContains(t, entry, "aggregate")
	})
}

package mycontext

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextFromHTTPRequest(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "canpayshop")

	testCases := []struct {
		name    string
		headers map[string]string
		trace   string
	}{
		{name: "no headers", trace: ""},
		{
			name:    "cloud trace",
			headers: map[string]string{"X-Cloud-Trace-Context": "105445aa7843bc8bf206b12000100000/1;o=1"},
			trace:   "projects/canpayshop/traces/105445aa7843bc8bf206b12000100000",
		},
		{
			name:    "traceparent",
			headers: map[string]string{"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"},
			trace:   "projects/canpayshop/traces/4bf92f3577b34da6a3ce929d0e0e4736",
		},
		{
			name: "cloud trace wins",
			headers: map[string]string{
				"X-Cloud-Trace-Context": "105445aa7843bc8bf206b12000100000/1;o=1",
				"traceparent":           "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			},
			trace: "projects/canpayshop/traces/105445aa7843bc8bf206b12000100000",
		},
		{name: "malformed traceparent", headers: map[string]string{"traceparent": "garbage"}, trace: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			request, _ := http.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				request.Header.Set(k, v)
			}

			c := ContextFromHTTPRequest(request)

			assert.Equal(t, tc.trace, TraceFromContext(c))
		})
	}
}

package myhttpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormHTTPClient(t *testing.T) {
	c := context.TODO()

	t.Run("Posts form and returns body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "25", r.PostForm.Get("amount"))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"code":200}`))
		}))
		defer server.Close()

		status, body, err := New("upstream", time.Second).PostForm(c, server.URL, url.Values{"amount": []string{"25"}})
		require.NoError(t, err)
		assert.Equal(t, 200, status)
		assert.Equal(t, `{"code":200}`, string(body))
	})

	t.Run("Server error is a response, not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		status, _, err := New("upstream", time.Second).PostForm(c, server.URL, url.Values{})
		require.NoError(t, err)
		assert.Equal(t, 502, status)
	})

	t.Run("Transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		_, _, err := New("upstream", time.Second).PostForm(c, server.URL, url.Values{})
		assert.Error(t, err)
	})

	t.Run("Circuit opens after consecutive failures", func(t *testing.T) {
		calls := int32(0)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		sender := New("upstream", time.Second)
		for i := 0; i < breakerFailureThreshold; i++ {
			_, _, err := sender.PostForm(c, server.URL, url.Values{})
			assert.NoError(t, err)
		}

		_, _, err := sender.PostForm(c, server.URL, url.Values{})
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, int32(breakerFailureThreshold), atomic.LoadInt32(&calls))
	})
}

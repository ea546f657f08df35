package warmup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/canpayshop/lib/myerrors"
	"github.com/MarcGrol/canpayshop/lib/myhttp"
)

func TestWarmup(t *testing.T) {
	t.Run("All checks pass", func(t *testing.T) {
		// setup
		router := setup(t, func(c context.Context) error { return nil })

		// when
		response := warmup(router)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		resp := myhttp.SuccessResponse{}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "ready", resp.Message)
	})

	t.Run("Failing check makes warmup fail", func(t *testing.T) {
		// setup
		router := setup(t,
			func(c context.Context) error { return nil },
			func(c context.Context) error { return myerrors.NewInternalError(errors.New("app key is missing")) },
		)

		// when
		response := warmup(router)

		// then
		assert.Equal(t, http.StatusInternalServerError, response.Code)
		resp := myhttp.ErrorResponse{}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "app key is missing")
	})
}

func setup(t *testing.T, checks ...Check) *mux.Router {
	router := mux.NewRouter()
	require.NoError(t, NewService(checks...).RegisterEndpoints(context.TODO(), router))
	return router
}

func warmup(router *mux.Router) *httptest.ResponseRecorder {
	request, _ := http.NewRequest(http.MethodGet, "/_ah/warmup", nil)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

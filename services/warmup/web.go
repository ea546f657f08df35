package warmup

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/canpayshop/lib/mycontext"
	"github.com/MarcGrol/canpayshop/lib/myhttp"
	"github.com/MarcGrol/canpayshop/lib/mylog"
)

// Check reports whether a dependency is ready to serve traffic.
type Check func(c context.Context) error

type webService struct {
	logger mylog.Logger
	checks []Check
}

func NewService(checks ...Check) *webService {
	return &webService{
		logger: mylog.New("warmup"),
		checks: checks,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")

	return nil
}

func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		for _, check := range s.checks {
			err := check(c)
			if err != nil {
				writer.WriteError(c, w, 1, err)
				return
			}
		}

		writer.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Success: true,
			Message: "ready",
		})
	}
}

package canpay

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/canpayshop/lib/mycontext"
	"github.com/MarcGrol/canpayshop/lib/myerrors"
	"github.com/MarcGrol/canpayshop/lib/myhttp"
	"github.com/MarcGrol/canpayshop/lib/mylog"
	"github.com/MarcGrol/canpayshop/services/canpay/canpayapi"
)

type webService struct {
	logger   mylog.Logger
	service  *Service
	validate *validator.Validate
}

func NewWebService(service *Service) *webService {
	return &webService{
		logger:   mylog.New("canpayweb"),
		service:  service,
		validate: validator.New(),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc(canpayapi.Path, s.handleAction()).Methods("POST")
	router.HandleFunc(canpayapi.WidgetPath, s.widgetConfig()).Methods("GET")

	return nil
}

// handleAction dispatches on the action field, taken from the form body or the query string.
func (s *webService) handleAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		switch action := r.FormValue("action"); action {
		case canpayapi.ActionCreateIntent:
			s.createIntent(c, w, r)
		case canpayapi.ActionVerifyPayment:
			s.verifyPayment(c, w, r)
		default:
			s.logger.Log(c, "", mylog.SeverityInfo, "Unsupported action %q", action)
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(&InputError{Message: "Invalid action"}))
		}
	}
}

func (s *webService) widgetConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		writer := myhttp.NewWriter(s.logger)

		writer.Write(c, w, http.StatusOK, canpayapi.WidgetConfigResponse{
			Success:     true,
			Environment: s.service.cfg.Environment,
			WidgetURL:   s.service.cfg.WidgetURL,
		})
	}
}

func (s *webService) createIntent(c context.Context, w http.ResponseWriter, r *http.Request) {
	errorWriter := myhttp.NewWriter(s.logger)

	req, err := canpayapi.CreateIntentRequestFromValues(r.Form)
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityInfo, "Invalid create-intent request: %s", err)
		errorWriter.WriteError(c, w, 3, myerrors.NewInvalidInputError(&InputError{Message: "Invalid amount"}))
		return
	}

	intentID, err := s.service.CreateIntent(c, req.Amount, req.DeliveryFee, req.SplitFundingMerchantID)
	if err != nil {
		errorWriter.WriteError(c, w, 4, err)
		return
	}

	errorWriter.Write(c, w, http.StatusOK, canpayapi.CreateIntentResponse{
		Success:  true,
		IntentID: intentID,
	})
}

func (s *webService) verifyPayment(c context.Context, w http.ResponseWriter, r *http.Request) {
	errorWriter := myhttp.NewWriter(s.logger)

	req, err := canpayapi.VerifyPaymentRequestFromValues(r.Form)
	if err == nil {
		err = s.validate.Struct(req)
	}
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityInfo, "Invalid verify-payment request: %s", err)
		errorWriter.WriteError(c, w, 5, myerrors.NewInvalidInputError(&InputError{Message: "Missing response data or signature"}))
		return
	}

	_, err = s.service.VerifyPayment(c, req.Response, req.Signature)
	if err != nil {
		errorWriter.WriteError(c, w, 6, err)
		return
	}

	// Verified and parsed, so it is echoed back as is.
	errorWriter.Write(c, w, http.StatusOK, canpayapi.VerifyPaymentResponse{
		Success:     true,
		Message:     canpayapi.VerifiedMessage,
		Transaction: json.RawMessage(req.Response),
	})
}

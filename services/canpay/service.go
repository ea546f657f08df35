package canpay

import (
	"errors"
	"time"

	"github.com/MarcGrol/canpayshop/lib/myhttpclient"
	"github.com/MarcGrol/canpayshop/lib/mylog"
	"github.com/MarcGrol/canpayshop/lib/mymetrics"
	"github.com/MarcGrol/canpayshop/lib/mypublisher"
	"github.com/MarcGrol/canpayshop/lib/mystore"
	"github.com/MarcGrol/canpayshop/lib/mytime"
)

const (
	operationCreateIntent  = "create_intent"
	operationVerifyPayment = "verify_payment"
)

// Service creates payment intents upstream and verifies signed payment results. It is the only component
// that holds merchant credentials.
type Service struct {
	cfg          Config
	sender       myhttpclient.HTTPSender
	intentStore  mystore.Store[IntentRecord]
	paymentStore mystore.Store[PaymentRecord]
	publisher    mypublisher.Publisher
	metrics      *mymetrics.Metrics
	nower        mytime.Nower
	logger       mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(cfg Config, sender myhttpclient.HTTPSender, intentStore mystore.Store[IntentRecord], paymentStore mystore.Store[PaymentRecord], publisher mypublisher.Publisher, metrics *mymetrics.Metrics, nower mytime.Nower) *Service {
	return &Service{
		cfg:          cfg,
		sender:       sender,
		intentStore:  intentStore,
		paymentStore: paymentStore,
		publisher:    publisher,
		metrics:      metrics,
		nower:        nower,
		logger:       mylog.New("canpay"),
	}
}

func (s *Service) observe(operation string, started time.Time, err error) {
	s.metrics.Observe(operation, outcomeOf(err), started)
}

func outcomeOf(err error) string {
	var (
		configErr       *ConfigurationError
		networkErr      *NetworkError
		upstreamHTTPErr *UpstreamHTTPError
		upstreamErr     *UpstreamLogicalError
		verificationErr *VerificationError
		inputErr        *InputError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &configErr):
		return "configuration_error"
	case errors.As(err, &networkErr):
		return "network_error"
	case errors.As(err, &upstreamHTTPErr):
		return "upstream_http_error"
	case errors.As(err, &upstreamErr):
		return "upstream_error"
	case errors.As(err, &verificationErr):
		return "rejected"
	case errors.As(err, &inputErr):
		return "invalid_input"
	default:
		return "internal_error"
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/canpayshop/lib/myerrors"
	"github.com/MarcGrol/canpayshop/lib/myhttpclient"
	"github.com/MarcGrol/canpayshop/lib/mylog"
	"github.com/MarcGrol/canpayshop/lib/mymetrics"
	"github.com/MarcGrol/canpayshop/lib/mypublisher"
	"github.com/MarcGrol/canpayshop/lib/mypubsub"
	"github.com/MarcGrol/canpayshop/lib/mystore"
	"github.com/MarcGrol/canpayshop/lib/mytime"
	"github.com/MarcGrol/canpayshop/services/canpay"
	"github.com/MarcGrol/canpayshop/services/canpay/canpayevents"
	"github.com/MarcGrol/canpayshop/services/warmup"
)

var logger = mylog.New("main")

func main() {
	c := context.Background()

	cfg, err := canpay.LoadConfig(".env")
	if err != nil {
		fatalf(c, "Error loading config: %s", err)
	}
	err = cfg.Validate()
	if err != nil {
		// Keep serving: every request reports the problem without contacting CanPay.
		logger.Log(c, "", mylog.SeverityError, "CanPay is not usable: %s", err)
	}

	router := mux.NewRouter()

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		fatalf(c, "Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	publisher := mypublisher.New(pubsub, mytime.RealNower{})
	err = publisher.CreateTopic(c, canpayevents.TopicName)
	if err != nil {
		fatalf(c, "Error creating topic %s: %s", canpayevents.TopicName, err)
	}

	intentStore, intentStoreCleanup, err := mystore.New[canpay.IntentRecord](c)
	if err != nil {
		fatalf(c, "Error creating intent store: %s", err)
	}
	defer intentStoreCleanup()

	paymentStore, paymentStoreCleanup, err := mystore.New[canpay.PaymentRecord](c)
	if err != nil {
		fatalf(c, "Error creating payment store: %s", err)
	}
	defer paymentStoreCleanup()

	metrics := mymetrics.New("canpay")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	service := canpay.NewService(cfg, myhttpclient.New("canpay", cfg.RequestTimeout), intentStore, paymentStore, publisher, metrics, mytime.RealNower{})
	err = canpay.NewWebService(service).RegisterEndpoints(c, router)
	if err != nil {
		fatalf(c, "Error registering canpay endpoints: %s", err)
	}

	err = warmup.NewService(canpayReady(cfg)).RegisterEndpoints(c, router)
	if err != nil {
		fatalf(c, "Error registering warmup endpoint: %s", err)
	}

	startWebServerBlocking(c, withCORS(router))
}

func canpayReady(cfg canpay.Config) warmup.Check {
	return func(c context.Context) error {
		err := cfg.Validate()
		if err != nil {
			return myerrors.NewUnavailableError(err)
		}
		return nil
	}
}

// withCORS lets the storefront call the endpoint from any origin.
func withCORS(h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(h)
}

func startWebServerBlocking(c context.Context, handler http.Handler) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Log(c, "", mylog.SeverityInfo, "Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), handler)
	if err != nil {
		fatalf(c, "Error starting webserver on port %s: %s", port, err)
	}
}

func fatalf(c context.Context, format string, args ...any) {
	logger.Log(c, "", mylog.SeverityError, format, args...)
	os.Exit(1)
}

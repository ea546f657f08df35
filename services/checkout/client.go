package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/canpayshop/lib/myerrors"
	"github.com/MarcGrol/canpayshop/lib/myhttpclient"
	"github.com/MarcGrol/canpayshop/lib/mylog"
	"github.com/MarcGrol/canpayshop/services/canpay/canpayapi"
)

// Client talks to the shop's own server endpoint, which holds the CanPay credentials.
type Client struct {
	endpoint string
	sender   myhttpclient.HTTPSender
	logger   mylog.Logger
}

func NewClient(serverURL string, sender myhttpclient.HTTPSender) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(serverURL, "/") + canpayapi.Path,
		sender:   sender,
		logger:   mylog.New("checkoutclient"),
	}
}

func (cl *Client) CreateIntent(c context.Context, amount decimal.Decimal, deliveryFee decimal.Decimal, splitFundingMerchantID string) (string, error) {
	form, err := canpayapi.CreateIntentRequest{
		Amount:                 amount,
		DeliveryFee:            deliveryFee,
		SplitFundingMerchantID: splitFundingMerchantID,
	}.ToForm()
	if err != nil {
		return "", myerrors.NewInternalError(err)
	}

	httpStatus, body, err := cl.sender.PostForm(c, cl.endpoint, form)
	if err != nil {
		return "", myerrors.NewUnavailableError(err)
	}

	resp := canpayapi.CreateIntentResponse{}
	err = json.Unmarshal(body, &resp)
	if err != nil {
		return "", myerrors.NewUnavailableError(fmt.Errorf("error parsing create-intent response (status %d): %s", httpStatus, err))
	}
	if httpStatus != http.StatusOK || !resp.Success {
		return "", responseError(httpStatus, resp.Error)
	}

	cl.logger.Log(c, resp.IntentID, mylog.SeverityInfo, "Obtained intent %s", resp.IntentID)

	return resp.IntentID, nil
}

func (cl *Client) VerifyPayment(c context.Context, rawPayload string, signature string) (canpayapi.Transaction, error) {
	form, err := canpayapi.VerifyPaymentRequest{
		Response:  rawPayload,
		Signature: signature,
	}.ToForm()
	if err != nil {
		return canpayapi.Transaction{}, myerrors.NewInternalError(err)
	}

	httpStatus, body, err := cl.sender.PostForm(c, cl.endpoint, form)
	if err != nil {
		return canpayapi.Transaction{}, myerrors.NewUnavailableError(err)
	}

	resp := canpayapi.VerifyPaymentResponse{}
	err = json.Unmarshal(body, &resp)
	if err != nil {
		return canpayapi.Transaction{}, myerrors.NewUnavailableError(fmt.Errorf("error parsing verify-payment response (status %d): %s", httpStatus, err))
	}
	if httpStatus != http.StatusOK || !resp.Success {
		return canpayapi.Transaction{}, responseError(httpStatus, resp.Error)
	}

	tx, err := canpayapi.ParseTransaction(string(resp.Transaction))
	if err != nil {
		return canpayapi.Transaction{}, myerrors.NewAuthenticationError(err)
	}

	return tx, nil
}

// responseError keeps the classification of the server: rejected input stays rejected input, everything
// else is a service failure.
func responseError(httpStatus int, message string) error {
	if message == "" {
		message = "unknown error"
	}
	err := errors.New(message)

	switch httpStatus {
	case http.StatusBadRequest:
		return myerrors.NewInvalidInputError(err)
	case http.StatusForbidden:
		return myerrors.NewAuthenticationError(err)
	default:
		return myerrors.NewUnavailableError(err)
	}
}

package canpay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/canpayshop/lib/myerrors"
	"github.com/MarcGrol/canpayshop/lib/mylog"
	"github.com/MarcGrol/canpayshop/services/canpay/canpayapi"
	"github.com/MarcGrol/canpayshop/services/canpay/canpayevents"
)

// CreateIntent asks CanPay for a fresh intent for this amount. The returned intent id is opaque.
func (s *Service) CreateIntent(c context.Context, amount decimal.Decimal, deliveryFee decimal.Decimal, splitFundingMerchantID string) (string, error) {
	started := time.Now()
	intentID, err := s.createIntent(c, amount, deliveryFee, splitFundingMerchantID)
	s.observe(operationCreateIntent, started, err)
	return intentID, err
}

func (s *Service) createIntent(c context.Context, amount decimal.Decimal, deliveryFee decimal.Decimal, splitFundingMerchantID string) (string, error) {
	err := s.cfg.Validate()
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityError, "Refusing to create intent: %s", err)
		return "", myerrors.NewInternalError(err)
	}

	if !amount.IsPositive() {
		return "", myerrors.NewInvalidInputError(&InputError{Message: "Invalid amount"})
	}
	if deliveryFee.IsNegative() {
		return "", myerrors.NewInvalidInputError(&InputError{Message: "Invalid delivery fee"})
	}

	values, err := canpayapi.EncodeForm(authorizeRequest{
		AppKey:                 s.cfg.AppKey,
		APISecret:              s.cfg.APISecret,
		IntegratorID:           s.cfg.IntegratorID,
		InternalVersion:        s.cfg.InternalVersion,
		AuthOnly:               "false",
		Amount:                 amount,
		DeliveryFee:            deliveryFee,
		SplitFundingMerchantID: splitFundingMerchantID,
	})
	if err != nil {
		return "", myerrors.NewInternalError(err)
	}

	s.logger.Log(c, "", mylog.SeverityInfo, "Requesting intent for amount %s (delivery fee %s)", amount, deliveryFee)

	httpStatus, body, err := s.sender.PostForm(c, s.cfg.APIURL, values)
	if err != nil {
		return "", myerrors.NewUnavailableError(&NetworkError{Err: err})
	}
	if httpStatus != http.StatusOK {
		return "", myerrors.NewUnavailableError(&UpstreamHTTPError{Code: httpStatus})
	}

	resp := authorizeResponse{}
	err = json.Unmarshal(body, &resp)
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityWarn, "Unparseable authorize response: %s", err)
		return "", myerrors.NewUnavailableError(&UpstreamLogicalError{})
	}
	if resp.Code != http.StatusOK {
		return "", myerrors.NewUnavailableError(&UpstreamLogicalError{Message: resp.Message})
	}
	intentID := string(resp.Data.IntentID)
	if intentID == "" {
		return "", myerrors.NewUnavailableError(&UpstreamLogicalError{Message: "Missing intent id"})
	}

	err = s.recordIntent(c, IntentRecord{
		IntentID:               intentID,
		Amount:                 amount.String(),
		DeliveryFee:            deliveryFee.String(),
		SplitFundingMerchantID: splitFundingMerchantID,
		CreatedAt:              s.nower.Now(),
	})
	if err != nil {
		return "", err
	}

	s.logger.Log(c, intentID, mylog.SeverityInfo, "Created intent %s", intentID)

	return intentID, nil
}

func (s *Service) recordIntent(c context.Context, record IntentRecord) error {
	return s.intentStore.RunInTransaction(c, func(c context.Context) error {
		err := s.intentStore.Put(c, record.IntentID, record)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing intent %s: %w", record.IntentID, err))
		}

		err = s.publisher.Publish(c, canpayevents.TopicName, canpayevents.IntentCreated{
			IntentID:               record.IntentID,
			Amount:                 record.Amount,
			DeliveryFee:            record.DeliveryFee,
			SplitFundingMerchantID: record.SplitFundingMerchantID,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
}

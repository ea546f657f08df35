package canpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/MarcGrol/canpayshop/lib/myerrors"
	"github.com/MarcGrol/canpayshop/lib/mylog"
	"github.com/MarcGrol/canpayshop/services/canpay/canpayapi"
	"github.com/MarcGrol/canpayshop/services/canpay/canpayevents"
)

const (
	reasonInvalidSignature = "Invalid signature"
	reasonInvalidPayload   = "Invalid payment payload"
)

// Sign returns the lowercase hex HMAC-SHA256 of rawPayload under secret.
func Sign(rawPayload string, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(rawPayload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares in constant time. An empty secret or signature never verifies.
func Verify(rawPayload string, signature string, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(rawPayload, secret)), []byte(signature))
}

// VerifyPayment is the trust boundary for payment results coming in through the shopper's browser: nothing in
// the payload is used before the signature matches.
func (s *Service) VerifyPayment(c context.Context, rawPayload string, signature string) (canpayapi.Transaction, error) {
	started := time.Now()
	tx, err := s.verifyPayment(c, rawPayload, signature)
	s.observe(operationVerifyPayment, started, err)
	return tx, err
}

func (s *Service) verifyPayment(c context.Context, rawPayload string, signature string) (canpayapi.Transaction, error) {
	err := s.cfg.Validate()
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityError, "Refusing to verify payment: %s", err)
		return canpayapi.Transaction{}, myerrors.NewInternalError(err)
	}

	if rawPayload == "" || signature == "" {
		return canpayapi.Transaction{}, myerrors.NewInvalidInputError(&InputError{Message: "Missing response data or signature"})
	}

	if !Verify(rawPayload, signature, s.cfg.APISecret) {
		return canpayapi.Transaction{}, s.reject(c, signature, &VerificationError{Reason: reasonInvalidSignature})
	}

	tx, err := canpayapi.ParseTransaction(rawPayload)
	if err != nil {
		return canpayapi.Transaction{}, s.reject(c, signature, &VerificationError{Reason: reasonInvalidPayload, Err: err})
	}

	record := newPaymentRecord(tx, rawPayload, signature, s.nower.Now())
	err = s.paymentStore.RunInTransaction(c, func(c context.Context) error {
		err := s.paymentStore.Put(c, record.uid(), record)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing payment %s: %w", record.uid(), err))
		}

		err = s.publisher.Publish(c, canpayevents.TopicName, canpayevents.PaymentVerified{
			TransactionID: record.TransactionID,
			Status:        record.Status,
			Amount:        record.Amount,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return canpayapi.Transaction{}, err
	}

	s.logger.Log(c, record.TransactionID, mylog.SeverityInfo, "Verified payment %s with status %s", record.TransactionID, record.Status)

	return tx, nil
}

func (s *Service) reject(c context.Context, signature string, verificationErr *VerificationError) error {
	s.logger.Log(c, "", mylog.SeverityWarn, "Rejected payment result: %s", verificationErr)

	err := s.publisher.Publish(c, canpayevents.TopicName, canpayevents.PaymentRejected{
		Reason:    verificationErr.Reason,
		Signature: signature,
	})
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityError, "Error publishing rejection: %s", err)
	}

	return myerrors.NewAuthenticationError(verificationErr)
}

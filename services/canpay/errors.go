package canpay

import (
	"fmt"
)

type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("canpay configuration error: %s", e.Reason)
}

func (e *ConfigurationError) PublicMessage() string {
	return "CanPay credentials not configured. Please update the server configuration with your actual credentials."
}

type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("canpay network error: %s", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) PublicMessage() string {
	return "Payment service is unreachable, please try again"
}

type UpstreamHTTPError struct {
	Code int
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("canpay responded with http status %d", e.Code)
}

func (e *UpstreamHTTPError) PublicMessage() string {
	return fmt.Sprintf("HTTP Error: %d", e.Code)
}

// UpstreamLogicalError is a well formed upstream response that did not report success.
type UpstreamLogicalError struct {
	Message string
}

func (e *UpstreamLogicalError) Error() string {
	return fmt.Sprintf("canpay rejected request: %s", e.PublicMessage())
}

func (e *UpstreamLogicalError) PublicMessage() string {
	if e.Message == "" {
		return "Unknown error"
	}
	return e.Message
}

type VerificationError struct {
	Reason string
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment verification failed: %s: %s", e.Reason, e.Err)
	}
	return fmt.Sprintf("payment verification failed: %s", e.Reason)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

func (e *VerificationError) PublicMessage() string {
	return e.Reason
}

// InputError carries a message that is safe to show to the shopper as is.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) PublicMessage() string {
	return e.Message
}

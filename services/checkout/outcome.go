package checkout

// Outcome is all the shopper gets to see of a checkout attempt.
type Outcome string

const (
	OutcomeNone               Outcome = ""
	OutcomeEmptyCart          Outcome = "empty_cart"
	OutcomeServiceFailure     Outcome = "service_failure"
	OutcomeVerificationFailed Outcome = "verification_failed"
	OutcomeSucceeded          Outcome = "succeeded"
)

func (o Outcome) UserMessage() string {
	switch o {
	case OutcomeEmptyCart:
		return "Your cart is empty."
	case OutcomeServiceFailure:
		return "We could not complete your payment right now. Please try again."
	case OutcomeVerificationFailed:
		return "Your payment could not be verified. Please try again or contact us."
	case OutcomeSucceeded:
		return "Thank you! Your payment was successful."
	default:
		return ""
	}
}

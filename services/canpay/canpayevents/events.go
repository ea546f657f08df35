package canpayevents

const (
	TopicName           = "canpay"
	intentCreatedName   = TopicName + ".intentCreated"
	paymentVerifiedName = TopicName + ".paymentVerified"
	paymentRejectedName = TopicName + ".paymentRejected"
)

type IntentCreated struct {
	IntentID               string
	Amount                 string
	DeliveryFee            string
	SplitFundingMerchantID string
}

func (e IntentCreated) GetEventTypeName() string {
	return intentCreatedName
}

func (e IntentCreated) GetAggregateName() string {
	return e.IntentID
}

type PaymentVerified struct {
	TransactionID string
	Status        string
	Amount        string
}

func (e PaymentVerified) GetEventTypeName() string {
	return paymentVerifiedName
}

func (e PaymentVerified) GetAggregateName() string {
	return e.TransactionID
}

// PaymentRejected is emitted for every payload that failed signature or parse checks.
type PaymentRejected struct {
	Reason    string
	Signature string
}

func (e PaymentRejected) GetEventTypeName() string {
	return paymentRejectedName
}

func (e PaymentRejected) GetAggregateName() string {
	return e.Signature
}

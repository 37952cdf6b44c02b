package payment

type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeError   OutcomeKind = "error"
	OutcomeCancel  OutcomeKind = "cancel"
)

const (
	MsgPaymentNotFound     = "Payment_not_found"
	MsgCaptureNotCompleted = "Payment capture was not completed"
)

// Outcome is the result of a provider redirect, handed back to a client that
// resumes from an embedded browser.
type Outcome struct {
	Kind            OutcomeKind
	ProviderOrderID string
	PayerID         string
	Message         string
}

func SuccessOutcome(providerOrderID, payerID string) Outcome {
	return Outcome{Kind: OutcomeSuccess, ProviderOrderID: providerOrderID, PayerID: payerID}
}

func ErrorOutcome(msg string) Outcome {
	return Outcome{Kind: OutcomeError, Message: msg}
}

func CancelOutcome() Outcome {
	return Outcome{Kind: OutcomeCancel}
}

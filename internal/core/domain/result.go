package domain

// ResultKind is the outcome of a mutating economy operation. Callers branch
// on the kind rather than on errors; business-rule failures are values.
type ResultKind string

const (
	ResultSuccess        ResultKind = "SUCCESS"
	ResultFailure        ResultKind = "FAILURE"
	ResultNotImplemented ResultKind = "NOT_IMPLEMENTED"
)

// Result is the structured outcome of a deposit, withdrawal, set or transfer.
// On failure Balance is 0 and Message carries a user-displayable reason.
type Result struct {
	Amount  float64    `json:"amount"`
	Balance float64    `json:"balance"`
	Kind    ResultKind `json:"kind"`
	Message string     `json:"message,omitempty"`
}

// Succeeded reports whether the operation completed.
func (r Result) Succeeded() bool {
	return r.Kind == ResultSuccess
}

// SuccessResult builds a SUCCESS result with the resulting balance.
func SuccessResult(amount, balance float64) Result {
	return Result{Amount: amount, Balance: balance, Kind: ResultSuccess}
}

// FailureResult builds a FAILURE result carrying a user-facing message.
func FailureResult(amount float64, message string) Result {
	return Result{Amount: amount, Kind: ResultFailure, Message: message}
}

// NotImplementedResult marks an optional operation the provider does not support.
func NotImplementedResult(message string) Result {
	return Result{Kind: ResultNotImplemented, Message: message}
}

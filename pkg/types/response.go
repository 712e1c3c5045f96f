package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the wire shape of every failed request. Error carries the
// stable machine code so clients can tell a stock-out from other failures.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

package internal

import "encoding/json"

// User-facing messages the client normalizes failures to. Anything else in an
// Envelope.Message comes from the backend verbatim.
const (
	MsgNetworkError   = "Network error. Please try again."
	MsgSessionExpired = "Session expired"
	MsgBadEnvelope    = "Invalid response from server"
)

// Envelope is the normalized outcome of one logical request. Every backend
// response carries a {success, message?, ...payload} wrapper; the client
// treats it as authoritative and never surfaces a raw transport error.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	payload json.RawMessage
}

// ParseEnvelope validates and decodes a response body. A body that is not
// JSON or is missing the success discriminator is rejected as a failure
// rather than propagated as an undefined shape.
func ParseEnvelope(body []byte) *Envelope {
	var probe struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || probe.Success == nil {
		LogDebug("rejecting response without success discriminator: %.120s", string(body))
		return Fail(MsgBadEnvelope)
	}
	return &Envelope{
		Success: *probe.Success,
		Message: probe.Message,
		payload: json.RawMessage(body),
	}
}

// Fail builds a failure envelope with a client-generated message.
func Fail(message string) *Envelope {
	return &Envelope{Success: false, Message: message}
}

// Decode unmarshals the raw payload into v. Only meaningful on envelopes that
// came from a parsed response body.
func (e *Envelope) Decode(v interface{}) error {
	if e.payload == nil {
		return &BackendError{Message: e.Message}
	}
	return json.Unmarshal(e.payload, v)
}

// ErrorMessage returns the failure message, substituting a fallback when the
// backend did not provide one.
func (e *Envelope) ErrorMessage(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

// IsAuthExpired reports whether this outcome is the normalized
// renewal-exhausted failure.
func (e *Envelope) IsAuthExpired() bool {
	return !e.Success && e.Message == MsgSessionExpired
}

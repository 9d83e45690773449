// Package types holds the JSON envelopes shared by every API surface.
package types

// SuccessEnvelope wraps every 2xx body. Ingestion results, subscription
// snapshots, stats summaries, and health payloads all ride under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-visible error shape. Details are only populated for
// validation failures; notification rejections stay generic on purpose.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every non-2xx body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Package shared holds the response envelope every handler in the system
// writes through. Clients see one JSON shape regardless of module.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/pagination"
)

// Envelope is the wire format for every response. Exactly one of Data and
// Error is meaningfully populated.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Error   any    `json:"error"`
}

// listEnvelope extends Envelope on list endpoints. Next and Previous are
// always present, null when there is no such page.
type listEnvelope struct {
	Envelope
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// Respond writes an envelope with the given status. Success is derived from
// the status class so the 2xx ⇔ success contract cannot drift.
func Respond(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{
		Success: status >= 200 && status < 300,
		Message: message,
		Data:    data,
	})
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, message string, data any) {
	Respond(w, http.StatusOK, message, data)
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, message string, data any) {
	Respond(w, http.StatusCreated, message, data)
}

// List writes a 200 success envelope with pagination metadata.
func List(w http.ResponseWriter, message string, data any, meta pagination.Meta) {
	write(w, http.StatusOK, listEnvelope{
		Envelope: Envelope{Success: true, Message: message, Data: data},
		Count:    meta.Count,
		Next:     meta.Next,
		Previous: meta.Previous,
	})
}

// WriteError translates a domain error into a failure envelope. Internal
// errors collapse to a generic message so infrastructure details and stack
// traces never reach clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	detail := map[string]string{"code": string(code)}
	if code != dErrors.CodeInternal {
		detail["detail"] = dErrors.MessageOf(err)
	}
	write(w, dErrors.ToHTTPStatus(code), Envelope{
		Success: false,
		Message: dErrors.MessageOf(err),
		Error:   detail,
	})
}

// WriteFieldErrors reports per-field validation failures in the error slot.
func WriteFieldErrors(w http.ResponseWriter, message string, fields map[string]string) {
	write(w, http.StatusBadRequest, Envelope{
		Success: false,
		Message: message,
		Error:   fields,
	})
}

// Decode parses a JSON request body into v. Malformed bodies read as
// bad_request; unknown fields are ignored.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

func write(w http.ResponseWriter, status int, env any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// Package httpx provides JSON response utilities using the Helios
// response envelope.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the normalized response shape shared by every API endpoint.
type Envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// JSON sends an envelope with the given status code.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// OK sends a successful envelope wrapping data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created sends a successful envelope with a 201 status.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Fail sends a failed envelope with a message and optional field errors.
func Fail(w http.ResponseWriter, status int, message string, errs map[string][]string) {
	JSON(w, status, Envelope{Success: false, Message: message, Errors: errs})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

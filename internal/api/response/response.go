package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the success body shape shared by every endpoint.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorEnvelope is the failure body shape. Errors carries diagnostic
// payloads for server faults only; it stays empty for client errors.
type ErrorEnvelope struct {
	StatusCode int           `json:"statusCode"`
	Message    string        `json:"message"`
	Success    bool          `json:"success"`
	Errors     []interface{} `json:"errors"`
}

func JSON(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	}); err != nil {
		log.Printf("ERROR [response] failed to encode response: %v", err)
	}
}

func Error(w http.ResponseWriter, status int, message string, errs ...interface{}) {
	if errs == nil {
		errs = []interface{}{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorEnvelope{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     errs,
	}); err != nil {
		log.Printf("ERROR [response] failed to encode error response: %v", err)
	}
}

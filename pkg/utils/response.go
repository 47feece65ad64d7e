package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Message string      `json:"message,omitempty"`
}

// JSON writes a successful envelope around data.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Envelope{Success: true, Data: data})
}

// JSONWithMeta writes a successful envelope with a meta section.
func JSONWithMeta(w http.ResponseWriter, status int, data, meta interface{}) {
	write(w, status, Envelope{Success: true, Data: data, Meta: meta})
}

// Message writes a successful envelope carrying only a message.
func Message(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Success: true, Message: message})
}

// Error writes a failed envelope.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Success: false, Message: message})
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[Response] encode failed: %v", err)
	}
}

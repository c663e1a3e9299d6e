package httputil

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes {"message": msg}, plus "error" when err is non-nil.
func WriteError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]string{"message": msg}
	if err != nil {
		body["error"] = err.Error()
	}
	WriteJSON(w, status, body)
}

// WriteRaw relays an already-encoded JSON body unchanged.
func WriteRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

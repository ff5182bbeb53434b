package helper

import (
	"encoding/json"
	"net/http"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func Success(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Fail writes err with the status of its kind. The wrapped cause is only
// included when detail is true.
func Fail(w http.ResponseWriter, err error, detail bool) {
	body := Envelope{Message: apperrors.Message(err)}
	if detail {
		body.Error = err.Error()
	}
	WriteJSON(w, apperrors.HTTPStatus(apperrors.KindOf(err)), body)
}

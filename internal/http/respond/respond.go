// Package respond writes the API's JSON envelope.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Pattern tells clients which business rule rejected a request.
type Pattern int

const (
	TokenInvalid Pattern = 11
	TokenExpired Pattern = 12

	MailNeedConfirm Pattern = 21
	MailDuplicate   Pattern = 22

	UserInvalid Pattern = 31
	MailInvalid Pattern = 32
	PassInvalid Pattern = 33
	CodeInvalid Pattern = 34

	ScoreUnavailable     Pattern = 41
	BirthDateUnavailable Pattern = 42
)

type Envelope struct {
	OK      bool    `json:"ok"`
	Message string  `json:"message"`
	Pattern Pattern `json:"pattern,omitempty"`
	Data    any     `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

// OK writes 200 with data. A nil data field is omitted.
func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{OK: true, Message: message, Data: data})
}

func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, Envelope{Message: message})
}

// Unauthorized writes 401; a zero pattern is omitted.
func Unauthorized(w http.ResponseWriter, message string, p Pattern) {
	JSON(w, http.StatusUnauthorized, Envelope{Message: message, Pattern: p})
}

func Forbidden(w http.ResponseWriter, message string, p Pattern) {
	JSON(w, http.StatusForbidden, Envelope{Message: message, Pattern: p})
}

func NotFound(w http.ResponseWriter, message string) {
	JSON(w, http.StatusNotFound, Envelope{Message: message})
}

func TooManyRequests(w http.ResponseWriter) {
	JSON(w, http.StatusTooManyRequests, Envelope{Message: "too many requests"})
}

func Unavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Envelope{Message: message})
}

// ServerError logs err and writes a generic 500.
func ServerError(w http.ResponseWriter, r *http.Request, err error) {
	logrus.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).WithError(err).Error("request failed")
	JSON(w, http.StatusInternalServerError, Envelope{Message: "server error"})
}

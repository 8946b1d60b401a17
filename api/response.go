package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("write response body")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Error: msg})
}

// writeFailure maps a store error onto a status code. Unclassified errors
// are reported as fallback with the underlying message attached.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch contractx.KindOf(err) {
	case contractx.KindConflict:
		writeError(w, http.StatusConflict, "A contact with this email already exists")
	case contractx.KindNotFound:
		writeError(w, http.StatusNotFound, "Contact not found")
	case contractx.KindValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg(fallback)
		writeJSON(w, http.StatusInternalServerError, envelope{Error: fallback, Message: err.Error()})
	}
}

func statusForKind(kind contractx.ErrorKind) int {
	switch kind {
	case contractx.KindValidation:
		return http.StatusBadRequest
	case contractx.KindConflict:
		return http.StatusConflict
	case contractx.KindNotFound:
		return http.StatusNotFound
	case contractx.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", contractx.ErrValidation, errEmptyBody)
		}
		return fmt.Errorf("%w: invalid request body: %v", contractx.ErrValidation, err)
	}
	return nil
}

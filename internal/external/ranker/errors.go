package ranker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrFetch marks a failed read from the ranking API
	ErrFetch = errors.New("ranker fetch failed")
	// ErrWrite marks a failed mutation on the ranking API
	ErrWrite = errors.New("ranker write failed")
)

// Messages shown to users when a request fails for a reason other than
// input validation
const (
	MsgCreateFailed = "Failed to create domain"
	MsgUpdateFailed = "Failed to update domain"
	MsgDeleteFailed = "Failed to delete domain"
	MsgListFailed   = "Failed to fetch custom domains"

	MsgNameRequired    = "Domain name is required"
	MsgTickersRequired = "At least one ticker is required"
)

// StatusError is a non-2xx answer from the ranking API
type StatusError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

// ValidationError is a rejected input. Message is safe to show verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RequestError carries a user-facing message for a failed request. The
// wrapped chain holds ErrFetch or ErrWrite and the cause.
type RequestError struct {
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text to show inline for err
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// writeFailure maps a failed mutation response to a typed error. A 422 with
// a non-empty detail becomes a *ValidationError: a string detail is used
// verbatim, a structured one is rendered as compact JSON behind the
// "Invalid tickers: " prefix. Everything else gets the generic message.
func writeFailure(op, generic string, se *StatusError) error {
	if se.StatusCode == http.StatusUnprocessableEntity {
		if msg, ok := detailMessage(se.Body); ok {
			return &ValidationError{Message: msg}
		}
	}
	return &RequestError{
		Message: generic,
		Err:     fmt.Errorf("%w: %w", ErrWrite, se),
	}
}

func detailMessage(body []byte) (string, bool) {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", false
	}

	raw := bytes.TrimSpace(envelope.Detail)
	switch {
	case len(raw) == 0:
		return "", false
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	case raw[0] == '{' || raw[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", false
		}
		return "Invalid tickers: " + buf.String(), true
	case bytes.Equal(raw, []byte("true")):
		return "Invalid tickers: true", true
	default:
		// null, false and numbers carry nothing to show
		var n float64
		if json.Unmarshal(raw, &n) == nil && n != 0 {
			return "Invalid tickers: " + string(raw), true
		}
		return "", false
	}
}

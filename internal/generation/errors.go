package generation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrBaseURLRequired = errors.New("base URL is required")
	ErrEncodeRequest   = errors.New("encode request")
	ErrReadResponse    = errors.New("read response")
	ErrDecodeResponse  = errors.New("decode response")
	ErrContract        = errors.New("contract violation")
)

// maxErrorBody bounds how much of a non-JSON error body ends up in a message.
const maxErrorBody = 200

// messagePaths are probed in order to find a human-readable message in a
// JSON error body.
var messagePaths = []string{"message", "error.message", "error", "title", "details"}

// RequestError is returned for non-2xx replies from the generation service.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// RemoteGenerationFailure wraps every error produced by Generate. Message is
// meant to be shown to the user as-is.
type RemoteGenerationFailure struct {
	Message string
	Err     error
}

func (f *RemoteGenerationFailure) Error() string {
	return f.Message
}

func (f *RemoteGenerationFailure) Unwrap() error {
	return f.Err
}

func failure(err error) error {
	var f *RemoteGenerationFailure
	if errors.As(err, &f) {
		return err
	}
	return &RemoteGenerationFailure{Message: err.Error(), Err: err}
}

func mapRequestError(status int, body []byte) *RequestError {
	return &RequestError{StatusCode: status, Message: errorMessage(status, body)}
}

func errorMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if parsed.Type == gjson.String {
			if msg := strings.TrimSpace(parsed.String()); msg != "" {
				return msg
			}
		}
		for _, path := range messagePaths {
			v := parsed.Get(path)
			if v.Type != gjson.String {
				continue
			}
			if msg := strings.TrimSpace(v.String()); msg != "" {
				return msg
			}
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" || strings.HasPrefix(msg, "{") || strings.HasPrefix(msg, "[") {
		return http.StatusText(status)
	}
	if r := []rune(msg); len(r) > maxErrorBody {
		msg = string(r[:maxErrorBody]) + "…"
	}
	return msg
}

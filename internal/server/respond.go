package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abhisek/sunny/internal/auth"
	"github.com/abhisek/sunny/internal/chat"
	"github.com/abhisek/sunny/internal/llm"
	"github.com/abhisek/sunny/internal/notes"
	"github.com/abhisek/sunny/internal/quiz"
	"github.com/abhisek/sunny/internal/session"
	"github.com/abhisek/sunny/internal/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var errValidation = errors.New("invalid request")

var validate = validator.New()

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: body is required", errValidation)
		}
		return fmt.Errorf("%w: malformed JSON: %v", errValidation, err)
	}
	if err := validate.Struct(dst); err != nil {
		return formatValidation(err)
	}
	return nil
}

func formatValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", errValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldMessage(e))
	}
	return fmt.Errorf("%w: %s", errValidation, strings.Join(msgs, "; "))
}

func fieldMessage(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return field + " is invalid"
	}
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	var rateErr *llm.ErrRateLimit
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict),
		errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, quiz.ErrQuizCompleted),
		errors.Is(err, quiz.ErrNoActiveQuestion),
		errors.Is(err, session.ErrSessionCompleted):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, errValidation),
		errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, notes.ErrInvalidNote),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrMessageTooLong),
		errors.Is(err, quiz.ErrInvalidCount),
		errors.Is(err, session.ErrInvalidMinutes):
		return http.StatusBadRequest
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error. Server errors are logged and their
// detail is hidden from the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, status, "something went wrong, please try again")
		return
	}
	msg := err.Error()
	switch status {
	case http.StatusNotFound:
		msg = "not found"
	case http.StatusUnauthorized:
		msg = unwrapMessage(err)
	}
	writeError(w, status, msg)
}

// unwrapMessage returns the innermost message of a wrapped auth error.
func unwrapMessage(err error) string {
	for _, target := range []error{auth.ErrInvalidCredentials, auth.ErrInvalidToken} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errValidation, name)
	}
	return n, nil
}

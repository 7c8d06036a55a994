// Package apperr defines the error taxonomy shared by services and the HTTP
// boundary, and the single translator from errors to HTTP responses.
package apperr

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Kind int

const (
	Unknown Kind = iota
	Unauthenticated
	EmailNotVerified
	Forbidden
	NotFound
	ValidationFailed
	Conflict
	ConnectivityFailure
	NoOpTransition
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "Unauthenticated"
	case EmailNotVerified:
		return "EmailNotVerified"
	case Forbidden:
		return "Forbidden"
	case NotFound:
		return "NotFound"
	case ValidationFailed:
		return "ValidationFailed"
	case Conflict:
		return "Conflict"
	case ConnectivityFailure:
		return "ConnectivityFailure"
	case NoOpTransition:
		return "NoOpTransition"
	}
	return "Unknown"
}

// Error is a business-rule failure raised by a service. Message is safe to
// show to callers; Err is kept for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Is reports whether err translates to kind.
func Is(err error, kind Kind) bool {
	return Translate(err).Kind == kind
}

// Translation is what the HTTP boundary writes for a failed request.
type Translation struct {
	Kind    Kind
	Status  int
	Message string
	Details string
}

var kindDefaults = map[Kind]Translation{
	Unknown:             {Kind: Unknown, Status: http.StatusInternalServerError, Message: "Internal Server Error"},
	Unauthenticated:     {Kind: Unauthenticated, Status: http.StatusUnauthorized, Message: "You are not authorized!"},
	EmailNotVerified:    {Kind: EmailNotVerified, Status: http.StatusForbidden, Message: "Email verification is required. Please verify your email!"},
	Forbidden:           {Kind: Forbidden, Status: http.StatusForbidden, Message: "Forbidden! You do not have permission to access this resource."},
	NotFound:            {Kind: NotFound, Status: http.StatusNotFound, Message: "Record not found."},
	ValidationFailed:    {Kind: ValidationFailed, Status: http.StatusBadRequest, Message: "Invalid data provided or missing required fields."},
	Conflict:            {Kind: Conflict, Status: http.StatusConflict, Message: "Duplicate value violates unique constraint."},
	ConnectivityFailure: {Kind: ConnectivityFailure, Status: http.StatusServiceUnavailable, Message: "Failed to connect to the database."},
	NoOpTransition:      {Kind: NoOpTransition, Status: http.StatusBadRequest, Message: "Status is already up to date."},
}

// For returns the default translation of a kind.
func For(kind Kind) Translation {
	t, ok := kindDefaults[kind]
	if !ok {
		return kindDefaults[Unknown]
	}
	return t
}

func with(kind Kind, status int, message, details string) Translation {
	return Translation{Kind: kind, Status: status, Message: message, Details: details}
}

// Translate maps any error produced below the HTTP boundary onto the taxonomy.
func Translate(err error) Translation {
	if err == nil {
		return For(Unknown)
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		t := For(appErr.Kind)
		t.Details = appErr.Message
		return t
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		t := For(NotFound)
		t.Details = "The record searched for does not exist."
		return t
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		t := For(ValidationFailed)
		t.Details = describeValidation(verrs)
		return t
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return with(ValidationFailed, http.StatusBadRequest, For(ValidationFailed).Message, "Malformed JSON body.")
	case errors.As(err, &typeErr):
		return with(ValidationFailed, http.StatusBadRequest, "Invalid value for field type.", fmt.Sprintf("Field %q has the wrong type.", typeErr.Field))
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return with(ValidationFailed, http.StatusBadRequest, For(ValidationFailed).Message, "Request body is empty or truncated.")
	}

	if errors.Is(err, gorm.ErrInvalidData) || errors.Is(err, gorm.ErrInvalidField) ||
		errors.Is(err, gorm.ErrInvalidValue) || errors.Is(err, gorm.ErrMissingWhereClause) {
		return with(ValidationFailed, http.StatusBadRequest, "Query interpretation error.", "The request could not be turned into a valid query.")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return translatePg(pgErr)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return with(ConnectivityFailure, http.StatusGatewayTimeout, "Database request timed out.", "The operation did not finish in time.")
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connectErr), errors.Is(err, driver.ErrBadConn):
		return with(ConnectivityFailure, http.StatusServiceUnavailable, For(ConnectivityFailure).Message, "The database is unreachable.")
	case errors.As(err, &netErr) && netErr.Timeout():
		return with(ConnectivityFailure, http.StatusGatewayTimeout, "Database request timed out.", "The database did not answer in time.")
	case errors.As(err, &netErr):
		return with(ConnectivityFailure, http.StatusServiceUnavailable, For(ConnectivityFailure).Message, "The database is unreachable.")
	}

	t := For(Unknown)
	t.Details = "An unexpected error occurred."
	return t
}

var pgCodes = map[string]Translation{
	"22001": {Kind: ValidationFailed, Status: http.StatusBadRequest, Message: "The provided value is too long for a field."},
	"22P02": {Kind: ValidationFailed, Status: http.StatusBadRequest, Message: "Invalid value for field type."},
	"22007": {Kind: ValidationFailed, Status: http.StatusBadRequest, Message: "Invalid value for field type."},
	"22008": {Kind: ValidationFailed, Status: http.StatusBadRequest, Message: "Invalid value for field type."},
	"23502": {Kind: ValidationFailed, Status: http.StatusBadRequest, Message: "Null constraint violation."},
	"23503": {Kind: ValidationFailed, Status: http.StatusBadRequest, Message: "Foreign key constraint failed."},
	"23505": {Kind: Conflict, Status: http.StatusConflict, Message: "Duplicate value violates unique constraint."},
	"23514": {Kind: ValidationFailed, Status: http.StatusBadRequest, Message: "A constraint failed on the database."},
	"42P01": {Kind: Unknown, Status: http.StatusInternalServerError, Message: "Table does not exist in the database."},
	"42703": {Kind: Unknown, Status: http.StatusInternalServerError, Message: "Column does not exist in the database."},
	"57014": {Kind: ConnectivityFailure, Status: http.StatusGatewayTimeout, Message: "Database request timed out."},
	"57P01": {Kind: ConnectivityFailure, Status: http.StatusServiceUnavailable, Message: "Failed to connect to the database."},
	"57P03": {Kind: ConnectivityFailure, Status: http.StatusServiceUnavailable, Message: "Failed to connect to the database."},
}

func translatePg(pgErr *pgconn.PgError) Translation {
	t, ok := pgCodes[pgErr.Code]
	switch {
	case ok:
	case strings.HasPrefix(pgErr.Code, "08"):
		t = Translation{Kind: ConnectivityFailure, Status: http.StatusServiceUnavailable, Message: "Failed to connect to the database."}
	default:
		t = Translation{Kind: ValidationFailed, Status: http.StatusBadRequest, Message: "Database request error."}
	}
	t.Details = "SQLSTATE " + pgErr.Code
	if pgErr.ConstraintName != "" && t.Status < http.StatusInternalServerError {
		t.Details += " (" + pgErr.ConstraintName + ")"
	}
	return t
}

func describeValidation(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

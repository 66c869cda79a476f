package errx

import (
	"fmt"
	"net/http"
)

// Type classifies an error for transport-agnostic handling
type Type string

const (
	TypeValidation     Type = "VALIDATION"
	TypeNotFound       Type = "NOT_FOUND"
	TypeConflict       Type = "CONFLICT"
	TypeAuthentication Type = "AUTHENTICATION"
	TypeAuthorization  Type = "AUTHORIZATION"
	TypeBusiness       Type = "BUSINESS"
	TypeTimeout        Type = "TIMEOUT"
	TypeUnavailable    Type = "UNAVAILABLE"
	TypeInternal       Type = "INTERNAL"
)

// Code identifies a registered error within a registry
type Code struct {
	registry string
	code     string
}

func (c Code) String() string {
	return c.registry + "_" + c.code
}

// definition holds the registered metadata for a code
type definition struct {
	errType    Type
	httpStatus int
	message    string
}

// Registry scopes error codes to a domain prefix
type Registry struct {
	prefix string
	defs   map[string]definition
}

// NewRegistry creates a registry with a domain prefix (e.g. "INGESTION")
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		defs:   make(map[string]definition),
	}
}

// Register declares an error code with its type, HTTP status and default message
func (r *Registry) Register(code string, t Type, httpStatus int, message string) Code {
	r.defs[code] = definition{
		errType:    t,
		httpStatus: httpStatus,
		message:    message,
	}
	return Code{registry: r.prefix, code: code}
}

// New creates an error for a registered code
func (r *Registry) New(code Code) *Error {
	def, ok := r.defs[code.code]
	if !ok {
		def = definition{errType: TypeInternal, httpStatus: http.StatusInternalServerError, message: "Unknown error"}
	}
	return &Error{
		Code:       code.String(),
		Type:       def.errType,
		HTTPStatus: def.httpStatus,
		Message:    def.message,
	}
}

// NewWithCause creates an error for a registered code wrapping an underlying cause
func (r *Registry) NewWithCause(code Code, cause error) *Error {
	e := r.New(code)
	e.cause = cause
	return e
}

// Error is a typed, coded error with optional structured details
type Error struct {
	Code       string         `json:"code"`
	Type       Type           `json:"type"`
	HTTPStatus int            `json:"-"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is/As
func (e *Error) Unwrap() error {
	return e.cause
}

// WithMessage overrides the registered default message
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// WithDetail attaches a single key/value detail
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails attaches multiple details at once
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// ToHTTPResponse shapes the error for a JSON API response body
func (e *Error) ToHTTPResponse() map[string]any {
	resp := map[string]any{
		"code":    e.Code,
		"type":    e.Type,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		resp["details"] = e.Details
	}
	return resp
}

// Wrap creates an ad-hoc error (no registry) around a cause
func Wrap(cause error, message string, t Type) *Error {
	return &Error{
		Code:       string(t),
		Type:       t,
		HTTPStatus: statusForType(t),
		Message:    message,
		cause:      cause,
	}
}

func statusForType(t Type) int {
	switch t {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeAuthentication:
		return http.StatusUnauthorized
	case TypeAuthorization:
		return http.StatusForbidden
	case TypeBusiness:
		return http.StatusUnprocessableEntity
	case TypeTimeout:
		return http.StatusRequestTimeout
	case TypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

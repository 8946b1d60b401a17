package contract

import "errors"

var (
	ErrModelInvoke        = errors.New("model invoke failed")
	ErrSchemaViolation    = errors.New("model response violates schema")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrUnknownTool        = errors.New("unknown tool")
	ErrUpstream           = errors.New("upstream service failed")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrNotFound           = errors.New("not found")
	ErrConfiguration      = errors.New("invalid configuration")
)

// ErrorKind is the stable machine-readable name of a failure.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation_error"
	KindConflict           ErrorKind = "conflict_error"
	KindUnknownTool        ErrorKind = "unknown_tool_error"
	KindUpstream           ErrorKind = "upstream_service_error"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindNotFound           ErrorKind = "not_found_error"
	KindConfiguration      ErrorKind = "configuration_error"
	KindInternal           ErrorKind = "internal_error"
)

// KindOf classifies err. ErrServiceUnavailable is checked before ErrUpstream
// since timeouts are wrapped with both.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrUnknownTool):
		return KindUnknownTool
	case errors.Is(err, ErrServiceUnavailable):
		return KindServiceUnavailable
	case errors.Is(err, ErrUpstream), errors.Is(err, ErrModelInvoke), errors.Is(err, ErrSchemaViolation):
		return KindUpstream
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	default:
		return KindInternal
	}
}

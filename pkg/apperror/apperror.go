package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindDuplicateKey Kind = "DUPLICATE_KEY"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindAlreadyRated Kind = "ALREADY_RATED"
	KindInternal     Kind = "INTERNAL"
)

// Diagnostic codes for internal errors that operators need to tell apart.
const (
	CodeGeoIndexMissing         = "GEO_INDEX_MISSING"
	CodePhotoStorageUnavailable = "PHOTO_STORAGE_UNAVAILABLE"
)

// AppError is the error type returned across service boundaries.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError of the same kind and code, so sentinels
// like ErrInvalidCredentials work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code && e.Message == t.Message
}

var (
	ErrInvalidCredentials = Unauthorized("invalid credentials")
	ErrGeoIndexMissing    = &AppError{Kind: KindInternal, Code: CodeGeoIndexMissing, Message: "geospatial index missing"}
)

func Validation(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

// ValidationField is a shortcut for a single offending field.
func ValidationField(field, message string) *AppError {
	return Validation("invalid payload", map[string]string{field: message})
}

func DuplicateKey(field string) *AppError {
	return &AppError{
		Kind:    KindDuplicateKey,
		Message: field + " already exists",
		Fields:  map[string]string{field: "already in use"},
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func AlreadyRated() *AppError {
	return &AppError{Kind: KindAlreadyRated, Message: "you have already rated this resource"}
}

func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// GeoIndexMissing wraps the store error that revealed the missing index.
func GeoIndexMissing(err error) *AppError {
	return &AppError{Kind: KindInternal, Code: CodeGeoIndexMissing, Message: ErrGeoIndexMissing.Message, Err: err}
}

// KindOf returns the kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries kind k.
func IsKind(err error, k Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == k
}

package entities

import (
	"context"
	"errors"
)

// Structural errors: the input does not have the expected schema shape
var (
	ErrMalformedManifest          = errors.New("malformed manifest")
	ErrMissingApplicationElement  = errors.New("manifest has no application element")
	ErrMalformedShortcutsDocument = errors.New("malformed shortcuts document")
	ErrUnexpectedEndOfDocument    = errors.New("unexpected end of document")
)

// Resolution and host errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrPackageNotFound       = errors.New("package not found")
	ErrAssetOpenFailure      = errors.New("failed to open package asset")
	ErrUnsupportedPlatform   = errors.New("host cannot open compiled manifest")
	ErrSignatureVerification = errors.New("package signature verification failed")
)

// ErrorKind groups errors for per-package failure reports
type ErrorKind string

// Error kinds
const (
	ErrorKindStructural ErrorKind = "structural"
	ErrorKindResolution ErrorKind = "resolution"
	ErrorKindPackage    ErrorKind = "package"
	ErrorKindIntegrity  ErrorKind = "integrity"
	ErrorKindCanceled   ErrorKind = "canceled"
	ErrorKindUnknown    ErrorKind = "unknown"
)

// ClassifyError maps an error onto its kind
func ClassifyError(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedManifest),
		errors.Is(err, ErrMissingApplicationElement),
		errors.Is(err, ErrMalformedShortcutsDocument),
		errors.Is(err, ErrUnexpectedEndOfDocument):
		return ErrorKindStructural
	case errors.Is(err, ErrResourceNotFound):
		return ErrorKindResolution
	case errors.Is(err, ErrSignatureVerification):
		return ErrorKindIntegrity
	case errors.Is(err, ErrPackageNotFound),
		errors.Is(err, ErrAssetOpenFailure),
		errors.Is(err, ErrUnsupportedPlatform):
		return ErrorKindPackage
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindCanceled
	default:
		return ErrorKindUnknown
	}
}

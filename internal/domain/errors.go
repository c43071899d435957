package domain

import "errors"

var (
	// ErrSourceUnavailable means the PDF is missing or unreadable; the
	// provider chain proceeds to the fallback with zero vector tokens.
	ErrSourceUnavailable = errors.New("token source unavailable")

	// ErrNoTokens means neither source yielded tokens. Pages with no
	// tokens extract zero objects; this is a signal, not a failure.
	ErrNoTokens = errors.New("no tokens on page")

	// ErrMalformedRule marks a rule payload that failed schema or regex
	// validation. Malformed rules are skipped with a warning.
	ErrMalformedRule = errors.New("malformed rule payload")

	ErrObjectNotFound = errors.New("extracted object not found")
	ErrIndexNotFound  = errors.New("project index not found")
)

package wam

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Config tunes how Analyze runs.
type Config struct {
	// Verbose enables progress logging via pkg/log's CLI logger.
	Verbose bool

	// ValidateImages opts a /Figure element without Alt/ActualText into the
	// more expensive image-content heuristic instead of an automatic fail.
	ValidateImages bool

	// IgnoreSingleBitImages excludes 1-bit image XObjects from the image
	// checks entirely, treating them as decorative.
	IgnoreSingleBitImages bool

	// Rand seeds any sampling done by image heuristics; a nil Rand gets a
	// package-level default so callers don't have to care unless they want
	// reproducible output.
	Rand *rand.Rand
}

func (c Config) rand() *rand.Rand {
	if c.Rand != nil {
		return c.Rand
	}
	return defaultRand
}

var defaultRand = rand.New(rand.NewSource(1))

// category names the class of failure behind a ProcessingError.
type category int

const (
	catDecryptionFailed category = iota
	catUnsupportedAlgorithm
	catUnreadablePDF
	catInternal
)

// ProcessingError wraps a cause with the category Analyze's caller needs to
// distinguish "bad password" from "corrupt file" from "our bug".
type ProcessingError struct {
	cat category
	err error
}

func (e *ProcessingError) Error() string { return e.err.Error() }
func (e *ProcessingError) Unwrap() error { return e.err }

func newProcessingError(cat category, format string, args ...interface{}) *ProcessingError {
	return &ProcessingError{cat: cat, err: errors.Errorf(format, args...)}
}

func wrapProcessingError(cat category, err error) *ProcessingError {
	return &ProcessingError{cat: cat, err: err}
}

// Is* helpers classify a ProcessingError returned by Analyze.

// IsDecryptionFailed reports whether err is a ProcessingError caused by a
// wrong or missing password.
func IsDecryptionFailed(err error) bool { return isCategory(err, catDecryptionFailed) }

// IsUnsupportedAlgorithm reports whether err is a ProcessingError caused by
// an encryption scheme this module doesn't implement.
func IsUnsupportedAlgorithm(err error) bool { return isCategory(err, catUnsupportedAlgorithm) }

// IsUnreadablePDF reports whether err is a ProcessingError caused by a
// structurally broken or unparsable PDF.
func IsUnreadablePDF(err error) bool { return isCategory(err, catUnreadablePDF) }

// IsInternal reports whether err is a ProcessingError caused by an
// unexpected internal failure (a bug, not a bad input).
func IsInternal(err error) bool { return isCategory(err, catInternal) }

func isCategory(err error, c category) bool {
	pe, ok := err.(*ProcessingError)
	return ok && pe.cat == c
}

// Sentinel-style constructors mirroring the named errors in the design doc.

// ErrDecryptionFailed reports that f could not be decrypted with password.
func ErrDecryptionFailed() error {
	return newProcessingError(catDecryptionFailed, "pdfwam: decryption failed: wrong or missing password")
}

// ErrUnsupportedAlgorithm reports an encryption filter this module doesn't implement.
func ErrUnsupportedAlgorithm(name string) error {
	return newProcessingError(catUnsupportedAlgorithm, "pdfwam: unsupported encryption algorithm: %s", name)
}

// ErrUnreadablePDF reports that the document's byte structure could not be parsed.
func ErrUnreadablePDF(err error) error {
	return wrapProcessingError(catUnreadablePDF, errors.Wrap(err, "pdfwam: unreadable PDF"))
}

// ErrInternal reports an unexpected internal failure.
func ErrInternal(err error) error {
	return wrapProcessingError(catInternal, errors.Wrap(err, "pdfwam: internal error"))
}

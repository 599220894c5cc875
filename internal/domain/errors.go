package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the protocol packages. Callers match them with
// errors.Is; wrapping adds context but never changes the kind.
var (
	ErrEntropy              = errors.New("entropy source exhausted or predictable")
	ErrDerivation           = errors.New("key derivation produced an invalid key")
	ErrNoPrivateKey         = errors.New("key node has no private key")
	ErrMalformedLocator     = errors.New("malformed locator")
	ErrUnknownRole          = errors.New("unknown role")
	ErrInvalidAddress       = errors.New("invalid address")
	ErrNoRecipients         = errors.New("no recipients")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotARecipient        = errors.New("not a recipient")
	ErrCiphertext           = errors.New("ciphertext corrupted")
	ErrDuplicateAddress     = errors.New("address already exists")
	ErrBrokenLink           = errors.New("broken link")
	ErrEmptyChain           = errors.New("empty chain")
	ErrImportRejected       = errors.New("import rejected")
)

// DerivationError reports the child index whose scalar was invalid. The
// caller decides whether to retry with Next().
type DerivationError struct {
	Index uint32
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("%v at index %d", ErrDerivation, e.Index)
}

// Unwrap returns ErrDerivation.
func (e *DerivationError) Unwrap() error { return ErrDerivation }

// Next returns the index to retry with.
func (e *DerivationError) Next() uint32 { return e.Index + 1 }

// ImportError reports the first snapshot record that failed validation.
type ImportError struct {
	Index int
	Err   error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%v at record %d: %v", ErrImportRejected, e.Index, e.Err)
}

// Unwrap exposes both ErrImportRejected and the underlying cause.
func (e *ImportError) Unwrap() []error { return []error{ErrImportRejected, e.Err} }

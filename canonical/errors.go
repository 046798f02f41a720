package canonical

import "errors"

var (
	// ErrUnsupportedType is returned when a value cannot be represented as
	// a canonical value (e.g. channels, functions, or unknown containers
	// passed to FromAny).
	ErrUnsupportedType = errors.New("canonical: unsupported type")

	// ErrNonFiniteNumber is returned when a float is NaN or ±Infinity.
	// Non-finite numbers have no canonical decimal form.
	ErrNonFiniteNumber = errors.New("canonical: non-finite number")

	// ErrNormalization is returned when input is not valid Unicode or
	// carries invalid percent-encoding, so no NFC form exists for it.
	ErrNormalization = errors.New("canonical: normalization failed")
)

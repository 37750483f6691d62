package thermal

import "errors"

var (
	// ErrLayoutNotFound is returned when a named layout file does not exist.
	ErrLayoutNotFound = errors.New("layout not found")
	// ErrLayoutMalformed is returned for unparseable layout files or entries.
	ErrLayoutMalformed = errors.New("layout malformed")
	// ErrShapeMismatch is returned when matrix rows and sensor records disagree.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrModuleConfig is returned for an empty or non-positive module configuration.
	ErrModuleConfig = errors.New("invalid module configuration")
)

package market

import "errors"

// ErrInvalidConfiguration is returned when a session or one of its
// components is constructed with out-of-range settings.
var ErrInvalidConfiguration = errors.New("invalid configuration")

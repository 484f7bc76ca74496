package layout

import "errors"

var (
	// ErrInvalidPage is returned when the page size is not positive and finite.
	ErrInvalidPage = errors.New("page width and height must be positive finite numbers")
	// ErrInvalidPadding is returned when padding is negative or leaves no usable area.
	ErrInvalidPadding = errors.New("padding must be non-negative and leave a usable page area")
	// ErrItemTooLarge is returned by PackStrict when an item cannot fit the usable page area.
	ErrItemTooLarge = errors.New("item does not fit within the usable page area")
	// ErrUnknownPageSize is returned when a named page size is not recognised.
	ErrUnknownPageSize = errors.New("unknown page size")
)

package printjob

import "errors"

// ErrInvalidItem is returned by Validate when an item has unusable dimensions or a negative copy count.
var ErrInvalidItem = errors.New("print item must have positive finite dimensions and non-negative copies")

package pricing

import "errors"

var (
	// ErrInvalidSchedule indicates a price schedule violates validation rules.
	ErrInvalidSchedule = errors.New("invalid price schedule")
	// ErrUnknownPaperType is returned by QuoteStrict for paper types missing from the schedule.
	ErrUnknownPaperType = errors.New("unknown paper type")
	// ErrUnknownDeliverySpeed is returned by QuoteStrict for delivery speeds missing from the schedule.
	ErrUnknownDeliverySpeed = errors.New("unknown delivery speed")
)

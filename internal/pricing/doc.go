// Package pricing computes deterministic prices for photo print orders from
// an injected Schedule: an ascending area tier table, per-copy paper addons
// and a flat per-order delivery charge.
//
// The computations never fail. Invalid items, unknown options and empty
// orders degrade to zero contribution, because input comes from live form
// fields that are often transiently invalid. QuoteStrict is the validating
// variant for callers that need errors instead.
package pricing

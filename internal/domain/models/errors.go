package models

import "errors"

// Sentinel errors for the forecasting domain. Callers match with errors.Is;
// layers add context with fmt.Errorf("...: %w", ...) so the kind survives
// wrapping all the way to the HTTP boundary.
var (
	// ErrDataUnavailable means the upstream source returned no usable series.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrInsufficientHistory means the series is too short to compute the
	// full feature set (rolling windows need at least 30 steps).
	ErrInsufficientHistory = errors.New("insufficient history for features")

	// ErrInsufficientData means too few valid training rows remained after
	// feature and target alignment.
	ErrInsufficientData = errors.New("insufficient data for training")

	// ErrModelUnavailable means a model could neither be loaded nor trained.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInvalidParameter covers bad metal, purity, unit or horizon values.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnknownLocation covers states and cities absent from the spread table.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrUpstreamUnreachable marks transport-level failures talking to a
	// market data source; ErrMalformedResponse marks a reachable source
	// answering with an unparseable or empty payload. The exchange-rate
	// path treats both as grounds for the fallback rate but logs them
	// apart so outages and API drift stay distinguishable.
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
	ErrMalformedResponse   = errors.New("malformed upstream response")
)

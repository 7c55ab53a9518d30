package domain

import "errors"

var (
	ErrInsufficientHistory     = errors.New("insufficient history")
	ErrInsufficientData        = errors.New("insufficient data")
	ErrDegenerateSeries        = errors.New("degenerate series")
	ErrUpstreamDataUnavailable = errors.New("cleaned dataset unavailable")
)

package srs

import "errors"

// Sentinel errors for the srs package.
// Use errors.Is to check: errors.Is(err, srs.ErrInvalidResponse)
var (
	ErrInvalidResponse = errors.New("srs: invalid response")
	ErrInvalidConfig   = errors.New("srs: config value out of range")
)

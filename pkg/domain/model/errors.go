package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrUnsupportedEvent is returned when the workflow was not triggered by a pull request
	ErrUnsupportedEvent = goerr.New("unsupported trigger event")

	// ErrInvalidConfig is returned when a configuration value cannot be used
	ErrInvalidConfig = goerr.New("invalid configuration")
)

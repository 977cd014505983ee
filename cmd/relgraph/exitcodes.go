package main

import (
	"errors"

	"github.com/matsen/relgraph/internal/config"
	"github.com/matsen/relgraph/internal/document"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (invalid config, unreadable paths table)
	ExitDataError   = 3 // Data error (input is not valid JSON)
)

// exitCode maps a command error onto an exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, document.ErrParse):
		return ExitDataError
	case errors.Is(err, config.ErrInvalid):
		return ExitConfigError
	default:
		return ExitError
	}
}

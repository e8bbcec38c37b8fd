package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Everything resolved and matched
	ExitMatchFailed = 1 // One or more modules would not be type-checked
	ExitError       = 2 // Configuration or runtime error
)

// MatchFailureError indicates that configuration resolved cleanly, but one
// or more modules queried with `bearcheck match` would be skipped.
type MatchFailureError struct {
	Message string
}

func (e *MatchFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var matchErr *MatchFailureError
		if errors.As(err, &matchErr) {
			os.Exit(ExitMatchFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}

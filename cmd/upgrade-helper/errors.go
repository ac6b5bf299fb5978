package main

import "errors"

// Sentinel errors for command operations
var (
	ErrFindingsReported = errors.New("upgrade issues were found")
)

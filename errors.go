package upgradehelper

import "errors"

// Common errors used throughout the upgrade helper
var (
	// ErrConfigValidation is returned when configuration validation fails.
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrUnknownRule indicates a rule ID that is not registered.
	ErrUnknownRule = errors.New("unknown rule")
	// ErrUnknownExpressionKind indicates an expression kind other than calculate, constraint, readonly, relevant or required.
	ErrUnknownExpressionKind = errors.New("unknown expression kind")
	// ErrUnknownFormat indicates an unsupported report output format.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrParseForm is returned when a form file is not well-formed XML.
	ErrParseForm = errors.New("failed to parse form")
	// ErrNoForms indicates that no form files were found to analyze.
	ErrNoForms = errors.New("no forms found")
	// ErrFormNotFound indicates an explicitly requested form file does not exist.
	ErrFormNotFound = errors.New("form file does not exist")
)

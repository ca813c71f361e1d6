// Package services holds the business logic of the summarizer. This file
// centralizes service-level error values so that handlers can map them to
// HTTP results consistently.
package services

import "errors"

var (
	// ErrMissingFields is returned when a required input (text, filename,
	// summary id, updated text, email) is blank.
	ErrMissingFields = errors.New("required fields are missing")

	// ErrSummaryNotFound indicates that no summary has the given id.
	ErrSummaryNotFound = errors.New("summary not found")

	// ErrInvalidEmail is returned when the share recipient is not a single
	// well-formed address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrShareFailed wraps a delivery failure from the notification sender.
	ErrShareFailed = errors.New("failed to share summary")
)

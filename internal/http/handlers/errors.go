// Package handlers defines the HTTP error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them, while
// the message stays human-readable. Generic codes mirror HTTP status
// semantics; the *_failed codes name the operation that hit a storage or
// delivery failure.
//
// Example response:
//
//	{
//	  "success": false,
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_found",
//	  "message": "Summary not found"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeInvalidEmail     = "invalid_email"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeTooLarge         = "payload_too_large"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeUploadFailed = "upload_failed"
	ErrCodeListFailed   = "list_failed"
	ErrCodeFetchFailed  = "fetch_failed"
	ErrCodeUpdateFailed = "update_failed"
	ErrCodeDeleteFailed = "delete_failed"
	ErrCodeShareFailed  = "share_failed"
)

package domain

import "errors"

var (
	ErrSubmissionExists   = errors.New("SUBMISSION_EXISTS: submission id already exists")
	ErrSubmissionNotFound = errors.New("NOT_FOUND: submission not found")
	ErrReviewerNotFound   = errors.New("NOT_FOUND: reviewer not found")

	ErrCapacityExceeded = errors.New("CAPACITY_EXCEEDED: reviewer is at maximum assignment load")
	ErrAlreadyAssigned  = errors.New("ALREADY_ASSIGNED: submission is already assigned to this reviewer")

	ErrValidation       = errors.New("VALIDATION: invalid or missing field")
	ErrStoreUnavailable = errors.New("STORE_UNAVAILABLE: data layer failure")
)

package assets

import "errors"

var (
	// ErrImageNotFound means there is no record for the id, or its original
	// file is gone.
	ErrImageNotFound = errors.New("image not found")
	// ErrOperationFailed wraps any failure that left the original untouched.
	ErrOperationFailed = errors.New("operation failed")
	// ErrPristineMissing means the image cannot be reverted.
	ErrPristineMissing = errors.New("pristine backup missing")
	// ErrPristineExists guards the write-once pristine tier.
	ErrPristineExists = errors.New("pristine backup already exists")
)

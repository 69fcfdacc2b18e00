package signing

import "errors"

// Provider client errors.
var (
	ErrUpload           = errors.New("document upload failed")
	ErrStatusCheck      = errors.New("document status check failed")
	ErrNotReady         = errors.New("document not ready")
	ErrUnexpectedStatus = errors.New("unexpected document status")
	ErrFieldCreation    = errors.New("field creation failed")
	ErrSend             = errors.New("document send failed")
)

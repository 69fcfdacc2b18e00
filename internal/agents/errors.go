package agents

import "errors"

// Agent step failures, each wrapping the underlying model or parse error.
var (
	ErrExtractionFailed = errors.New("recipient extraction failed")
	ErrLayoutFailed     = errors.New("layout analysis failed")
	ErrDraftFailed      = errors.New("email draft failed")
)

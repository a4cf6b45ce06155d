package vision

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse indicates the provider returned no usable content for the
// image.
var ErrEmptyResponse = errors.New("provider returned empty response")

// ContentRefusedError indicates the provider declined to process the image on
// safety grounds. Reason carries the provider's refusal text.
type ContentRefusedError struct {
	Reason string
}

func (e *ContentRefusedError) Error() string {
	return fmt.Sprintf("provider refused to process image: %s", e.Reason)
}

// MalformedResponseError indicates the provider returned text that is not the
// expected JSON envelope.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed provider response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

package recipe

import "errors"

// ErrUnknownProfile is returned when a request names a profile that does not exist.
var ErrUnknownProfile = errors.New("unknown recipe profile")

// NormalizationError reports model output that could not be parsed as JSON
// after fence stripping. Raw holds the text that was handed to the parser.
type NormalizationError struct {
	Message string
	Raw     string
	Err     error
}

func (e *NormalizationError) Error() string {
	return e.Message
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

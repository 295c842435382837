package generation

import (
	"errors"
	"fmt"
)

// Kind classifies a failed generation
type Kind int

const (
	KindUnknown Kind = iota
	// KindServiceUnavailable means no model credential is configured
	KindServiceUnavailable
	// KindBadRequest means the input was malformed or empty
	KindBadRequest
	// KindInvalidInput means the model flagged the material as an injection attempt
	KindInvalidInput
	// KindGenerationFailed means the model call itself failed
	KindGenerationFailed
	// KindUnprocessableContent means the model answered without usable cards
	KindUnprocessableContent
)

func (k Kind) String() string {
	switch k {
	case KindServiceUnavailable:
		return "ServiceUnavailable"
	case KindBadRequest:
		return "BadRequest"
	case KindInvalidInput:
		return "InvalidInput"
	case KindGenerationFailed:
		return "GenerationFailed"
	case KindUnprocessableContent:
		return "UnprocessableContent"
	default:
		return "Unknown"
	}
}

// Error is a classified generation failure with a user-facing message
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of a generation error, or KindUnknown
func KindOf(err error) Kind {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return KindUnknown
}

// Messages reported for each outcome
const (
	MsgReadFailed      = "Invalid request or file read failed"
	MsgNoInput         = "No text or image provided"
	MsgInvalidInput    = "Invalid input detected in the learning material."
	MsgNoCards         = "No flashcards could be generated from the content"
	MsgGenerationError = "AI generation failed. Check your API key and try again."
)

// NewBadRequest wraps an input read failure
func NewBadRequest(err error) *Error {
	return &Error{Kind: KindBadRequest, Message: MsgReadFailed, Err: err}
}

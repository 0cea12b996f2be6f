package messages

import "errors"

// ValidationError carries the single user-facing message for a rejected
// submission.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation failures. Validate checks them in declaration order;
// ErrInvalidRequestBody is reported for bodies that are not valid JSON.
var (
	ErrEmptyRequest       = &ValidationError{"request body is empty"}
	ErrNameRequired       = &ValidationError{"name is required"}
	ErrEmailRequired      = &ValidationError{"email is required"}
	ErrEmailInvalid       = &ValidationError{"email is invalid"}
	ErrPhoneRequired      = &ValidationError{"phone is required"}
	ErrPhoneInvalid       = &ValidationError{"phone must be in the format +7XXXXXXXXXX"}
	ErrTopicRequired      = &ValidationError{"select a topic"}
	ErrTextRequired       = &ValidationError{"message text is required"}
	ErrTokenRequired      = &ValidationError{"confirm that you are not a robot"}
	ErrNameTooLong        = &ValidationError{"name is too long"}
	ErrEmailTooLong       = &ValidationError{"email is too long"}
	ErrTextTooLong        = &ValidationError{"message text is too long"}
	ErrControlCharacter   = &ValidationError{"fields must not contain control characters"}
	ErrInvalidRequestBody = &ValidationError{"invalid request body"}
)

var (
	// ErrCaptchaFailed is returned when the challenge token could not be verified.
	ErrCaptchaFailed = errors.New("could not confirm you are not a robot")

	// ErrTopicNotFound is returned when the submitted topic does not exist.
	ErrTopicNotFound = errors.New("selected topic not found")

	// ErrMessageNotFound is returned when a message id does not exist.
	ErrMessageNotFound = errors.New("message not found")

	// ErrTopicInUse is returned when deleting a topic that messages still reference.
	ErrTopicInUse = errors.New("topic is referenced by messages")
)

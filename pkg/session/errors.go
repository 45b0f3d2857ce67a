package session

import "errors"

// Session errors.
var (
	// ErrMalformed is returned when a transport string is not valid base64
	// or its payload is not valid JSON.
	ErrMalformed = errors.New("session: malformed payload")

	// ErrUnserializable is returned when a session value cannot be encoded as JSON.
	ErrUnserializable = errors.New("session: value is not serializable")
)

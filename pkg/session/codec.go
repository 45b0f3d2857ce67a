package session

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // change detection digest, not a security control
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Encode serializes a session value into its cookie transport form:
// standard base64 of the JSON representation.
// A nil session encodes to the empty string.
func Encode(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode reverses Encode.
// An empty input yields the zero session, an empty map.
// Returns ErrMalformed if the input is not valid base64 or the payload is not JSON.
func Decode(s string) (any, error) {
	if s == "" {
		return map[string]any{}, nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return v, nil
}

// Fingerprint returns a hex SHA-1 digest of the session's JSON form.
// Values with identical serializations share a fingerprint; map keys are
// serialized in sorted order, so key insertion order does not matter.
func Fingerprint(v any) (string, error) {
	data, err := marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:]), nil
}

// marshal encodes v without HTML escaping and without the trailing newline
// json.Encoder appends.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnserializable, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

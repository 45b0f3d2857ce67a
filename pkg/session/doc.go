// Package session encodes session values for cookie transport.
//
// A session is any JSON-serializable value. It travels inside a single
// cookie as base64-encoded JSON, so the server keeps no session store.
// [Fingerprint] gives a stable digest of a value's serialized form, which
// lets callers tell whether a session changed during a request without
// keeping a deep copy of the original:
//
//	v, err := session.Decode(raw)
//	if err != nil {
//		return err // session.ErrMalformed
//	}
//	before, _ := session.Fingerprint(v)
//
//	// ... mutate v ...
//
//	after, _ := session.Fingerprint(v)
//	if after != before {
//		encoded, _ := session.Encode(v)
//		// write encoded back to the cookie
//	}
//
// An empty transport string decodes to an empty map and a nil value
// encodes to the empty string.
package session

// Package cookie provides the cookie transport: plain, signed, and
// encrypted cookies sharing one set of attributes.
//
// # Basic Usage
//
//	m := cookie.New(cookie.WithPath("/"), cookie.WithSecure(true))
//	m.Set(w, "theme", "dark", 24*time.Hour)
//	value, err := m.Get(r, "theme")
//
// # Key Ring
//
// Signing (HMAC-SHA256) and encryption (AES-256-GCM) draw on a key ring.
// New values are always produced with the first key; reads accept any key,
// so a new key can be prepended while old cookies stay valid:
//
//	m := cookie.New(cookie.WithKeys("new-key", "previous-key"))
//	err := m.SetSigned(w, "APPSERVER", payload, 10*24*time.Hour)
//	value, err := m.GetSigned(r, "APPSERVER")
//
// A signed cookie keeps its value readable as is. The signature of
// "name=value" goes into a second cookie named name+[SigSuffix], so
// "APPSERVER" travels with "APPSERVER.sig".
//
// # Errors
//
//   - [ErrNotFound]: cookie does not exist
//   - [ErrNoKeys]: signed or encrypted operation without a key ring
//   - [ErrBadSig]: the signature is missing or no key verified it
//   - [ErrDecrypt]: no key opened the ciphertext
package cookie

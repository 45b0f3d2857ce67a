package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// Errors.
var (
	ErrNotFound = errors.New("cookie: not found")
	ErrNoKeys   = errors.New("cookie: signing keys required")
	ErrBadSig   = errors.New("cookie: invalid signature")
	ErrDecrypt  = errors.New("cookie: decryption failed")
)

// Manager reads and writes cookies with a fixed set of attributes.
// Signing and encryption use a key ring: the first key produces new values,
// every key is accepted when reading, so keys can be rotated without
// invalidating cookies already issued.
type Manager struct {
	keys     [][]byte
	domain   string
	path     string
	sameSite http.SameSite
	secure   bool
	httpOnly bool
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a cookie Manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithKeys sets the key ring used for signing and encryption.
// Empty keys are skipped. The first key signs; all keys verify.
func WithKeys(keys ...string) Option {
	return func(m *Manager) {
		m.keys = m.keys[:0]
		for _, k := range keys {
			if k != "" {
				m.keys = append(m.keys, []byte(k))
			}
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) {
		m.httpOnly = httpOnly
	}
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) {
		m.sameSite = ss
	}
}

// ParseSameSite converts "lax", "strict", "none" (case-insensitive) to an
// http.SameSite value. Anything else maps to http.SameSiteDefaultMode.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict", "true":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}

// HasKeys reports whether a key ring is configured.
func (m *Manager) HasKeys() bool {
	return len(m.keys) > 0
}

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set sets a plain cookie. A zero maxAge makes it a session cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

// Delete expires a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	c := m.cookie(name, "", 0)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

// SigSuffix names the companion cookie holding a signed cookie's signature.
const SigSuffix = ".sig"

// GetSigned returns the value of a signed cookie. The value cookie is stored
// unchanged; its signature lives in the companion name+SigSuffix cookie and
// covers "name=value".
// Returns ErrNoKeys if no key ring is configured and ErrBadSig if the
// signature is missing or no key in the ring verifies it.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if !m.HasKeys() {
		return "", ErrNoKeys
	}

	value, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	encSig, err := m.Get(r, name+SigSuffix)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return "", ErrBadSig
	}

	payload := signedPayload(name, value)
	for _, key := range m.keys {
		if hmac.Equal(sig, sign(key, payload)) {
			return value, nil
		}
	}
	return "", ErrBadSig
}

// SetSigned sets the value cookie as is and its signature, made with the
// first key of the ring, in the companion cookie.
// Returns ErrNoKeys if no key ring is configured.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge time.Duration) error {
	if !m.HasKeys() {
		return ErrNoKeys
	}

	sig := base64.RawURLEncoding.EncodeToString(sign(m.keys[0], signedPayload(name, value)))
	http.SetCookie(w, m.cookie(name, value, maxAge))
	http.SetCookie(w, m.cookie(name+SigSuffix, sig, maxAge))
	return nil
}

// DeleteSigned expires a signed cookie and its signature.
func (m *Manager) DeleteSigned(w http.ResponseWriter, name string) {
	m.Delete(w, name)
	m.Delete(w, name+SigSuffix)
}

// GetEncrypted returns the plaintext of an encrypted cookie.
// Returns ErrNoKeys if no key ring is configured and ErrDecrypt if no key
// in the ring opens the value.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	if !m.HasKeys() {
		return "", ErrNoKeys
	}

	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrDecrypt
	}

	for _, key := range m.keys {
		if plaintext, err := decrypt(key, data); err == nil {
			return string(plaintext), nil
		}
	}
	return "", ErrDecrypt
}

// SetEncrypted sets a cookie encrypted with the first key of the ring.
// Returns ErrNoKeys if no key ring is configured.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, maxAge time.Duration) error {
	if !m.HasKeys() {
		return ErrNoKeys
	}

	ciphertext, err := encrypt(m.keys[0], []byte(value))
	if err != nil {
		return err
	}

	http.SetCookie(w, m.cookie(name, base64.RawURLEncoding.EncodeToString(ciphertext), maxAge))
	return nil
}

// cookie creates a cookie with the manager's attributes.
func (m *Manager) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
	if maxAge > 0 {
		c.MaxAge = int(maxAge.Seconds())
		c.Expires = time.Now().Add(maxAge).UTC()
	}
	return c
}

func signedPayload(name, value string) []byte {
	return []byte(name + "=" + value)
}

func sign(key, value []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(value)
	return mac.Sum(nil)
}

// encrypt uses AES-256-GCM with a key derived from the ring entry.
func encrypt(secret, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(secret)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(secret, ciphertext []byte) ([]byte, error) {
	aead, err := newAEAD(secret)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < aead.NonceSize() {
		return nil, ErrDecrypt
	}

	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	return aead.Open(nil, nonce, sealed, nil)
}

func newAEAD(secret []byte) (cipher.AEAD, error) {
	key := sha256.Sum256(secret)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

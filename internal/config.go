package internal

import (
	"time"

	"github.com/dmitrymomot/anvil/pkg/cookie"
)

// Defaults for the session cookie.
const (
	DefaultSessionCookieName   = "APPSERVER"
	DefaultSessionCookieMaxAge = 10 * 24 * time.Hour
	DefaultBodyLimit           = 1 << 20 // 1MB
)

// CookieConfig configures the cookie transport.
// Keys are tried in order when verifying; the first one signs.
type CookieConfig struct {
	Keys   []string `env:"COOKIE_KEYS" envSeparator:","`
	Secure bool     `env:"COOKIE_SECURE" envDefault:"false"`
}

// SessionCookieConfig describes the cookie the session is stored in.
type SessionCookieConfig struct {
	Name     string        `env:"SESSION_COOKIE_NAME" envDefault:"APPSERVER"`
	Path     string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	Domain   string        `env:"SESSION_COOKIE_DOMAIN"`
	SameSite string        `env:"SESSION_COOKIE_SAME_SITE" envDefault:"lax"`
	MaxAge   time.Duration `env:"SESSION_COOKIE_MAX_AGE" envDefault:"240h"`
	Secure   bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	HTTPOnly bool          `env:"SESSION_COOKIE_HTTP_ONLY" envDefault:"true"`
	Signed   bool          `env:"SESSION_COOKIE_SIGNED" envDefault:"true"`

	// Encrypted seals the session with AES-GCM instead of signing it.
	// The cookie then no longer carries readable base64 JSON.
	Encrypted bool `env:"SESSION_COOKIE_ENCRYPTED" envDefault:"false"`
}

// DefaultSessionCookieConfig returns the configuration used when none is set.
func DefaultSessionCookieConfig() SessionCookieConfig {
	return SessionCookieConfig{
		Name:     DefaultSessionCookieName,
		Path:     "/",
		SameSite: "lax",
		MaxAge:   DefaultSessionCookieMaxAge,
		HTTPOnly: true,
		Signed:   true,
	}
}

// cookieManager builds the manager that reads and writes the session cookie.
func (sc SessionCookieConfig) cookieManager(cc CookieConfig) *cookie.Manager {
	return cookie.New(
		cookie.WithKeys(cc.Keys...),
		cookie.WithSecure(cc.Secure || sc.Secure),
		cookie.WithHTTPOnly(sc.HTTPOnly),
		cookie.WithPath(sc.Path),
		cookie.WithDomain(sc.Domain),
		cookie.WithSameSite(cookie.ParseSameSite(sc.SameSite)),
	)
}

// sessionMode is how the session cookie is protected on the wire.
type sessionMode int

const (
	sessionPlain sessionMode = iota
	sessionSigned
	sessionEncrypted
)

func (m sessionMode) String() string {
	switch m {
	case sessionSigned:
		return "signed"
	case sessionEncrypted:
		return "encrypted"
	default:
		return "plain"
	}
}

// mode picks the protection requested by the config. Signing and
// encryption both need keys; without them the cookie is plain.
func (sc SessionCookieConfig) mode(hasKeys bool) sessionMode {
	switch {
	case !hasKeys:
		return sessionPlain
	case sc.Encrypted:
		return sessionEncrypted
	case sc.Signed:
		return sessionSigned
	default:
		return sessionPlain
	}
}

// wantsKeys reports whether the config asks for a protected cookie.
func (sc SessionCookieConfig) wantsKeys() bool {
	return sc.Signed || sc.Encrypted
}

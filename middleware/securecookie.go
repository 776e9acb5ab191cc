// Package middleware provides the cross-cutting HTTP layers: AEAD-sealed
// cookies, cookie-backed sessions, request logging and security headers.
package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrCookieFormat  = errors.New("invalid session cookie format")
	ErrCookieInvalid = errors.New("invalid session cookie")
	ErrCookieConfig  = errors.New("invalid secure cookie configuration")
)

// maxCookieLen bounds the amount of attacker-controlled data decoded from a
// cookie value. Browsers cap cookies around 4KB; the limit here is our own.
const maxCookieLen = 8192

// KeySize is the required length of a secure-cookie key.
const KeySize = chacha20poly1305.KeySize

// SecureCookie seals values into a cookie with XChaCha20-Poly1305 over CBOR.
//
// Value format: [keyID] "." [base64url(nonce || sealed)]. keys holds every
// accepted key for rotation; keyID selects the one used to seal. The AAD
// binds the cookie name, domain, path and secure flag, so a value cannot be
// replayed under different cookie attributes.
type SecureCookie struct {
	name     string
	path     string
	domain   string
	secure   bool
	sameSite http.SameSite

	keyID string
	keys  map[string][]byte
}

// SecureCookieOption configures a SecureCookie.
type SecureCookieOption func(*SecureCookie)

// WithPath sets the cookie path. Defaults to "/".
func WithPath(path string) SecureCookieOption {
	return func(sc *SecureCookie) { sc.path = path }
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) SecureCookieOption {
	return func(sc *SecureCookie) { sc.domain = domain }
}

// WithSecure sets the Secure flag. Defaults to true; disable for plain-HTTP
// local runs only.
func WithSecure(secure bool) SecureCookieOption {
	return func(sc *SecureCookie) { sc.secure = secure }
}

// WithSameSite sets the SameSite attribute. Defaults to Lax.
func WithSameSite(sameSite http.SameSite) SecureCookieOption {
	return func(sc *SecureCookie) { sc.sameSite = sameSite }
}

// NewSecureCookie creates a SecureCookie. Every key in keys must be KeySize
// bytes, and keyID must be present in keys.
func NewSecureCookie(name, keyID string, keys map[string][]byte, opts ...SecureCookieOption) (*SecureCookie, error) {
	if name == "" {
		return nil, errors.New("cookie name must not be empty")
	}
	if _, ok := keys[keyID]; !ok {
		return nil, errors.New("keyID not found in keys")
	}
	for id, k := range keys {
		if len(k) != KeySize {
			return nil, fmt.Errorf("invalid key %s: need %d bytes, got %d", id, KeySize, len(k))
		}
	}

	sc := &SecureCookie{
		name:     name,
		path:     "/",
		secure:   true,
		sameSite: http.SameSiteLaxMode,
		keyID:    keyID,
		keys:     keys,
	}
	for _, opt := range opts {
		opt(sc)
	}
	if sc.path == "" {
		sc.path = "/"
	}
	return sc, nil
}

// Name returns the cookie name.
func (sc *SecureCookie) Name() string {
	if sc == nil {
		return ""
	}
	return sc.name
}

func (sc *SecureCookie) aad() []byte {
	secureStr := "f"
	if sc.secure {
		secureStr = "t"
	}
	return []byte(sc.name + ":" + sc.domain + ":" + sc.path + ":" + secureStr)
}

// Encode marshals and seals plain into an http.Cookie valid for maxAge
// seconds.
func (sc *SecureCookie) Encode(plain any, maxAge int) (*http.Cookie, error) {
	if sc == nil {
		return nil, ErrCookieConfig
	}
	if maxAge <= 0 {
		return nil, ErrCookieInvalid
	}

	plainBytes, err := cbor.Marshal(plain)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(sc.keys[sc.keyID])
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	sealed := aead.Seal(nonce, nonce, plainBytes, sc.aad())

	return &http.Cookie{
		Name:     sc.name,
		Value:    sc.keyID + "." + base64.RawURLEncoding.EncodeToString(sealed),
		Path:     sc.path,
		Domain:   sc.domain,
		MaxAge:   maxAge,
		Secure:   sc.secure,
		HttpOnly: true,
		SameSite: sc.sameSite,
		Expires:  time.Now().Add(time.Duration(maxAge) * time.Second),
	}, nil
}

// Decode opens the cookie value and unmarshals it into v.
func (sc *SecureCookie) Decode(cookie *http.Cookie, v any) error {
	if sc == nil {
		return ErrCookieConfig
	}
	if cookie == nil {
		return ErrCookieFormat
	}
	value := cookie.Value
	if len(value) == 0 || len(value) > maxCookieLen {
		return ErrCookieFormat
	}

	keyID, encB64, ok := strings.Cut(value, ".")
	if !ok || keyID == "" || encB64 == "" {
		return ErrCookieFormat
	}
	key, ok := sc.keys[keyID]
	if !ok {
		return ErrCookieInvalid
	}

	sealed, err := base64.RawURLEncoding.DecodeString(encB64)
	if err != nil {
		return ErrCookieFormat
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return ErrCookieFormat
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plainBytes, err := aead.Open(nil, nonce, ciphertext, sc.aad())
	if err != nil {
		return ErrCookieInvalid
	}
	return cbor.Unmarshal(plainBytes, v)
}

// Clear returns a cookie that removes this cookie from the client.
func (sc *SecureCookie) Clear() *http.Cookie {
	if sc == nil {
		return nil
	}
	return &http.Cookie{
		Name:     sc.name,
		Domain:   sc.domain,
		Path:     sc.path,
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: sc.sameSite,
		Value:    "",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	}
}

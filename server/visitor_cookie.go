package server

import (
	"crypto/sha256"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	visitorCookieName = "portal_visitor"
	visitorIssuer     = "learning-portal"
	visitorKeyInfo    = "learning-portal visitor cookie v1"
)

// VisitorCookies issues and verifies the signed cookie that identifies a
// browser context. The cookie carries only the visitor id.
type VisitorCookies struct {
	key    []byte
	maxAge time.Duration
}

// NewVisitorCookies derives the HMAC key from secret.
func NewVisitorCookies(secret string, maxAge time.Duration) (*VisitorCookies, error) {
	if secret == "" {
		return nil, errors.New("[NewVisitorCookies] cookie secret is required")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(visitorKeyInfo)), key); err != nil {
		return nil, errors.Wrap(err, "[NewVisitorCookies] derive key")
	}
	return &VisitorCookies{key: key, maxAge: maxAge}, nil
}

func (c *VisitorCookies) Sign(visitorID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    visitorIssuer,
		Subject:   visitorID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", errors.Wrap(err, "[VisitorCookies Sign]")
	}
	return signed, nil
}

// Parse verifies raw and returns the visitor id it carries.
func (c *VisitorCookies) Parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, c.verificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(visitorIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", errors.Wrap(err, "[VisitorCookies Parse]")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", errors.Wrap(err, "[VisitorCookies Parse] subject")
	}
	return claims.Subject, nil
}

func (c *VisitorCookies) verificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return c.key, nil
}

// Read returns the visitor id of a valid cookie on r.
func (c *VisitorCookies) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(visitorCookieName)
	if err != nil {
		return "", false
	}
	id, err := c.Parse(cookie.Value)
	if err != nil {
		return "", false
	}
	return id, true
}

func (c *VisitorCookies) Write(w http.ResponseWriter, r *http.Request, visitorID string) error {
	signed, err := c.Sign(visitorID, time.Now())
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.maxAge / time.Second),
	})
	return nil
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}

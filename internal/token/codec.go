// Package token signs and verifies the three token kinds the service
// issues: access, refresh and reset. Tokens are RS256 JWTs carrying only
// the user id and an explicit kind claim, so a token of one kind can
// never be replayed as another.
package token

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind discriminates what a signed token may be used for. The kind is
// embedded as a claim at encode time and asserted again at decode time.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
	KindReset   Kind = "reset"
)

var (
	// ErrExpired means the token's exp claim is in the past.
	ErrExpired = errors.New("token has expired")
	// ErrMalformed means the token could not be parsed or its signature
	// does not verify against the service public key.
	ErrMalformed = errors.New("token is malformed")
	// ErrWrongKind means the token is valid but its kind claim does not
	// match what the caller expected.
	ErrWrongKind = errors.New("unexpected token kind")
)

// Claims is the decoded, verified payload of a token.
type Claims struct {
	UserID    string
	Kind      Kind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec holds the RSA key pair used for signing and verification.
// Decoding requires only the public key, so read-only consumers may
// construct a Codec with a nil private key.
type Codec struct {
	priv *rsa.PrivateKey
	pub  *rsa.PublicKey
}

// NewCodec parses PEM-encoded RSA keys and returns a ready codec.
func NewCodec(privatePEM, publicPEM []byte) (*Codec, error) {
	pub, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, err
	}
	c := &Codec{pub: pub}
	if len(privatePEM) > 0 {
		priv, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
		if err != nil {
			return nil, err
		}
		c.priv = priv
	}
	return c, nil
}

// Encode signs a token of the given kind for the user. exp is set to
// now+ttl and iat to now, and a random jti is added so two tokens for
// the same user are never byte-equal even when issued within the same
// second (RS256 signatures are deterministic).
func (c *Codec) Encode(userID string, kind Kind, ttl time.Duration) (string, error) {
	if c.priv == nil {
		return "", errors.New("codec has no private key")
	}
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id": userID,
		"kind":    string(kind),
		"jti":     uuid.New().String(),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return t.SignedString(c.priv)
}

// Decode verifies the signature and expiry of a raw token and asserts
// that its kind claim matches expected. Expiry is checked before the
// kind so an expired token always reports ErrExpired regardless of what
// the caller expected.
func (c *Codec) Decode(raw string, expected Kind) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrMalformed
		}
		return c.pub, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrMalformed
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return Claims{}, ErrMalformed
	}

	userID, _ := mc["user_id"].(string)
	if userID == "" {
		return Claims{}, ErrMalformed
	}
	kind, _ := mc["kind"].(string)
	if Kind(kind) != expected {
		return Claims{}, ErrWrongKind
	}

	out := Claims{UserID: userID, Kind: Kind(kind)}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	return out, nil
}

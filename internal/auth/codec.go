package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
)

// KindConfig holds the signing secret and lifetime of one token kind.
type KindConfig struct {
	Secret []byte
	TTL    time.Duration
}

// Claims is the payload of both token kinds.
type Claims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Codec signs and verifies access and refresh tokens. It holds no mutable
// state and is safe for concurrent use.
type Codec struct {
	access  KindConfig
	refresh KindConfig
	now     func() time.Time
}

func NewCodec(access, refresh KindConfig) *Codec {
	return &Codec{access: access, refresh: refresh, now: time.Now}
}

func (c *Codec) kindConfig(kind TokenKind) (KindConfig, error) {
	switch kind {
	case KindAccess:
		return c.access, nil
	case KindRefresh:
		return c.refresh, nil
	default:
		return KindConfig{}, fmt.Errorf("unknown token kind %q", kind)
	}
}

// Issue signs a token of kind for subjectID.
func (c *Codec) Issue(kind TokenKind, subjectID string) (Token, error) {
	kc, err := c.kindConfig(kind)
	if err != nil {
		return Token{}, err
	}

	now := c.now()
	exp := now.Add(kc.TTL)
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(kc.Secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Verify checks signature, expiry and kind and returns the claims.
// Failures are ErrTokenExpired or ErrTokenMalformed.
func (c *Codec) Verify(kind TokenKind, value string) (*Claims, error) {
	kc, err := c.kindConfig(kind)
	if err != nil {
		return nil, err
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(value, &claims, func(t *jwt.Token) (any, error) {
		return kc.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if !tkn.Valid || claims.Kind != kind || claims.Subject == "" {
		return nil, ErrTokenMalformed
	}
	return &claims, nil
}

package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/coworking/internal/domain"
)

// TokenLifetime is the fixed validity window of every issued token.
const TokenLifetime = 3 * 24 * time.Hour

// labelHeader is the JOSE header carrying the issuing domain label.
const labelHeader = "kid"

var (
	// ErrMalformedToken reports a token that is not a well-formed HS256 JWT
	// with the expected claims.
	ErrMalformedToken = errors.New("malformed token")
	// ErrBadSignature reports a token whose signature does not verify
	// against the supplied secret.
	ErrBadSignature = errors.New("bad token signature")
	// ErrUnknownLabel reports a missing or unrecognised domain label.
	ErrUnknownLabel = errors.New("unknown token domain label")
)

// Claims is the signed body of a token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Encode signs claims with secret and tags the envelope with label.
func Encode(claims Claims, label domain.Label, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   claims.Subject,
		IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	})
	token.Header[labelHeader] = string(label)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature of tokenStr and returns its claims together
// with the label found in the verified header. Time bounds are not checked
// here: an expired or future-dated token decodes successfully.
func Decode(tokenStr string, secret []byte) (Claims, domain.Label, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var registered jwt.RegisteredClaims
	parsed, err := parser.ParseWithClaims(tokenStr, &registered, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return Claims{}, "", ErrBadSignature
		}
		return Claims{}, "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if !parsed.Valid || registered.IssuedAt == nil || registered.ExpiresAt == nil {
		return Claims{}, "", ErrMalformedToken
	}

	raw, _ := parsed.Header[labelHeader].(string)
	label, _ := domain.ParseLabel(raw)

	return Claims{
		Subject:   registered.Subject,
		IssuedAt:  registered.IssuedAt.Time,
		ExpiresAt: registered.ExpiresAt.Time,
	}, label, nil
}

// PeekLabel reads the domain label without verifying anything. The result
// is attacker-controlled and may only be used to pick which domain verifies
// the token.
func PeekLabel(tokenStr string) (domain.Label, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(tokenStr, &jwt.RegisteredClaims{})
	if err != nil {
		return "", ErrMalformedToken
	}

	raw, _ := parsed.Header[labelHeader].(string)
	label, ok := domain.ParseLabel(raw)
	if !ok {
		return "", ErrUnknownLabel
	}
	return label, nil
}

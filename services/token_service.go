package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openlore/crosspost/errors"
)

// TokenExpiry bounds the lifetime of every capability token. Tokens are
// never persisted or revocable before expiry; this window bounds the blast
// radius of a leaked token.
const TokenExpiry = 30 * time.Minute

// TokenService signs and verifies the capability tokens that secure every
// cross-site call. One symmetric secret per deployment pair, HS256, typed
// payloads. Possession of a valid, correctly-shaped token is sufficient
// authorization; there is no per-request session check beyond token
// validity.
type TokenService struct {
	secret string
	now    func() time.Time
}

// NewTokenService creates a TokenService. An empty secret is permitted at
// construction time; Sign and Verify report the missing-secret
// configuration error when actually used.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: secret, now: time.Now}
}

// Sign serializes the payload, embeds the 30-minute expiry, and signs with
// the deployment's shared secret.
func (s *TokenService) Sign(payload TokenPayload) (string, error) {
	if s.secret == "" {
		return "", errors.ErrMissingSecret
	}

	claims, err := payloadToClaims(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize token payload: %w", err)
	}
	issuedAt := s.now()
	claims["iat"] = jwt.NewNumericDate(issuedAt).Unix()
	claims["exp"] = jwt.NewNumericDate(issuedAt.Add(TokenExpiry)).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the token's signature and expiry, then validates the
// decoded payload against T's schema. Signature and expiry failures
// propagate from the jwt library; a schema mismatch (a token minted for a
// different operation) fails with the invalid-payload error.
func VerifyToken[T TokenPayload](s *TokenService, tokenString string) (T, error) {
	var payload T
	if s.secret == "" {
		return payload, errors.ErrMissingSecret
	}

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return payload, fmt.Errorf("token verification failed: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return payload, errors.NewInvalidPayload("unexpected claims format")
	}

	schema := payload.Fields()
	if !CheckFields(claims, schema) {
		return payload, errors.NewInvalidPayload(
			fmt.Sprintf("expected fields %v", FieldNames(schema)))
	}

	if err := claimsToPayload(claims, &payload); err != nil {
		return payload, errors.NewInvalidPayload(err.Error())
	}
	return payload, nil
}

// payloadToClaims flattens a typed payload into top-level JWT claims.
func payloadToClaims(payload TokenPayload) (jwt.MapClaims, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func claimsToPayload(claims jwt.MapClaims, out any) error {
	raw, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

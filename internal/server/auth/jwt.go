// Package auth provides token primitives for the server: JWT access
// tokens, opaque token hashing, and pairing secret derivation.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/githuba42r/imagetools/internal/common"
)

// Claims carries the registered claims plus the device and session the
// access token was issued for.
type Claims struct {
	jwt.RegisteredClaims
	DeviceID  string `json:"device_id"`
	SessionID string `json:"session_id"`
}

// GenerateToken mints a signed HS256 access token for the given device
// and session with the supplied validity window.
func GenerateToken(deviceID, sessionID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		DeviceID:  deviceID,
		SessionID: sessionID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of an access token and
// returns its claims. Expired tokens map to common.ErrTokenExpired, all
// other failures to common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

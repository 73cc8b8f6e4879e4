// Package auth issues and verifies the device access tokens used by the
// venue service.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the standard registered claims plus the device the token was
// issued to.
type Claims struct {
	jwt.RegisteredClaims
	DeviceID string
}

func GenerateToken(deviceID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		DeviceID: deviceID,
	})

	return token.SignedString(secretKey)
}

// GetDeviceIDFromToken verifies tokenString and returns its device id.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// verification common.ErrInvalidToken.
func GetDeviceIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.DeviceID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.DeviceID, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/common"
	"github.com/dmitrijs2005/cabinetmap/internal/server/auth"
	sc "github.com/dmitrijs2005/cabinetmap/internal/server/config"
)

// AuthService issues device tokens. Devices are anonymous: any non-empty
// device id gets a token.
type AuthService struct {
	secretKey []byte
	validity  time.Duration
}

func NewAuthService(config *sc.Config) *AuthService {
	return &AuthService{
		secretKey: []byte(config.SecretKey),
		validity:  config.AccessTokenValidityDuration,
	}
}

func (s *AuthService) Authenticate(ctx context.Context, deviceID string) (string, error) {
	if deviceID == "" {
		return "", fmt.Errorf("%w: device id is required", common.ErrorValidation)
	}
	return auth.GenerateToken(deviceID, s.secretKey, s.validity)
}

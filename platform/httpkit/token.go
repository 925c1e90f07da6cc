package httpkit

import (
	"time"

	"leadflow_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

// IssueAccessToken signs an HS256 access token accepted by AuthRequired.
func IssueAccessToken(cfg config.TokenIssuerConfig, userID uuid.UUID, roles []string, now time.Time) (string, error) {
	ttl := cfg.GetAccessTokenTTL()
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  accessTokenType,
		"roles": roles,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.GetJWTAccessSecret()))
}

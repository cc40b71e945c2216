package utils

import (
	"errors"
	"log"
	"os"

	"github.com/golang-jwt/jwt/v4"
)

var jwtSecret []byte

// InitJWT loads the verification secret shared with the identity service.
// This service never issues tokens, it only verifies them.
func InitJWT() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("❌ JWT_SECRET is not set — cannot verify affiliate sessions")
	}
	jwtSecret = []byte(secret)
}

type Claims struct {
	AffiliateID string `json:"affiliate_id"`
	Email       string `json:"email"`
	jwt.RegisteredClaims
}

func ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.AffiliateID == "" {
			return nil, errors.New("token carries no affiliate identity")
		}
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

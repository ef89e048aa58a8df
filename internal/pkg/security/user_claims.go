package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	JWTSecret         = "it's a secret"
	JWTIssuer         = "Warbler"
	JWTExpirationTime = time.Hour * 24
)

// UserClaims API token 中携带的用户信息
type UserClaims struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

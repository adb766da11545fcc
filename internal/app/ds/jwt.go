package ds

import (
	"github.com/golang-jwt/jwt"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/role"
)

type JWTClaims struct {
	jwt.StandardClaims
	UserID uint `json:"user_id"`
	Role   role.Role
}

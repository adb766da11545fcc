package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/config"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/role"
)

func testMiddleware() *AuthMiddleware {
	return &AuthMiddleware{
		Config: &config.Config{
			JWT: config.JWTConfig{
				Token:         "test-secret",
				ExpiresIn:     time.Hour,
				SigningMethod: jwt.SigningMethodHS256,
			},
		},
	}
}

func signToken(t *testing.T, secret string, userID uint, userRole role.Role, expiresAt int64) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ds.JWTClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiresAt,
			IssuedAt:  time.Now().Unix(),
			Issuer:    "valet-parking",
		},
		UserID: userID,
		Role:   userRole,
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestParseJWTToken(t *testing.T) {
	am := testMiddleware()
	signed := signToken(t, "test-secret", 42, role.Valet, time.Now().Add(time.Hour).Unix())

	token, err := am.parseJWTToken(signed)
	if err != nil || !token.Valid {
		t.Fatalf("parseJWTToken: %v", err)
	}
	claims, ok := token.Claims.(*ds.JWTClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", token.Claims)
	}
	if claims.UserID != 42 || claims.Role != role.Valet {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParseJWTTokenRejectsWrongSecret(t *testing.T) {
	am := testMiddleware()
	signed := signToken(t, "other-secret", 42, role.Valet, time.Now().Add(time.Hour).Unix())

	if _, err := am.parseJWTToken(signed); err == nil {
		t.Fatalf("expected error for token signed with wrong secret")
	}
}

func TestParseJWTTokenRejectsExpired(t *testing.T) {
	am := testMiddleware()
	signed := signToken(t, "test-secret", 42, role.Valet, time.Now().Add(-time.Hour).Unix())

	if _, err := am.parseJWTToken(signed); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestHasRequiredRole(t *testing.T) {
	am := testMiddleware()

	if !am.hasRequiredRole(role.Admin, []role.Role{role.Valet, role.Admin}) {
		t.Fatalf("admin must pass valet+admin check")
	}
	if am.hasRequiredRole(role.Client, []role.Role{role.Valet, role.Admin}) {
		t.Fatalf("client must not pass valet+admin check")
	}
}

package jwt

import (
	"Foodgram-Backend/domain"
	"errors"
	"testing"
	"time"
)

func TestUserTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("secret")

	token, err := svc.GenerateTokenUser(42, domain.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := svc.ParseTokenUser(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 42 || claims.Role != domain.RoleUser {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Error("token has no jti")
	}

	other, _ := svc.GenerateTokenUser(42, domain.RoleUser)
	otherClaims, _ := svc.ParseTokenUser(other)
	if otherClaims.ID == claims.ID {
		t.Error("two tokens share a jti")
	}
}

func TestUserTokenWrongSecret(t *testing.T) {
	token, _ := NewJWTService("secret").GenerateTokenUser(1, domain.RoleUser)

	_, err := NewJWTService("another").ParseTokenUser(token)
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestUserTokenExpired(t *testing.T) {
	svc := &jwtService{
		secretKey: "secret",
		issuer:    "FOODGRAM",
		ttl:       time.Minute,
		now:       func() time.Time { return time.Now().Add(-time.Hour) },
	}
	token, _ := svc.GenerateTokenUser(1, domain.RoleUser)

	_, err := svc.ParseTokenUser(token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestResetTokenIsNotAnAuthToken(t *testing.T) {
	svc := NewJWTService("secret")
	reset, err := svc.GenerateTokenForgetPassword(map[string]any{"user_id": 7}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ParseTokenUser(reset); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("reset token accepted for auth: %v", err)
	}

	claims, err := svc.ValidateTokenForgetPassword(reset)
	if err != nil {
		t.Fatal(err)
	}
	if claims["user_id"].(float64) != 7 {
		t.Errorf("user_id = %v", claims["user_id"])
	}
}

func TestAuthTokenIsNotAResetToken(t *testing.T) {
	svc := NewJWTService("secret")
	token, _ := svc.GenerateTokenUser(7, domain.RoleUser)

	if _, err := svc.ValidateTokenForgetPassword(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("auth token accepted for reset: %v", err)
	}
}

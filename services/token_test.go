package services

import (
	"os"
	"testing"
	"time"

	"main/utils"

	"github.com/golang-jwt/jwt/v5"
)

func TestMain(m *testing.M) {
	os.Setenv("GO_ENV", "test")
	utils.InitJWT()
	os.Exit(m.Run())
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("user-42")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	userID, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("user id = %q, want user-42", userID)
	}
}

func TestValidateTokenRejectsRefreshTokens(t *testing.T) {
	refresh, err := GenerateRefreshToken("user-42")
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	if _, err := ValidateToken(refresh); err == nil {
		t.Error("refresh token accepted as an access token")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": "user-42",
		"type":    "access",
		"iss":     utils.TokenIssuer,
		"iat":     time.Now().Add(-2 * time.Hour).Unix(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(utils.JWTSecretKey))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ValidateToken(signed); err == nil {
		t.Error("expired token accepted")
	}
}

func TestValidateTokenRejectsWrongIssuer(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": "user-42",
		"type":    "access",
		"iss":     "someone-else",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(utils.JWTSecretKey))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ValidateToken(signed); err == nil {
		t.Error("token from a foreign issuer accepted")
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	token, err := GenerateToken("user-42")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tampered := token[:len(token)-3] + "abc"
	if _, err := ValidateToken(tampered); err == nil {
		t.Error("tampered token accepted")
	}
}

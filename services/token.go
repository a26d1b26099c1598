package services

import (
	"fmt"
	"time"

	"main/utils"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken issues a short-lived access token for a user.
func GenerateToken(userID string) (string, error) {
	return signToken(userID, "access", utils.JWTExpirationTime)
}

// GenerateRefreshToken issues a long-lived refresh token for a user.
func GenerateRefreshToken(userID string) (string, error) {
	return signToken(userID, "refresh", utils.RefreshTokenExpirationTime)
}

func signToken(userID, tokenType string, expirationSeconds int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"type":    tokenType,
		"iss":     utils.TokenIssuer,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Duration(expirationSeconds) * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(utils.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken parses an access token and returns the user id behind
// it. It rejects refresh tokens, bad issuers and expired credentials.
func ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(utils.JWTSecretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["user_id"] == nil {
		return "", fmt.Errorf("invalid token claims")
	}

	if tokenType, exists := claims["type"]; exists && tokenType == "refresh" {
		return "", fmt.Errorf("invalid token type")
	}

	if iss, ok := claims["iss"].(string); ok && iss != utils.TokenIssuer {
		return "", fmt.Errorf("invalid token issuer")
	}

	if exp, ok := claims["exp"].(float64); ok && time.Now().Unix() > int64(exp) {
		return "", fmt.Errorf("token has expired")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("invalid user ID in token")
	}

	return userID, nil
}

package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the claims in a JWT token
type JWTClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// AuthService validates status-API credentials: the static API key, or a
// short-lived JWT minted from it.
type AuthService struct {
	apiKey    string
	jwtSecret []byte
}

// NewAuthService creates a new auth service. The API key doubles as the JWT
// signing secret.
func NewAuthService(apiKey string) *AuthService {
	return &AuthService{
		apiKey:    apiKey,
		jwtSecret: []byte(apiKey),
	}
}

// ValidateAPIKey validates an API key
func (a *AuthService) ValidateAPIKey(key string) bool {
	return key != "" && key == a.apiKey
}

// GenerateToken generates a new JWT token
func (a *AuthService) GenerateToken(role string, duration time.Duration) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "shellbot-agent",
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken validates a JWT token
func (a *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ExtractToken extracts the token from the Authorization header, falling
// back to a token query parameter.
func ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
		return authHeader
	}

	if token := c.Query("token"); token != "" {
		return token
	}

	return ""
}
